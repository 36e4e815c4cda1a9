package documents

import (
	"context"
	"time"

	"github.com/dmitrijs2005/textify/internal/server/models"
)

// Repository is the document store. Every read and write except Create is
// filtered by owner; a row owned by someone else behaves as missing
// (common.ErrorNotFound).
type Repository interface {
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*models.Document, error)
	GetForOwner(ctx context.Context, id, ownerID string) (*models.Document, error)
	UpdateForOwner(ctx context.Context, id, ownerID string, upd models.DocumentUpdate, updatedAt time.Time) (*models.Document, error)
	DeleteForOwner(ctx context.Context, id, ownerID string) error
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}
