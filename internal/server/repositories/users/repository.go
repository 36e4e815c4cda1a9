package users

import (
	"context"

	"github.com/dmitrijs2005/textify/internal/server/models"
)

// Repository is the credential store. Lookups return common.ErrorNotFound
// when nothing matches; Create and Update return common.ErrUsernameTaken or
// common.ErrEmailTaken when a unique index rejects the row.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, userName string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error)
	Delete(ctx context.Context, id string) error
}
