package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/textify/internal/common"
	"github.com/dmitrijs2005/textify/internal/server/models"
	"github.com/google/uuid"
)

type documentRepository struct {
	store *Store
	inTx  bool
}

func (r *documentRepository) Create(_ context.Context, doc *models.Document) (*models.Document, error) {
	unlock := r.store.lock(r.inTx)
	defer unlock()

	if _, ok := r.store.users[doc.OwnerID]; !ok {
		return nil, common.ErrorNotFound
	}

	doc.ID = uuid.NewString()
	c := *doc
	r.store.docs[doc.ID] = &c
	return doc, nil
}

func (r *documentRepository) ListByOwner(_ context.Context, ownerID string, limit int) ([]*models.Document, error) {
	unlock := r.store.lock(r.inTx)
	defer unlock()

	result := make([]*models.Document, 0)
	for _, d := range r.store.docs {
		if d.OwnerID == ownerID {
			c := *d
			result = append(result, &c)
		}
	}

	slices.SortFunc(result, func(a, b *models.Document) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *documentRepository) owned(id, ownerID string) (*models.Document, bool) {
	d, ok := r.store.docs[id]
	if !ok || d.OwnerID != ownerID {
		return nil, false
	}
	return d, true
}

func (r *documentRepository) GetForOwner(_ context.Context, id, ownerID string) (*models.Document, error) {
	unlock := r.store.lock(r.inTx)
	defer unlock()

	d, ok := r.owned(id, ownerID)
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *d
	return &c, nil
}

func (r *documentRepository) UpdateForOwner(_ context.Context, id, ownerID string, upd models.DocumentUpdate, updatedAt time.Time) (*models.Document, error) {
	unlock := r.store.lock(r.inTx)
	defer unlock()

	d, ok := r.owned(id, ownerID)
	if !ok {
		return nil, common.ErrorNotFound
	}
	if upd.Title != nil {
		d.Title = *upd.Title
	}
	if upd.Content != nil {
		d.Content = *upd.Content
	}
	d.UpdatedAt = updatedAt

	c := *d
	return &c, nil
}

func (r *documentRepository) DeleteForOwner(_ context.Context, id, ownerID string) error {
	unlock := r.store.lock(r.inTx)
	defer unlock()

	if _, ok := r.owned(id, ownerID); !ok {
		return common.ErrorNotFound
	}
	delete(r.store.docs, id)
	return nil
}

func (r *documentRepository) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	unlock := r.store.lock(r.inTx)
	defer unlock()

	var n int64
	for id, d := range r.store.docs {
		if d.OwnerID == ownerID {
			delete(r.store.docs, id)
			n++
		}
	}
	return n, nil
}
