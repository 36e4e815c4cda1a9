package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/textify/internal/common"
	"github.com/dmitrijs2005/textify/internal/dbx"
	"github.com/dmitrijs2005/textify/internal/logging"
	"github.com/dmitrijs2005/textify/internal/server/models"
	"github.com/dmitrijs2005/textify/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// MaxListedDocuments caps a single listing.
const MaxListedDocuments = 100

var documentReadOnly = map[string]string{
	"id":         "",
	"owner_id":   "",
	"user_id":    "",
	"created_at": "",
	"updated_at": "",
}

// DocumentService performs document CRUD scoped to the calling user. A
// document of another user is indistinguishable from a missing one.
type DocumentService struct {
	tx          dbx.Transactor
	repomanager repomanager.RepositoryManager
	validate    *validator.Validate
	logger      logging.Logger
	now         func() time.Time
}

func NewDocumentService(tx dbx.Transactor, m repomanager.RepositoryManager, logger logging.Logger) *DocumentService {
	return &DocumentService{
		tx:          tx,
		repomanager: m,
		validate:    newValidator(),
		logger:      logger,
		now:         time.Now,
	}
}

func (s *DocumentService) WithClock(now func() time.Time) *DocumentService {
	c := *s
	c.now = now
	return &c
}

func (s *DocumentService) Create(ctx context.Context, ownerID string, in models.DocumentInput) (*models.Document, error) {
	if err := validate(s.validate, in); err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	doc := &models.Document{
		OwnerID:   ownerID,
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	doc, err := s.repomanager.Documents(s.tx.Conn()).Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("error creating document: %w", err)
	}

	s.logger.Debug(ctx, "document created", "document_id", doc.ID, "user_id", ownerID)
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, ownerID string) ([]*models.Document, error) {
	docs, err := s.repomanager.Documents(s.tx.Conn()).ListByOwner(ctx, ownerID, MaxListedDocuments)
	if err != nil {
		return nil, fmt.Errorf("error listing documents: %w", err)
	}
	return docs, nil
}

func (s *DocumentService) Get(ctx context.Context, ownerID, id string) (*models.Document, error) {
	docID, err := parseDocumentID(id)
	if err != nil {
		return nil, err
	}

	doc, err := s.repomanager.Documents(s.tx.Conn()).GetForOwner(ctx, docID, ownerID)
	if err != nil {
		return nil, notFoundOr(err, "error loading document")
	}
	return doc, nil
}

// Update applies title and content from p and refreshes updated_at.
func (s *DocumentService) Update(ctx context.Context, ownerID, id string, p models.Patch) (*models.Document, error) {
	docID, err := parseDocumentID(id)
	if err != nil {
		return nil, err
	}

	if err := checkPatch(p, documentReadOnly, "title", "content"); err != nil {
		return nil, err
	}

	var upd models.DocumentUpdate
	if upd.Title, err = patchString(p, "title"); err != nil {
		return nil, err
	}
	if upd.Content, err = patchString(p, "content"); err != nil {
		return nil, err
	}
	if upd.Title == nil && upd.Content == nil {
		return nil, common.Validation("No valid fields to update")
	}

	v := struct {
		Title   *string `json:"title" validate:"omitnil,min=1,max=255"`
		Content *string `json:"content" validate:"omitnil,max=1048576"`
	}{upd.Title, upd.Content}
	if err := validate(s.validate, v); err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	doc, err := s.repomanager.Documents(s.tx.Conn()).UpdateForOwner(ctx, docID, ownerID, upd, now)
	if err != nil {
		return nil, notFoundOr(err, "error updating document")
	}
	return doc, nil
}

func (s *DocumentService) Delete(ctx context.Context, ownerID, id string) error {
	docID, err := parseDocumentID(id)
	if err != nil {
		return err
	}

	if err := s.repomanager.Documents(s.tx.Conn()).DeleteForOwner(ctx, docID, ownerID); err != nil {
		return notFoundOr(err, "error deleting document")
	}

	s.logger.Debug(ctx, "document deleted", "document_id", docID, "user_id", ownerID)
	return nil
}

// parseDocumentID canonicalizes id. Malformed ids cannot name a stored
// document, so they are reported as not found.
func parseDocumentID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", common.ErrDocumentNotFound
	}
	return u.String(), nil
}

func notFoundOr(err error, msg string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrDocumentNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
