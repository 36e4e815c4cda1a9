// Package documents provides the PostgreSQL-backed document store.
package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/textify/internal/common"
	"github.com/dmitrijs2005/textify/internal/dbx"
	"github.com/dmitrijs2005/textify/internal/server/models"
)

const documentColumns = `id, user_id, title, content, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	query :=
		`INSERT INTO documents (user_id, title, content, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		doc.OwnerID, doc.Title, doc.Content, doc.CreatedAt, doc.UpdatedAt).Scan(&doc.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return doc, nil
}

// ListByOwner returns the owner's documents in creation order, at most limit rows.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		 WHERE user_id = $1
		 ORDER BY created_at, id
		 LIMIT $2
		 `

	rows, err := r.db.QueryContext(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) GetForOwner(ctx context.Context, id, ownerID string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		 WHERE id = $1 AND user_id = $2
		 `
	return scanDocument(r.db.QueryRowContext(ctx, query, id, ownerID))
}

// UpdateForOwner checks ownership and writes in one statement, so a document
// cannot change hands between the check and the update.
func (r *PostgresRepository) UpdateForOwner(ctx context.Context, id, ownerID string, upd models.DocumentUpdate, updatedAt time.Time) (*models.Document, error) {
	query :=
		`UPDATE documents
		 SET title = COALESCE($3, title),
		     content = COALESCE($4, content),
		     updated_at = $5
		 WHERE id = $1 AND user_id = $2
		 RETURNING ` + documentColumns

	return scanDocument(r.db.QueryRowContext(ctx, query, id, ownerID, upd.Title, upd.Content, updatedAt))
}

func (r *PostgresRepository) DeleteForOwner(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// DeleteByOwner removes every document of the owner and reports how many went.
func (r *PostgresRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE user_id = $1`, ownerID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	doc := &models.Document{}
	err := row.Scan(&doc.ID, &doc.OwnerID, &doc.Title, &doc.Content, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc, nil
}
