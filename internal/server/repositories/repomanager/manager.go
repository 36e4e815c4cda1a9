package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/textify/internal/dbx"
	"github.com/dmitrijs2005/textify/internal/server/repositories/documents"
	"github.com/dmitrijs2005/textify/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same service
// code runs against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Documents(db dbx.DBTX) documents.Repository
}
