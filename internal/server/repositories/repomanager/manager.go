package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/jobhub/internal/dbx"
	"github.com/dmitrijs2005/jobhub/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DB or transaction handle
// and owns schema migrations.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
}
