package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fitkeeper/internal/dbx"
	"github.com/dmitrijs2005/fitkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/fitkeeper/internal/server/repositories/memberships"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same code path on *sql.DB and inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Memberships(db dbx.DBTX) memberships.Repository
}
