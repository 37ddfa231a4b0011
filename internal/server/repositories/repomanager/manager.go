package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/teamkeeper/internal/dbx"
	"github.com/dmitrijs2005/teamkeeper/internal/server/repositories/authtokens"
	"github.com/dmitrijs2005/teamkeeper/internal/server/repositories/gpgkeys"
	"github.com/dmitrijs2005/teamkeeper/internal/server/repositories/roles"
	"github.com/dmitrijs2005/teamkeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Roles(db dbx.DBTX) roles.Repository
	Gpgkeys(db dbx.DBTX) gpgkeys.Repository
	AuthTokens(db dbx.DBTX) authtokens.Repository
}
