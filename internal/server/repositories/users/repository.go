// Package users declares the server-side repository contract for user rows
// and provides its SQL implementation.
package users

import (
	"context"

	"github.com/dmitrijs2005/teamkeeper/internal/server/models"
	"github.com/dmitrijs2005/teamkeeper/internal/server/query"
)

// Repository runs composed user queries and persists user rows.
type Repository interface {
	// Find executes q and returns every matching user with the joined
	// associations filled in.
	Find(ctx context.Context, q *query.Select) ([]*models.User, error)

	// First executes q limited to one row. It returns common.ErrorNotFound
	// when nothing matches.
	First(ctx context.Context, q *query.Select) (*models.User, error)

	// Create inserts the user and, when set, its profile. Missing ids are
	// generated.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// CountByUsername counts rows with username in any state. A non-empty
	// excludeID leaves that row out.
	CountByUsername(ctx context.Context, username, excludeID string) (int64, error)

	// LockUsername serializes writers of the same username until the
	// surrounding transaction ends. It must run inside a transaction.
	LockUsername(ctx context.Context, username string) error

	// SoftDelete flags the user as deleted. Unknown or already deleted users
	// yield common.ErrorNotFound.
	SoftDelete(ctx context.Context, id string) error
}
