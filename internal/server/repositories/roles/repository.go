// Package roles declares the repository contract for the roles table and
// provides its SQL implementation.
package roles

import (
	"context"

	"github.com/dmitrijs2005/teamkeeper/internal/server/models"
)

// Repository reads and seeds role rows. Roles are referenced by users but
// never owned by them.
type Repository interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]*models.Role, error)
	Create(ctx context.Context, role *models.Role) error
}
