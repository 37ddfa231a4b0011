package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/teamkeeper/internal/common"
	"github.com/dmitrijs2005/teamkeeper/internal/server/models"
	"github.com/google/uuid"
)

// SeedStore is the subset of the roles repository used by Seed.
type SeedStore interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
	Create(ctx context.Context, role *models.Role) error
}

// Seed inserts every known role that is not present yet. It is safe to run
// on each start.
func Seed(ctx context.Context, store SeedStore) (created int, err error) {
	for _, name := range Names() {
		_, err := store.FindByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return created, fmt.Errorf("lookup role %s: %w", name, err)
		}

		role := &models.Role{ID: uuid.NewString(), Name: name, Description: descriptions[name]}
		if err := store.Create(ctx, role); err != nil {
			return created, fmt.Errorf("create role %s: %w", name, err)
		}
		created++
	}
	return created, nil
}
