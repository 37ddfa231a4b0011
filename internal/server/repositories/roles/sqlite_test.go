package roles

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/teamkeeper/internal/common"
	serverroles "github.com/dmitrijs2005/teamkeeper/internal/server/roles"
	"github.com/dmitrijs2005/teamkeeper/internal/server/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedAndLoadRegistry(t *testing.T) {
	db := storetest.Open(t)
	ctx := context.Background()
	repo := NewSQLiteRepository(db)

	created, err := serverroles.Seed(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, len(serverroles.Names()), created)

	created, err = serverroles.Seed(ctx, repo)
	require.NoError(t, err)
	assert.Zero(t, created, "seeding twice adds nothing")

	reg, err := serverroles.Load(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, len(serverroles.Names()), reg.Len())

	def, err := reg.Default()
	require.NoError(t, err)

	ok, err := repo.Exists(ctx, def.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.FindByName(ctx, "superuser")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
