package roles

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/teamkeeper/internal/common"
	"github.com/dmitrijs2005/teamkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

func TestFindByName(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	q := `(?s)^SELECT\s+id,\s*name,\s*description\s+FROM\s+roles\s+WHERE\s+name\s*=\s*\$1\s*$`

	mock.ExpectQuery(q).WithArgs("user").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).AddRow("r-1", "user", "Logged in user"))
	mock.ExpectQuery(q).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(q).WithArgs("user").WillReturnError(errors.New("db down"))

	got, err := repo.FindByName(context.Background(), "user")
	require.NoError(t, err)
	assert.Equal(t, &models.Role{ID: "r-1", Name: "user", Description: "Logged in user"}, got)

	_, err = repo.FindByName(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.FindByName(context.Background(), "user")
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestExists(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	q := `(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+roles\s+WHERE\s+id\s*=\s*\$1\s*$`

	mock.ExpectQuery(q).WithArgs("r-1").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(q).WithArgs("r-x").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

	ok, err := repo.Exists(context.Background(), "r-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(context.Background(), "r-x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestList(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT id, name, description FROM roles ORDER BY name$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).
			AddRow("r-2", "admin", "").
			AddRow("r-1", "user", ""))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "admin", got[0].Name)
}

func TestCreate(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+roles\s*\(id,\s*name,\s*description\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*$`).
		WithArgs(sqlmock.AnyArg(), "admin", "Organization administrator").
		WillReturnResult(sqlmock.NewResult(0, 1))

	role := &models.Role{Name: "admin", Description: "Organization administrator"}
	require.NoError(t, repo.Create(context.Background(), role))
	assert.NotEmpty(t, role.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
