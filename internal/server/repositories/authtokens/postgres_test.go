package authtokens

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/teamkeeper/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+authentication_tokens\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*$`

	expires := time.Now().Add(time.Hour)
	mock.ExpectExec(q).
		WithArgs(sqlmock.AnyArg(), "u1", sqlmock.AnyArg(), true, expires).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tok := &models.AuthenticationToken{UserID: "u1", Active: true, Expires: expires}
	if err := repo.Create(context.Background(), tok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.ID == "" || tok.Token == "" {
		t.Fatalf("id and token must be generated: %+v", tok)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+authentication_tokens\b`).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.AuthenticationToken{UserID: "u1"})
	if err == nil || !regexp.MustCompile(`error performing sql request: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDeactivateForUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+authentication_tokens\s+SET\s+active\s*=\s*\$1\s+WHERE\s+user_id\s*=\s*\$2\s+AND\s+active\s*=\s*\$3\s*$`

	mock.ExpectExec(q).WithArgs(false, "u1", true).WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.DeactivateForUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("want 2 revoked, got %d", n)
	}
}

func TestDeactivateForUser_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+authentication_tokens\b`).WillReturnError(errors.New("db down"))

	if _, err := repo.DeactivateForUser(context.Background(), "u1"); err == nil {
		t.Fatal("expected error")
	}
}
