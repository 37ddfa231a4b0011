package gpgkeys

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/teamkeeper/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+gpgkeys\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*$`).
		WithArgs(sqlmock.AnyArg(), "u-1", "-----BEGIN PGP", "ABCD", "EF01").
		WillReturnResult(sqlmock.NewResult(0, 1))

	key := &models.Gpgkey{UserID: "u-1", ArmoredKey: "-----BEGIN PGP", Fingerprint: "ABCD", KeyID: "EF01"}
	if err := repo.Create(context.Background(), key); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if key.ID == "" {
		t.Fatal("id not generated")
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+gpgkeys\b`).WillReturnError(errors.New("duplicate key"))

	err := repo.Create(context.Background(), &models.Gpgkey{ID: "k-1"})
	if err == nil || !regexp.MustCompile(`db error: .*duplicate key`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestConflicts(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+COUNT.*FROM\s+gpgkeys\s+WHERE\s+user_id\s*=\s*\$3\s+OR\s+fingerprint\s*=\s*\$4\s*$`).
		WithArgs("u-1", "ABCD", "u-1", "ABCD").
		WillReturnRows(sqlmock.NewRows([]string{"by_user", "by_fingerprint"}).AddRow(int64(0), int64(1)))

	byUser, byFingerprint, err := repo.Conflicts(context.Background(), "u-1", "ABCD")
	if err != nil {
		t.Fatalf("Conflicts error: %v", err)
	}
	if byUser || !byFingerprint {
		t.Fatalf("unexpected conflicts: user=%v fingerprint=%v", byUser, byFingerprint)
	}
}
