package gpgkeys

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/teamkeeper/internal/dbx"
	"github.com/dmitrijs2005/teamkeeper/internal/server/models"
	"github.com/dmitrijs2005/teamkeeper/internal/server/query"
	"github.com/google/uuid"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect query.Dialect
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: query.Postgres}
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: query.SQLite}
}

func (r *SQLRepository) Create(ctx context.Context, key *models.Gpgkey) error {
	if key.ID == "" {
		key.ID = uuid.NewString()
	}

	stmt :=
		`INSERT INTO gpgkeys (id, user_id, armored_key, fingerprint, key_id)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(stmt),
		key.ID, key.UserID, key.ArmoredKey, key.Fingerprint, key.KeyID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *SQLRepository) Conflicts(ctx context.Context, userID, fingerprint string) (bool, bool, error) {
	stmt :=
		`SELECT
		   COUNT(CASE WHEN user_id = $1 THEN 1 END),
		   COUNT(CASE WHEN fingerprint = $2 THEN 1 END)
		 FROM gpgkeys
		 WHERE user_id = $3 OR fingerprint = $4
		 `

	var byUser, byFingerprint int64
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(stmt), userID, fingerprint, userID, fingerprint).
		Scan(&byUser, &byFingerprint)
	if err != nil {
		return false, false, fmt.Errorf("db error: %w", err)
	}

	return byUser > 0, byFingerprint > 0, nil
}
