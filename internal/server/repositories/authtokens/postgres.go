package authtokens

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

func (r *SQLRepository) Create(ctx context.Context, token *models.AuthenticationToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.Token == "" {
		token.Token = uuid.NewString()
	}

	stmt :=
		`INSERT INTO authentication_tokens (id, user_id, token, active, expires)
         VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(stmt),
		token.ID, token.UserID, token.Token, token.Active, token.Expires)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}

	return nil
}

func (r *SQLRepository) DeactivateForUser(ctx context.Context, userID string) (int64, error) {
	stmt :=
		`UPDATE authentication_tokens SET active = $1
		 WHERE user_id = $2 AND active = $3
		 `

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(stmt), false, userID, true)
	if err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error performing sql request: %w", err)
	}

	return n, nil
}
