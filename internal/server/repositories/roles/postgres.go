package roles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/teamkeeper/internal/common"
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

func (r *SQLRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	stmt :=
		`SELECT id, name, description FROM roles
		 WHERE name = $1
		 `

	role := &models.Role{}
	err := r.db.QueryRowContext(ctx, r.dialect.Rebind(stmt), name).Scan(&role.ID, &role.Name, &role.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return role, nil
}

func (r *SQLRepository) Exists(ctx context.Context, id string) (bool, error) {
	stmt :=
		`SELECT COUNT(*) FROM roles
		 WHERE id = $1
		 `

	var n int64
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(stmt), id).Scan(&n); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return n > 0, nil
}

func (r *SQLRepository) List(ctx context.Context) ([]*models.Role, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, description FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Role
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) Create(ctx context.Context, role *models.Role) error {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}

	stmt :=
		`INSERT INTO roles (id, name, description)
		 VALUES ($1, $2, $3)
		 `

	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(stmt), role.ID, role.Name, role.Description); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
