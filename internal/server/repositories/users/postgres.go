package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/teamkeeper/internal/common"
	"github.com/dmitrijs2005/teamkeeper/internal/dbx"
	"github.com/dmitrijs2005/teamkeeper/internal/server/finders"
	"github.com/dmitrijs2005/teamkeeper/internal/server/models"
	"github.com/dmitrijs2005/teamkeeper/internal/server/query"
	"github.com/google/uuid"
)

// SQLRepository implements Repository over database/sql. The dialect only
// changes parameter markers; the statements are otherwise shared. Table names
// come from the finders.Schema the queries were composed with.
type SQLRepository struct {
	db      dbx.DBTX
	dialect query.Dialect
	schema  finders.Schema
}

// NewPostgresRepository returns a repository speaking PostgreSQL.
func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: query.Postgres, schema: finders.DefaultSchema()}
}

// NewSQLiteRepository returns a repository speaking SQLite.
func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db, dialect: query.SQLite, schema: finders.DefaultSchema()}
}

// WithSchema returns a copy of r working on the tables of s.
func (r *SQLRepository) WithSchema(s finders.Schema) *SQLRepository {
	c := *r
	c.schema = s
	return &c
}

// projection returns the fixed column list scanned by scanUser. Columns of
// associations q does not join are selected as NULL.
func (r *SQLRepository) projection(q *query.Select) []string {
	joined := func(a finders.Association, cols ...string) []string {
		out := make([]string, len(cols))
		for i, c := range cols {
			if q.HasJoin(a.Table) {
				out[i] = a.Column(c)
			} else {
				out[i] = "NULL"
			}
		}
		return out
	}

	cols := []string{
		q.Table + ".id",
		q.Table + "." + r.schema.Roles.ForeignKey,
		q.Table + ".username",
		q.Table + ".active",
		q.Table + ".deleted",
	}
	cols = append(cols, joined(r.schema.Roles, "id", "name", "description")...)
	cols = append(cols, joined(r.schema.Profiles, "id", "first_name", "last_name")...)
	cols = append(cols, joined(r.schema.Gpgkeys, "id", "fingerprint", "key_id")...)
	return cols
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*models.User, error) {
	var (
		u                                  models.User
		roleID, roleName, roleDesc         sql.NullString
		profileID, firstName, lastName     sql.NullString
		gpgkeyID, fingerprint, gpgkeyKeyID sql.NullString
	)

	err := row.Scan(
		&u.ID, &u.RoleID, &u.Username, &u.Active, &u.Deleted,
		&roleID, &roleName, &roleDesc,
		&profileID, &firstName, &lastName,
		&gpgkeyID, &fingerprint, &gpgkeyKeyID,
	)
	if err != nil {
		return nil, err
	}

	if roleID.Valid {
		u.Role = &models.Role{ID: roleID.String, Name: roleName.String, Description: roleDesc.String}
	}
	if profileID.Valid {
		u.Profile = &models.Profile{ID: profileID.String, UserID: u.ID, FirstName: firstName.String, LastName: lastName.String}
	}
	if gpgkeyID.Valid {
		u.Gpgkey = &models.Gpgkey{ID: gpgkeyID.String, UserID: u.ID, Fingerprint: fingerprint.String, KeyID: gpgkeyKeyID.String}
	}
	return &u, nil
}

func (r *SQLRepository) Find(ctx context.Context, q *query.Select) ([]*models.User, error) {
	stmt, args := q.Clone().Fields(r.projection(q)...).Render(r.dialect)

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) First(ctx context.Context, q *query.Select) (*models.User, error) {
	stmt, args := q.Clone().Fields(r.projection(q)...).First().Render(r.dialect)

	u, err := scanUser(r.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return u, nil
}

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	stmt := fmt.Sprintf(
		`INSERT INTO %s (id, %s, username, active, deleted)
		 VALUES ($1, $2, $3, $4, $5)
		 `, r.schema.Users, r.schema.Roles.ForeignKey)

	_, err := r.db.ExecContext(ctx, r.dialect.Rebind(stmt),
		user.ID, user.RoleID, user.Username, user.Active, user.Deleted)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if user.Profile == nil {
		return user, nil
	}

	p := user.Profile
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.UserID = user.ID

	stmt = fmt.Sprintf(
		`INSERT INTO %s (id, %s, first_name, last_name)
		 VALUES ($1, $2, $3, $4)
		 `, r.schema.Profiles.Table, r.schema.Profiles.ForeignKey)

	_, err = r.db.ExecContext(ctx, r.dialect.Rebind(stmt), p.ID, p.UserID, p.FirstName, p.LastName)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) CountByUsername(ctx context.Context, username, excludeID string) (int64, error) {
	q := query.From(r.schema.Users).
		Fields("COUNT(*)").
		Where(query.Eq(r.schema.UserColumn("username"), username))
	if excludeID != "" {
		q.Where(query.NotEq(r.schema.UserColumn("id"), excludeID))
	}

	stmt, args := q.Render(r.dialect)

	var n int64
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

// LockUsername takes a PostgreSQL advisory lock keyed on the username hash,
// released at commit or rollback. SQLite allows a single writer per database,
// so a second transaction writing the same name fails instead of duplicating
// it, and no lock is taken there.
func (r *SQLRepository) LockUsername(ctx context.Context, username string) error {
	if r.dialect == query.SQLite {
		return nil
	}

	stmt := `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

	if _, err := r.db.ExecContext(ctx, stmt, username); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *SQLRepository) SoftDelete(ctx context.Context, id string) error {
	stmt := fmt.Sprintf(
		`UPDATE %s SET deleted = $1, modified = CURRENT_TIMESTAMP
		 WHERE id = $2 AND deleted = $3
		 `, r.schema.Users)

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(stmt), true, id, false)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
