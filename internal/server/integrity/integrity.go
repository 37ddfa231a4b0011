// Package integrity evaluates the write-time rules that need the store:
// username uniqueness and role existence. Both rules always run so a caller
// learns about every problem in one round trip.
package integrity

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/teamkeeper/internal/common"
	"github.com/dmitrijs2005/teamkeeper/internal/server/models"
)

const (
	RuleUniqueUsername = "uniqueUsername"
	RuleValidRole      = "validRole"
)

// UsernameCounter counts user rows holding username, soft-deleted rows
// included. excludeID, when set, skips the row being updated.
type UsernameCounter interface {
	CountByUsername(ctx context.Context, username, excludeID string) (int64, error)
}

// RoleChecker reports whether a role row exists.
type RoleChecker interface {
	Exists(ctx context.Context, roleID string) (bool, error)
}

// Checker runs the build rules against the store.
type Checker struct {
	users UsernameCounter
	roles RoleChecker
}

// New returns a Checker over the given stores.
func New(users UsernameCounter, roles RoleChecker) *Checker {
	return &Checker{users: users, roles: roles}
}

// Violations evaluates both rules and returns what failed. A store error
// aborts the check, since the rules could not be decided.
func (c *Checker) Violations(ctx context.Context, p models.Payload) ([]common.Violation, error) {
	var out []common.Violation

	unique, err := c.uniqueUsername(ctx, p)
	if err != nil {
		return nil, err
	}
	if !unique {
		out = append(out, common.Violation{
			Field:   common.FieldUsername,
			Rule:    RuleUniqueUsername,
			Message: "This username is already in use.",
		})
	}

	valid, err := c.validRole(ctx, p)
	if err != nil {
		return nil, err
	}
	if !valid {
		out = append(out, common.Violation{
			Field:   common.FieldRoleID,
			Rule:    RuleValidRole,
			Message: "This is not a valid role.",
		})
	}

	return out, nil
}

// Check wraps Violations into a *common.IntegrityViolationError.
func (c *Checker) Check(ctx context.Context, p models.Payload) error {
	violations, err := c.Violations(ctx, p)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return &common.IntegrityViolationError{Violations: violations}
	}
	return nil
}

// uniqueUsername passes when no other row, deleted or not, uses the name.
// Soft-deleted usernames stay reserved.
func (c *Checker) uniqueUsername(ctx context.Context, p models.Payload) (bool, error) {
	username, _ := p.String(common.FieldUsername)
	if username == "" {
		// nothing to collide with; field validation reports the absence
		return true, nil
	}
	excludeID, _ := p.String(common.FieldID)

	n, err := c.users.CountByUsername(ctx, username, excludeID)
	if err != nil {
		return false, fmt.Errorf("check username uniqueness: %w", err)
	}
	return n == 0, nil
}

// validRole passes only when role_id names an existing role. A missing
// role_id fails: every user must reference a role.
func (c *Checker) validRole(ctx context.Context, p models.Payload) (bool, error) {
	roleID, _ := p.String(common.FieldRoleID)
	if roleID == "" {
		return false, nil
	}

	ok, err := c.roles.Exists(ctx, roleID)
	if err != nil {
		return false, fmt.Errorf("check role existence: %w", err)
	}
	return ok, nil
}
