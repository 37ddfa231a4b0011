// Package normalize rewrites incoming user payloads before they become
// entities. On registration the client never decides activation, deletion or
// role.
package normalize

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/teamkeeper/internal/common"
	"github.com/dmitrijs2005/teamkeeper/internal/server/models"
	"github.com/dmitrijs2005/teamkeeper/internal/server/roles"
	"github.com/dmitrijs2005/teamkeeper/internal/server/validation"
)

// RoleFinder looks a role up by name, returning common.ErrorNotFound when
// there is none.
type RoleFinder interface {
	FindByName(ctx context.Context, name string) (*models.Role, error)
}

// Normalizer forces the security-sensitive fields of a registration.
type Normalizer struct {
	roles RoleFinder
}

// New returns a Normalizer resolving the default role through finder.
func New(finder RoleFinder) *Normalizer {
	return &Normalizer{roles: finder}
}

// BeforeMarshal returns the payload to validate and persist for the given
// context. For Register it is a copy with active=false, deleted=false and
// role_id set to the default role; other contexts pass through untouched.
func (n *Normalizer) BeforeMarshal(ctx context.Context, vctx validation.Context, p models.Payload) (models.Payload, error) {
	if vctx != validation.Register {
		return p, nil
	}

	role, err := n.roles.FindByName(ctx, roles.Default)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, &common.ConfigurationError{
				Reason: fmt.Sprintf("default role %q is missing from the roles table", roles.Default),
				Cause:  err,
			}
		}
		return nil, fmt.Errorf("lookup default role: %w", err)
	}

	out := p.Clone()
	out[common.FieldActive] = false
	out[common.FieldDeleted] = false
	out[common.FieldRoleID] = role.ID
	return out, nil
}
