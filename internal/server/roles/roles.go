// Package roles is the role registry: the fixed set of role names used as
// filter values, and an immutable name/id index loaded from the store.
package roles

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/teamkeeper/internal/common"
	"github.com/dmitrijs2005/teamkeeper/internal/server/models"
)

const (
	// Guest is the unprivileged actor used for authentication lookups.
	Guest = "guest"
	// User is the default role assigned on registration.
	User = "user"
	// Admin may list inactive accounts.
	Admin = "admin"
	// Root is reserved for the deployment owner.
	Root = "root"
)

// Default is the role forced onto registered accounts.
const Default = User

var descriptions = map[string]string{
	Guest: "Non logged in user",
	User:  "Logged in user",
	Admin: "Organization administrator",
	Root:  "Super administrator",
}

// Names lists the known role names in privilege order.
func Names() []string {
	return []string{Guest, User, Admin, Root}
}

// Lister loads every role row.
type Lister interface {
	List(ctx context.Context) ([]*models.Role, error)
}

// Registry indexes roles by name and id. It is never mutated after Load, so
// it is safe for concurrent use.
type Registry struct {
	byName map[string]*models.Role
	byID   map[string]*models.Role
}

// NewRegistry indexes the given rows.
func NewRegistry(rows []*models.Role) *Registry {
	r := &Registry{
		byName: make(map[string]*models.Role, len(rows)),
		byID:   make(map[string]*models.Role, len(rows)),
	}
	for _, row := range rows {
		role := *row
		r.byName[role.Name] = &role
		r.byID[role.ID] = &role
	}
	return r
}

// Load reads the roles table once and builds a Registry.
func Load(ctx context.Context, l Lister) (*Registry, error) {
	rows, err := l.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	return NewRegistry(rows), nil
}

// ByName returns a copy of the role named name.
func (r *Registry) ByName(name string) (models.Role, bool) {
	role, ok := r.byName[name]
	if !ok {
		return models.Role{}, false
	}
	return *role, true
}

// ByID returns a copy of the role with the given id.
func (r *Registry) ByID(id string) (models.Role, bool) {
	role, ok := r.byID[id]
	if !ok {
		return models.Role{}, false
	}
	return *role, true
}

// Len is the number of loaded roles.
func (r *Registry) Len() int { return len(r.byID) }

// Default returns the registration role, or a ConfigurationError when the
// deployment was not seeded with it.
func (r *Registry) Default() (models.Role, error) {
	role, ok := r.ByName(Default)
	if !ok {
		return models.Role{}, &common.ConfigurationError{Reason: fmt.Sprintf("default role %q is not defined", Default)}
	}
	return role, nil
}
