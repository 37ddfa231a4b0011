// Package finders composes the user lookups of the directory. Every finder
// returns a *query.Select that has not been executed; repositories render and
// run it. View and Auth are built on top of Index so the visibility rules are
// defined in exactly one place.
package finders

import (
	"strconv"

	"github.com/dmitrijs2005/teamkeeper/internal/common"
	"github.com/dmitrijs2005/teamkeeper/internal/server/query"
	"github.com/dmitrijs2005/teamkeeper/internal/server/roles"
)

// FilterIsActive is the filter key admins use to list inactive accounts.
const FilterIsActive = "is-active"

// Options is the caller context of a lookup.
type Options struct {
	// Role is the role name of the acting user. Required by Index and View.
	Role string
	// ID selects a single user for View.
	ID string
	// Fingerprint selects the key owner for Auth.
	Fingerprint string
	// Filter holds optional list filters keyed by name.
	Filter map[string]any
}

// Composer builds user queries for a Schema. It holds no mutable state.
type Composer struct {
	schema Schema
}

// New returns a Composer for schema.
func New(schema Schema) *Composer {
	return &Composer{schema: schema}
}

// Schema returns the table configuration in use.
func (c *Composer) Schema() Schema { return c.schema }

// Index lists the accounts visible to opts.Role: not deleted, active and not
// guests. Admins may replace the active term through the "is-active" filter.
func (c *Composer) Index(opts Options) (*query.Select, error) {
	if opts.Role == "" {
		return nil, &common.MissingContextError{Finder: "index", Option: "role"}
	}

	s := c.schema
	q := query.From(s.Users).
		Contain(s.join(s.Roles), s.join(s.Profiles), s.join(s.Gpgkeys)).
		Where(
			query.Eq(s.UserColumn("deleted"), false),
			query.Eq(s.UserColumn("active"), true),
			query.NotEq(s.Roles.Column("name"), roles.Guest),
		).
		Order(query.Order{Column: s.UserColumn("username")})

	if opts.Role == roles.Admin {
		active, ok, err := isActiveFilter(opts.Filter)
		if err != nil {
			return nil, err
		}
		if ok {
			q.Replace(query.Eq(s.UserColumn("active"), active))
		}
	}

	return q, nil
}

// View is Index narrowed to opts.ID.
func (c *Composer) View(opts Options) (*query.Select, error) {
	if opts.ID == "" {
		return nil, &common.MissingContextError{Finder: "view", Option: "id"}
	}

	q, err := c.Index(opts)
	if err != nil {
		return nil, err
	}
	return q.Where(query.Eq(c.schema.UserColumn("id"), opts.ID)), nil
}

// Auth finds the owner of a key fingerprint. The lookup always runs as a
// guest, whatever role the caller claims, so an admin context cannot widen it.
func (c *Composer) Auth(opts Options) (*query.Select, error) {
	if opts.Fingerprint == "" {
		return nil, &common.MissingContextError{Finder: "auth", Option: "fingerprint"}
	}

	opts.Role = roles.Guest
	q, err := c.Index(opts)
	if err != nil {
		return nil, err
	}
	return q.Where(query.Eq(c.schema.Gpgkeys.Column("fingerprint"), opts.Fingerprint)), nil
}

// Recover finds every non-deleted account with username, active accounts
// first. Inactive accounts are eligible so they can finish their setup.
func (c *Composer) Recover(username string) *query.Select {
	s := c.schema
	return query.From(s.Users).
		Contain(s.join(s.Roles), s.join(s.Profiles)).
		Where(
			query.Eq(s.UserColumn("username"), username),
			query.Eq(s.UserColumn("deleted"), false),
		).
		Order(
			query.Order{Column: s.UserColumn("active"), Desc: true},
			query.Order{Column: s.UserColumn("id")},
		)
}

// Setup finds a non-deleted account by id whatever its activation state,
// for flows such as attaching a first credential.
func (c *Composer) Setup(id string) *query.Select {
	s := c.schema
	return query.From(s.Users).
		Contain(s.join(s.Roles), s.join(s.Profiles), s.join(s.Gpgkeys)).
		Where(
			query.Eq(s.UserColumn("id"), id),
			query.Eq(s.UserColumn("deleted"), false),
		)
}

func isActiveFilter(filter map[string]any) (value bool, present bool, err error) {
	raw, ok := filter[FilterIsActive]
	if !ok || raw == nil {
		return false, false, nil
	}

	if s, isString := raw.(string); isString {
		b, perr := strconv.ParseBool(s)
		if perr == nil {
			return b, true, nil
		}
	} else if b, isBool := raw.(bool); isBool {
		return b, true, nil
	}

	return false, false, &common.ValidationError{
		Context: "index",
		Violations: []common.Violation{{
			Field:   "filter." + FilterIsActive,
			Rule:    "boolean",
			Message: "The is-active filter should be a boolean.",
		}},
	}
}
