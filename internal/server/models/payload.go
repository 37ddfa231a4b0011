package models

import (
	"maps"

	"github.com/dmitrijs2005/teamkeeper/internal/common"
)

// Payload is raw client input for a user write, keyed by field name.
// Presence of a key matters to validation, so it is kept as a map rather
// than decoded into User early.
type Payload map[string]any

// Clone returns a shallow copy of p.
func (p Payload) Clone() Payload {
	if p == nil {
		return Payload{}
	}
	return maps.Clone(p)
}

// Has reports whether field is present, even with a nil value.
func (p Payload) Has(field string) bool {
	_, ok := p[field]
	return ok
}

// String returns the field as a string when it holds one.
func (p Payload) String(field string) (string, bool) {
	s, ok := p[field].(string)
	return s, ok
}

// ToUser builds a candidate User from an already validated payload.
// Boolean fields accept the loose forms allowed by validation.
func (p Payload) ToUser() *User {
	u := &User{}
	u.ID, _ = p.String(common.FieldID)
	u.Username, _ = p.String(common.FieldUsername)
	u.RoleID, _ = p.String(common.FieldRoleID)
	u.Active, _ = common.ToBool(p[common.FieldActive])
	u.Deleted, _ = common.ToBool(p[common.FieldDeleted])

	if prof, ok := AsProfile(p[common.FieldProfile]); ok {
		u.Profile = prof
	}
	return u
}

// AsProfile reads a profile sub-document. It accepts the map shapes a
// decoder or an in-process caller produce, and fails when the value is not a
// map or a name field holds something other than a string.
func AsProfile(v any) (*Profile, bool) {
	var fields map[string]any
	switch m := v.(type) {
	case map[string]any:
		fields = m
	case Payload:
		fields = m
	case map[string]string:
		fields = make(map[string]any, len(m))
		for k, s := range m {
			fields[k] = s
		}
	default:
		return nil, false
	}

	prof := &Profile{}
	var ok bool
	if raw, present := fields[common.FieldFirstName]; present {
		if prof.FirstName, ok = raw.(string); !ok {
			return nil, false
		}
	}
	if raw, present := fields[common.FieldLastName]; present {
		if prof.LastName, ok = raw.(string); !ok {
			return nil, false
		}
	}
	return prof, true
}
