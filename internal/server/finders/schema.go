package finders

import "github.com/dmitrijs2005/teamkeeper/internal/server/query"

// Association describes how a related table attaches to the users table.
// BelongsTo associations hold the foreign key on the users side
// (users.role_id), the others hold it on the related side (profiles.user_id).
type Association struct {
	Table      string
	ForeignKey string
	BelongsTo  bool
	Kind       query.JoinKind
}

// Schema is the explicit table configuration the Composer works from.
type Schema struct {
	Users    string
	Roles    Association
	Profiles Association
	Gpgkeys  Association
}

// DefaultSchema matches the tables created by the embedded migrations.
func DefaultSchema() Schema {
	return Schema{
		Users:    "users",
		Roles:    Association{Table: "roles", ForeignKey: "role_id", BelongsTo: true, Kind: query.InnerJoin},
		Profiles: Association{Table: "profiles", ForeignKey: "user_id", Kind: query.LeftJoin},
		Gpgkeys:  Association{Table: "gpgkeys", ForeignKey: "user_id", Kind: query.LeftJoin},
	}
}

func (s Schema) join(a Association) query.Join {
	on := a.Table + "." + a.ForeignKey + " = " + s.Users + ".id"
	if a.BelongsTo {
		on = a.Table + ".id = " + s.Users + "." + a.ForeignKey
	}
	return query.Join{Kind: a.Kind, Table: a.Table, On: on}
}

// UserColumn qualifies a users column, e.g. "users.active".
func (s Schema) UserColumn(name string) string {
	return s.Users + "." + name
}

// Column qualifies a column of an associated table.
func (a Association) Column(name string) string {
	return a.Table + "." + name
}
