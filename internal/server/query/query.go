// Package query describes relational SELECT statements as data. Finders build
// a Select, repositories render it for their dialect and execute it, so the
// visibility rules stay inspectable before anything touches the database.
package query

import (
	"fmt"
	"slices"
	"strings"
)

// Op is a comparison operator.
type Op string

const (
	OpEq    Op = "="
	OpNotEq Op = "<>"
)

// Predicate is a single "column op value" term. All predicates of a Select
// are joined with AND.
type Predicate struct {
	Column string
	Op     Op
	Value  any
}

// Eq builds "column = value".
func Eq(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpEq, Value: value}
}

// NotEq builds "column <> value".
func NotEq(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpNotEq, Value: value}
}

// JoinKind selects the SQL join type.
type JoinKind string

const (
	InnerJoin JoinKind = "INNER JOIN"
	LeftJoin  JoinKind = "LEFT JOIN"
)

// Join attaches a related table. On is a column equality such as
// "roles.id = users.role_id".
type Join struct {
	Kind  JoinKind
	Table string
	On    string
}

// Order is one ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// Select is a composed, not yet executed query.
type Select struct {
	Table      string
	Columns    []string
	Joins      []Join
	Predicates []Predicate
	OrderBy    []Order
	Limit      int
}

// From starts a query on table.
func From(table string) *Select {
	return &Select{Table: table}
}

// Contain adds joins, skipping tables that are already joined.
func (s *Select) Contain(joins ...Join) *Select {
	for _, j := range joins {
		if !s.HasJoin(j.Table) {
			s.Joins = append(s.Joins, j)
		}
	}
	return s
}

// Where appends predicates.
func (s *Select) Where(p ...Predicate) *Select {
	s.Predicates = append(s.Predicates, p...)
	return s
}

// Replace swaps every predicate on p.Column for p. If the column had no
// predicate yet, p is appended.
func (s *Select) Replace(p Predicate) *Select {
	out := s.Predicates[:0:0]
	replaced := false
	for _, cur := range s.Predicates {
		if cur.Column != p.Column {
			out = append(out, cur)
			continue
		}
		if !replaced {
			out = append(out, p)
			replaced = true
		}
	}
	if !replaced {
		out = append(out, p)
	}
	s.Predicates = out
	return s
}

// Order appends ORDER BY terms.
func (s *Select) Order(o ...Order) *Select {
	s.OrderBy = append(s.OrderBy, o...)
	return s
}

// Fields sets the projected columns.
func (s *Select) Fields(cols ...string) *Select {
	s.Columns = cols
	return s
}

// First limits the query to a single row.
func (s *Select) First() *Select {
	s.Limit = 1
	return s
}

// HasJoin reports whether table is joined.
func (s *Select) HasJoin(table string) bool {
	return slices.ContainsFunc(s.Joins, func(j Join) bool { return j.Table == table })
}

// Predicate returns the first predicate on column.
func (s *Select) Predicate(column string) (Predicate, bool) {
	for _, p := range s.Predicates {
		if p.Column == column {
			return p, true
		}
	}
	return Predicate{}, false
}

// Clone returns a deep copy of the slices held by s.
func (s *Select) Clone() *Select {
	c := *s
	c.Columns = slices.Clone(s.Columns)
	c.Joins = slices.Clone(s.Joins)
	c.Predicates = slices.Clone(s.Predicates)
	c.OrderBy = slices.Clone(s.OrderBy)
	return &c
}

// Render produces SQL text and positional arguments for the dialect.
func (s *Select) Render(d Dialect) (string, []any) {
	var b strings.Builder
	args := make([]any, 0, len(s.Predicates))

	cols := "*"
	if len(s.Columns) > 0 {
		cols = strings.Join(s.Columns, ", ")
	}
	fmt.Fprintf(&b, "SELECT %s FROM %s", cols, s.Table)

	for _, j := range s.Joins {
		fmt.Fprintf(&b, " %s %s ON %s", j.Kind, j.Table, j.On)
	}

	for i, p := range s.Predicates {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		args = append(args, p.Value)
		fmt.Fprintf(&b, "%s %s %s", p.Column, p.Op, d.Placeholder(len(args)))
	}

	for i, o := range s.OrderBy {
		if i == 0 {
			b.WriteString(" ORDER BY ")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(o.Column)
		if o.Desc {
			b.WriteString(" DESC")
		} else {
			b.WriteString(" ASC")
		}
	}

	if s.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", s.Limit)
	}

	return b.String(), args
}
