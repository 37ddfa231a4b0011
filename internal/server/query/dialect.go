package query

import (
	"regexp"
	"strconv"
)

// Dialect decides how positional parameters are spelled.
type Dialect int

const (
	// Postgres numbers parameters: $1, $2, ...
	Postgres Dialect = iota
	// SQLite uses anonymous "?" parameters.
	SQLite
)

// Placeholder returns the parameter marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d == SQLite {
		return "?"
	}
	return "$" + strconv.Itoa(n)
}

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

var numbered = regexp.MustCompile(`\$\d+`)

// Rebind rewrites a statement written with $n markers for d. Markers must
// appear in argument order, each once, when d is SQLite.
func (d Dialect) Rebind(stmt string) string {
	if d != SQLite {
		return stmt
	}
	return numbered.ReplaceAllString(stmt, "?")
}
