package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect names a supported SQL backend.
type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite"
)

// ParseDialect accepts the configured driver name.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported store driver %q", name)
	}
}

// sqliteTimeLayout is a text form SQLite's DATE() and strftime() parse.
const sqliteTimeLayout = "2006-01-02 15:04:05.999"

// TimeArg converts t into a bind argument; nil stays NULL. SQLite keeps
// timestamps as text, so they are written in UTC in a layout its date
// functions understand.
func (d Dialect) TimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	if d == SQLite {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return *t
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	return string(d)
}

// Placeholder returns the n-th (1-based) bind parameter.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Placeholders returns count comma-separated bind parameters.
func (d Dialect) Placeholders(count int) string {
	ps := make([]string, count)
	for i := range ps {
		ps[i] = d.Placeholder(i + 1)
	}
	return strings.Join(ps, ", ")
}

// Upsert builds an insert that overwrites updateCols when key already exists.
func (d Dialect) Upsert(table string, cols []string, key string, updateCols []string) string {
	sets := make([]string, len(updateCols))
	for i, c := range updateCols {
		switch d {
		case MySQL:
			sets[i] = fmt.Sprintf("%s = VALUES(%s)", c, c)
		default:
			sets[i] = fmt.Sprintf("%s = excluded.%s", c, c)
		}
	}

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), d.Placeholders(len(cols)))
	if d == MySQL {
		return insert + " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}
	return fmt.Sprintf("%s ON CONFLICT (%s) DO UPDATE SET %s", insert, key, strings.Join(sets, ", "))
}
