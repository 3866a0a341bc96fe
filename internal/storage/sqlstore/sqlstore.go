// Package sqlstore implements the storage queries on database/sql. The SQLite
// and PostgreSQL stores share it and differ only in placeholder syntax.
package sqlstore

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/tracked/internal/migration"
)

// Queries runs the domain queries against db.
type Queries struct {
	db      *sql.DB
	dialect migration.Dialect
}

// New wraps db. Queries are written with "?" placeholders and rebound for
// dialect.
func New(db *sql.DB, dialect migration.Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

// DB returns the underlying connection.
func (q *Queries) DB() *sql.DB {
	return q.db
}

// Rebind rewrites "?" placeholders into "$n" for PostgreSQL.
func Rebind(dialect migration.Dialect, query string) string {
	if dialect != migration.Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (q *Queries) rebind(query string) string {
	return Rebind(q.dialect, query)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
