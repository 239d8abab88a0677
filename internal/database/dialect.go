package database

import (
	"strconv"
	"strings"
)

// dialect captures the SQL differences between the backends.
type dialect struct {
	name   string
	driver string
	schema string

	// numbered reports whether placeholders are $1, $2, ... instead of ?.
	numbered bool
}

var sqliteDialect = dialect{
	name:   "sqlite",
	driver: "sqlite",
	schema: `
	CREATE TABLE IF NOT EXISTS recipes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		url TEXT NOT NULL,
		document TEXT NOT NULL,
		collect_time DATETIME DEFAULT CURRENT_TIMESTAMP,
		update_time DATETIME,
		UNIQUE(collection, url)
	);

	CREATE INDEX IF NOT EXISTS idx_recipes_collection ON recipes(collection);
	CREATE INDEX IF NOT EXISTS idx_recipes_collect_time ON recipes(collect_time);
	`,
}

var postgresDialect = dialect{
	name:     "postgres",
	driver:   "pgx",
	numbered: true,
	schema: `
	CREATE TABLE IF NOT EXISTS recipes (
		id BIGSERIAL PRIMARY KEY,
		collection TEXT NOT NULL,
		url TEXT NOT NULL,
		document JSONB NOT NULL,
		collect_time TIMESTAMPTZ DEFAULT NOW(),
		update_time TIMESTAMPTZ,
		UNIQUE(collection, url)
	);

	CREATE INDEX IF NOT EXISTS idx_recipes_collection ON recipes(collection);
	CREATE INDEX IF NOT EXISTS idx_recipes_collect_time ON recipes(collect_time);
	`,
}

// rebind rewrites ? placeholders for dialects that number them.
// Queries in this package never contain a literal question mark.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
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

// isPostgresDSN reports whether dsn selects the PostgreSQL backend.
func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
