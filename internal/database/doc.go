// Package database provides the document store recipes are written to.
//
// RecipeDB keeps every record as a JSON document keyed by (collection,
// url). Two backends share the same code through database/sql:
//
//   - SQLite via modernc.org/sqlite (default, a single file, no CGO)
//   - PostgreSQL via github.com/jackc/pgx/v4/stdlib, selected by a
//     postgres:// or postgresql:// DSN
//
// A Collection is the handle the crawler writes through. It only ever
// filters and writes by url.
package database
