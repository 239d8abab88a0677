package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// DBFileName is the SQLite database file created inside the data directory.
const DBFileName = "recipes.db"

var (
	// ErrNotFound is returned when an update targets a url that is not stored.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a record's url is already stored in the
	// collection.
	ErrDuplicate = errors.New("record already exists")

	// ErrMissingURL is returned when a record has no url field.
	ErrMissingURL = errors.New("record has no url")
)

// RecipeDB stores recipe documents.
type RecipeDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dialect selects schema and placeholder syntax.
	dialect dialect

	// location is the database file path or the DSN it was opened with.
	location string
}

// Options configures RecipeDB behavior.
type Options struct {
	// CreateIfNotExists creates the SQLite file and its directory if they
	// don't exist. Ignored for PostgreSQL.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for SQLite.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens the store named by location: a PostgreSQL DSN
// (postgres://...) or a directory holding the SQLite database.
func Open(ctx context.Context, location string, opts Options) (*RecipeDB, error) {
	if isPostgresDSN(location) {
		return openPostgres(ctx, location)
	}
	return openSQLite(ctx, location, opts)
}

// openSQLite opens or creates recipes.db inside dbDir.
func openSQLite(ctx context.Context, dbDir string, opts Options) (*RecipeDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open(sqliteDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if opts.EnableWAL {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	return initDB(ctx, db, sqliteDialect, dbPath)
}

// openPostgres connects to a PostgreSQL server.
func openPostgres(ctx context.Context, dsn string) (*RecipeDB, error) {
	db, err := sql.Open(postgresDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return initDB(ctx, db, postgresDialect, dsn)
}

func initDB(ctx context.Context, db *sql.DB, d dialect, location string) (*RecipeDB, error) {
	rdb := &RecipeDB{db: db, dialect: d, location: location}
	if _, err := db.ExecContext(ctx, d.schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return rdb, nil
}

// Close closes the database connection.
func (rdb *RecipeDB) Close() error {
	return rdb.db.Close()
}

// Backend returns "sqlite" or "postgres".
func (rdb *RecipeDB) Backend() string {
	return rdb.dialect.name
}

// Location returns the database file path or DSN.
func (rdb *RecipeDB) Location() string {
	return rdb.location
}

// Collection returns a handle to the named collection.
// Collections are created implicitly on first insert.
func (rdb *RecipeDB) Collection(name string) *Collection {
	return &Collection{rdb: rdb, name: name}
}

// CollectionInfo summarizes one collection.
type CollectionInfo struct {
	// Name is the collection name.
	Name string `json:"name"`

	// Count is the number of stored records.
	Count int `json:"count"`

	// LastCollected is the most recent insert time, zero if unknown.
	LastCollected time.Time `json:"last_collected"`
}

// Collections lists every collection holding at least one record.
func (rdb *RecipeDB) Collections(ctx context.Context) ([]CollectionInfo, error) {
	query := `
	SELECT collection, COUNT(*), MAX(collect_time)
	FROM recipes
	GROUP BY collection
	ORDER BY collection
	`

	rows, err := rdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var results []CollectionInfo
	for rows.Next() {
		var info CollectionInfo
		var last sql.NullString
		if err := rows.Scan(&info.Name, &info.Count, &last); err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		if last.Valid {
			info.LastCollected = parseTimestamp(last.String)
		}
		results = append(results, info)
	}

	return results, rows.Err()
}

// decodeDocument unmarshals a stored JSON document.
func decodeDocument(data string) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	return doc, nil
}

// timestampFormats contains the timestamp formats the backends may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds, as database/sql formats time.Time
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
