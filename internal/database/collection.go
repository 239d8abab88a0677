package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/nao1215/recipescan/internal/model"
)

// Collection is a named set of recipe records, unique by url.
type Collection struct {
	rdb  *RecipeDB
	name string
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) q(query string) string {
	return c.rdb.dialect.rebind(query)
}

// FindOne returns the record stored for url, or nil if there is none.
func (c *Collection) FindOne(ctx context.Context, url string) (model.Recipe, error) {
	query := c.q(`
	SELECT document FROM recipes
	WHERE collection = ? AND url = ?
	`)

	var document string
	err := c.rdb.db.QueryRowContext(ctx, query, c.name, url).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find record %s: %w", url, err)
	}

	doc, err := decodeDocument(document)
	if err != nil {
		return nil, err
	}
	return model.Recipe(doc), nil
}

// Exists reports whether a record is stored for url.
func (c *Collection) Exists(ctx context.Context, url string) (bool, error) {
	query := c.q(`SELECT COUNT(*) FROM recipes WHERE collection = ? AND url = ?`)

	var count int
	if err := c.rdb.db.QueryRowContext(ctx, query, c.name, url).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check record %s: %w", url, err)
	}
	return count > 0, nil
}

// InsertMany inserts each record separately. A failing record does not
// prevent the others from being written; the returned error joins the
// failures, each wrapping ErrDuplicate, ErrMissingURL or the driver error.
func (c *Collection) InsertMany(ctx context.Context, records []model.Recipe) error {
	query := c.q(`
	INSERT INTO recipes (collection, url, document)
	VALUES (?, ?, ?)
	ON CONFLICT(collection, url) DO NOTHING
	`)

	var errs []error
	for _, rec := range records {
		url := rec.URL()
		if url == "" {
			errs = append(errs, ErrMissingURL)
			continue
		}

		document, err := json.Marshal(rec)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to serialize record %s: %w", url, err))
			continue
		}

		result, err := c.rdb.db.ExecContext(ctx, query, c.name, url, string(document))
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to insert record %s: %w", url, err))
			continue
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicate, url))
		}
	}

	return errors.Join(errs...)
}

// UpdateOne sets fields on the record stored for url, keeping every other
// field. It returns ErrNotFound when nothing is stored for url.
func (c *Collection) UpdateOne(ctx context.Context, url string, fields model.Recipe) error {
	tx, err := c.rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	var document string
	err = tx.QueryRowContext(ctx, c.q(`SELECT document FROM recipes WHERE collection = ? AND url = ?`), c.name, url).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if err != nil {
		return fmt.Errorf("failed to read record %s: %w", url, err)
	}

	doc, err := decodeDocument(document)
	if err != nil {
		return err
	}
	for k, v := range fields {
		doc[k] = v
	}
	// The key must stay the row's url.
	doc[model.FieldURL] = url

	merged, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize record %s: %w", url, err)
	}

	query := c.q(`
	UPDATE recipes SET document = ?, update_time = CURRENT_TIMESTAMP
	WHERE collection = ? AND url = ?
	`)
	if _, err := tx.ExecContext(ctx, query, string(merged), c.name, url); err != nil {
		return fmt.Errorf("failed to update record %s: %w", url, err)
	}

	return tx.Commit()
}

// Count returns the number of records in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	var count int
	err := c.rdb.db.QueryRowContext(ctx, c.q(`SELECT COUNT(*) FROM recipes WHERE collection = ?`), c.name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// URLs returns every stored url in insertion order.
func (c *Collection) URLs(ctx context.Context) ([]string, error) {
	return c.queryURLs(ctx, c.q(`SELECT url FROM recipes WHERE collection = ? ORDER BY id`), c.name)
}

// SampleURLs returns up to n stored urls chosen at random.
func (c *Collection) SampleURLs(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	return c.queryURLs(ctx, c.q(`SELECT url FROM recipes WHERE collection = ? ORDER BY RANDOM() LIMIT ?`), c.name, n)
}

func (c *Collection) queryURLs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := c.rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan url: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}

// FieldCount is the number of records carrying a field.
type FieldCount struct {
	Field string `json:"field"`
	Count int    `json:"count"`
}

// FieldCounts counts, for each field, the records in which it is present.
// The result follows the order of fields.
func (c *Collection) FieldCounts(ctx context.Context, fields []string) ([]FieldCount, error) {
	rows, err := c.rdb.db.QueryContext(ctx, c.q(`SELECT document FROM recipes WHERE collection = ?`), c.name)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int, len(fields))
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc, err := decodeDocument(document)
		if err != nil {
			continue // Skip malformed documents
		}
		for k := range doc {
			counts[k]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		for k := range counts {
			fields = append(fields, k)
		}
		sort.Strings(fields)
	}

	results := make([]FieldCount, 0, len(fields))
	for _, f := range fields {
		results = append(results, FieldCount{Field: f, Count: counts[f]})
	}
	return results, nil
}
