package crawler

import (
	"context"

	"github.com/nao1215/recipescan/internal/model"
)

// Store persists recipe records keyed by url.
// database.Collection satisfies this interface.
type Store interface {
	// FindOne returns the record stored for url, or nil, nil if none is stored.
	FindOne(ctx context.Context, url string) (model.Recipe, error)

	// InsertMany writes each record. A failure on one record does not stop
	// the others from being written.
	InsertMany(ctx context.Context, records []model.Recipe) error

	// UpdateOne sets fields on the record stored for url.
	UpdateOne(ctx context.Context, url string, fields model.Recipe) error
}
