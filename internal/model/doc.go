// Package model defines the recipe record shared by the extractor, the
// crawler and the storage layer.
//
// A Recipe is a loosely typed document keyed by schema.org/Recipe property
// names. JSON-LD sources are copied verbatim, so values keep whatever shape
// the site published (strings, lists, nested objects). Records extracted
// from microdata or RDFa only ever contain strings and string lists.
//
// The models are designed to be serialized to JSON for database storage.
package model
