// Package linkgen produces the seed URLs of a crawl from a profile's links
// block or from a link file.
package linkgen
