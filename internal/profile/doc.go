// Package profile guesses the crawl settings of a new site from one sample
// recipe page. The result is a starting point for a recipescan.yaml profile,
// not something the crawler relies on.
package profile
