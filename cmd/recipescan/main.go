// Package main provides the entry point for the recipescan CLI.
//
// recipescan crawls recipe sites, extracts the structured recipe data they
// publish as JSON-LD, microdata or RDFa, and stores one record per recipe
// page in SQLite or PostgreSQL.
//
// Usage:
//
//	recipescan build <sample-recipe-url>
//	recipescan collect -p <profile> [-a <args>] [-d <depth>]
//	recipescan update -p <profile> [--preserve]
//
// See --help for all available options.
package main

func main() {
	Execute()
}
