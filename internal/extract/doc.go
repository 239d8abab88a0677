// Package extract turns fetched pages into recipe records.
//
// # Markup schemes
//
// Three schema.org/Recipe markup conventions are supported, each with its
// own Extractor:
//
//   - JSON-LD: <script type="application/ld+json"> blocks, copied verbatim
//   - Microdata: elements tagged with itemprop inside an itemtype scope
//   - RDFa: elements tagged with property inside a typeof="Recipe" scope
//
// The scheme is chosen once, when a site profile is loaded, with New. The
// returned Extractor is reused for every page of the crawl.
//
// # Validation
//
// Every extracted record is filtered to the store-fields allow-list,
// stamped with url and collect_time, and passed through Validate. Records
// missing a required field are logged and dropped.
//
// # Known limitation
//
// Microdata and RDFa properties are searched inside the recipe scope first
// and then anywhere on the page. A page carrying several unrelated scopes
// can therefore have a property attributed to the wrong recipe.
package extract
