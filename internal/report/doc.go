// Package report renders command results for people and tools.
//
// Three formats are available behind the Writer interface:
//   - TextWriter: aligned plain text for the terminal
//   - MarkdownWriter: GitHub Flavored Markdown built with nao1215/markdown
//   - JSONWriter: JSON for scripting
//
// Three kinds of result are rendered: a detected site profile, collection
// statistics, and the summary of a crawl batch.
package report
