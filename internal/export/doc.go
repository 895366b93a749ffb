// Package export renders event history as downloadable documents.
//
// Three formats are supported: CSV for spreadsheets, JSON with a
// category summary, and a plain text report. Each format has a
// streaming writer over io.Writer, used directly by the HTTP export
// endpoint, plus the Exporter which saves timestamped files to the
// configured export directory.
package export
