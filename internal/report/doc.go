// Package report renders run output: the dataset file itself
// (DatasetWriter) and the run summary in human-readable, JSON, and
// Markdown formats behind a common Writer interface.
package report
