// Package pipeline orchestrates a preprocessing run as a sequence of
// steps: fetch the links list, harvest every page, save the dataset,
// publish, and record history.
//
// The list fetch and dataset save are fatal on failure; everything after
// the dataset is written is best-effort, because the saved file is the
// run's product and later failures must not discard it.
package pipeline
