// Package model defines the core data structures shared across the
// trainfetch pipeline: the Dataset file format and the Run state object.
//
// The Dataset's JSON shape (valid_links, training_data, last_updated) is a
// wire format consumed by the downstream chatbot and is therefore fixed;
// any change here is a breaking change for consumers.
//
// Design decision: this package depends on no other internal package so
// that every layer (fetcher, extractor, pipeline, report, database) can
// share these types without import cycles.
package model
