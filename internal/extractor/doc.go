// Package extractor converts fetched HTML into the plain visible text
// stored in the training dataset.
//
// Extraction walks the parsed DOM and keeps only text that would render
// on screen, then collapses whitespace, normalizes to NFC, and applies the
// configured rune cap. Markup the parser cannot handle falls back to a
// tag-stripping pass so a badly broken page still yields its prose.
package extractor
