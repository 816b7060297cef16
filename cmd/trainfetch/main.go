// Package main provides the entry point for the trainfetch CLI.
//
// Trainfetch builds chatbot training datasets from the public web. It
// downloads a newline-delimited list of page URLs, retrieves each page
// with a headless browser (falling back to plain HTTP), extracts the
// visible text, and writes the result as a JSON dataset file.
//
// Usage:
//
//	trainfetch run https://example.com/links.txt
//	trainfetch history
//
// See --help for all available options.
package main

// main is the entry point for trainfetch.
func main() {
	Execute()
}
