// Package browser provides the rendered-fetch path: a lazily launched,
// periodically recycled headless Chromium session, a Renderer that
// implements the fetch strategy interface over it, and the reveal passes
// that surface initially hidden page content before the DOM is read.
package browser
