// Package publisher uploads generated datasets to S3-compatible object
// storage. Uploads are best-effort: a publish failure is reported but
// never fails the run, and CI environments suppress publishing entirely.
package publisher
