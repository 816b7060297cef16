package model

import "time"

// Run carries the mutable state of a single preprocessing run through the
// pipeline. It replaces ambient globals (accumulated dataset, live browser
// session) with an explicit value passed to each step, so link processing
// can be tested in isolation without a real browser or network.
type Run struct {
	// LinksURL is the remote list the run fetched its links from.
	LinksURL string

	// Links is the ordered link list produced by the fetch_links step.
	Links []string

	// Dataset accumulates the per-link extracted text.
	Dataset *Dataset

	// Outcomes records one entry per processed link, in processing order.
	Outcomes []Outcome

	// OutputPath is where the save_dataset step wrote (or will write)
	// the serialized dataset.
	OutputPath string

	// StartedAt and FinishedAt bound the run for reporting and history.
	StartedAt  time.Time
	FinishedAt time.Time

	// PublishSkipped is true when the publish step was suppressed
	// (CI environment signal, --no-publish, or no publisher configured).
	PublishSkipped bool

	// PublishedKey is the remote object key on successful publish.
	PublishedKey string

	// PublishError holds the publish failure, if any. A publish failure
	// never invalidates the locally saved dataset.
	PublishError string

	// Error and ErrorMessage record a fatal pipeline error.
	Error        error  `json:"-"`
	ErrorMessage string `json:",omitempty"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string
}

// Outcome describes the result of processing one link.
type Outcome struct {
	// Link is the processed URL.
	Link string

	// Strategy names the retrieval strategy that produced the content
	// ("rendered", "direct"), or "" when every strategy failed.
	Strategy string

	// Chars is the length in runes of the stored extracted text.
	Chars int

	// Duration is the wall time spent on this link.
	Duration time.Duration

	// Err is the terminal error text for a failed link, "" on success.
	Err string
}

// OK reports whether the link yielded non-empty text.
func (o Outcome) OK() bool {
	return o.Chars > 0 && o.Err == ""
}

// NewRun creates a Run for the given links URL with an empty dataset.
func NewRun(linksURL string) *Run {
	return &Run{
		LinksURL:  linksURL,
		Dataset:   NewDataset(),
		Outcomes:  make([]Outcome, 0),
		StartedAt: time.Now(),
	}
}

// RecordOutcome appends a per-link outcome.
func (r *Run) RecordOutcome(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// LoadedCount returns the number of links that yielded non-empty text.
func (r *Run) LoadedCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}

// FailedCount returns the number of links that yielded empty text.
func (r *Run) FailedCount() int {
	return len(r.Outcomes) - r.LoadedCount()
}
