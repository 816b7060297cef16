package model

import (
	"encoding/json"
	"time"
)

// TimestampFormat is the layout for the dataset's last_updated field.
// The downstream chatbot parses this exact human-readable form, so it is
// part of the file format and must not change.
const TimestampFormat = "2006-01-02 15:04:05"

// Dataset is the keyed training dataset produced by a single run.
// It pairs an ordered link sequence with the text extracted for each link.
//
// Invariant: every link in Links has exactly one entry in Entries (possibly
// the empty string), and Entries holds no key that is absent from Links.
// The only way to grow a Dataset is Add, which maintains both sides in
// lockstep; callers must not mutate Links or Entries directly.
type Dataset struct {
	// Links is the ordered sequence of links, preserving the source
	// list's original order. Duplicates are kept as-is.
	Links []string

	// Entries maps each link to its extracted text. The empty string
	// records a retrieval failure, not absence of the link.
	Entries map[string]string

	// GeneratedAt is the dataset generation time, stamped by Stamp.
	GeneratedAt time.Time
}

// NewDataset creates an empty Dataset.
func NewDataset() *Dataset {
	return &Dataset{
		Links:   make([]string, 0),
		Entries: make(map[string]string),
	}
}

// Add records a link and its extracted text.
// A link seen for the first time is appended to the ordered sequence.
// Adding the same link again overwrites its text without appending a
// second sequence entry, so the invariant holds for duplicate input lines.
func (d *Dataset) Add(link, text string) {
	if _, ok := d.Entries[link]; !ok {
		d.Links = append(d.Links, link)
	}
	d.Entries[link] = text
}

// Len returns the number of unique links recorded.
func (d *Dataset) Len() int {
	return len(d.Links)
}

// LoadedCount returns the number of links with non-empty extracted text.
func (d *Dataset) LoadedCount() int {
	n := 0
	for _, link := range d.Links {
		if d.Entries[link] != "" {
			n++
		}
	}
	return n
}

// Stamp records the generation time. Call once, after the last Add.
func (d *Dataset) Stamp(t time.Time) {
	d.GeneratedAt = t
}

// datasetJSON is the on-disk shape of the dataset file.
// The key names are consumed verbatim by the chatbot loader.
type datasetJSON struct {
	ValidLinks   []string          `json:"valid_links"`
	TrainingData map[string]string `json:"training_data"`
	LastUpdated  string            `json:"last_updated"`
}

// MarshalJSON serializes the dataset in the fixed file format:
// valid_links (ordered array), training_data (object), last_updated
// (TimestampFormat string).
func (d *Dataset) MarshalJSON() ([]byte, error) {
	out := datasetJSON{
		ValidLinks:   d.Links,
		TrainingData: d.Entries,
		LastUpdated:  d.GeneratedAt.Format(TimestampFormat),
	}
	if out.ValidLinks == nil {
		out.ValidLinks = []string{}
	}
	if out.TrainingData == nil {
		out.TrainingData = map[string]string{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses a dataset file written by MarshalJSON.
// Used by tooling that inspects previously generated datasets.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	var in datasetJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	d.Links = in.ValidLinks
	d.Entries = in.TrainingData
	if d.Links == nil {
		d.Links = make([]string, 0)
	}
	if d.Entries == nil {
		d.Entries = make(map[string]string)
	}

	if in.LastUpdated != "" {
		t, err := time.ParseInLocation(TimestampFormat, in.LastUpdated, time.Local)
		if err != nil {
			return err
		}
		d.GeneratedAt = t
	}
	return nil
}
