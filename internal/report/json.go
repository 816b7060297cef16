package report

import (
	"encoding/json"
	"io"

	"github.com/trainfetch/trainfetch/internal/model"
)

// JSONWriter outputs run summaries in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: standard encoding/json rather than a third-party JSON
// library; the summary is small and written once per run, so codegen or
// streaming encoders buy nothing here.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// jsonSummary is the JSON shape of a run summary. It flattens the counters
// the Run computes on demand, so consumers do not have to rederive them.
type jsonSummary struct {
	LinksURL       string          `json:"links_url"`
	OutputPath     string          `json:"output_path"`
	StartedAt      string          `json:"started_at"`
	FinishedAt     string          `json:"finished_at,omitempty"`
	TotalLinks     int             `json:"total_links"`
	LoadedLinks    int             `json:"loaded_links"`
	FailedLinks    int             `json:"failed_links"`
	Outcomes       []model.Outcome `json:"outcomes"`
	PublishedKey   string          `json:"published_key,omitempty"`
	PublishError   string          `json:"publish_error,omitempty"`
	PublishSkipped bool            `json:"publish_skipped"`
	Error          string          `json:"error,omitempty"`
}

// Write outputs the run summary in JSON format.
func (w *JSONWriter) Write(run *model.Run) (int, error) {
	summary := jsonSummary{
		LinksURL:       run.LinksURL,
		OutputPath:     run.OutputPath,
		StartedAt:      run.StartedAt.Format(model.TimestampFormat),
		TotalLinks:     len(run.Links),
		LoadedLinks:    run.LoadedCount(),
		FailedLinks:    run.FailedCount(),
		Outcomes:       run.Outcomes,
		PublishedKey:   run.PublishedKey,
		PublishError:   run.PublishError,
		PublishSkipped: run.PublishSkipped,
		Error:          run.ErrorMessage,
	}
	if !run.FinishedAt.IsZero() {
		summary.FinishedAt = run.FinishedAt.Format(model.TimestampFormat)
	}

	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(summary, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(summary)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline for better terminal output
	data = append(data, '\n')
	return w.output.Write(data)
}
