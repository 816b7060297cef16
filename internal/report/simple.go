package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/trainfetch/trainfetch/internal/model"
)

// durationPrecision rounds displayed durations to something readable.
const durationPrecision = 10 * time.Millisecond

// SimpleWriter outputs human-readable text run summaries.
// This format is designed for terminal display.
//
// Design decision: plain text with ASCII formatting rather than ANSI
// colors, so output works in all terminals and pipes cleanly to files.
type SimpleWriter struct {
	baseWriter

	// verbose enables the per-link outcome listing.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables per-link detail in the output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the run summary in human-readable format.
func (w *SimpleWriter) Write(run *model.Run) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, run)
	w.writeCounts(&sb, run)
	if w.verbose {
		w.writeOutcomes(&sb, run)
	}
	w.writeFailures(&sb, run)
	w.writePublish(&sb, run)

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, run *model.Run) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        TRAINFETCH RUN SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Links List:  %s\n", run.LinksURL))
	sb.WriteString(fmt.Sprintf("Output File: %s\n", run.OutputPath))
	if !run.FinishedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("Duration:    %s\n", run.FinishedAt.Sub(run.StartedAt).Round(durationPrecision)))
	}

	if run.ErrorMessage != "" {
		sb.WriteString(fmt.Sprintf("Status:      ERROR - %s\n", run.ErrorMessage))
	} else {
		sb.WriteString("Status:      Complete\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeCounts(sb *strings.Builder, run *model.Run) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  TOTAL:  %d\n", len(run.Links)))
	sb.WriteString(fmt.Sprintf("  LOADED: %d\n", run.LoadedCount()))
	sb.WriteString(fmt.Sprintf("  FAILED: %d\n", run.FailedCount()))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeOutcomes(sb *strings.Builder, run *model.Run) {
	if len(run.Outcomes) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PER-LINK OUTCOMES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, o := range run.Outcomes {
		if o.OK() {
			sb.WriteString(fmt.Sprintf("  [+] %s (%d chars via %s, %s)\n",
				o.Link, o.Chars, o.Strategy, o.Duration.Round(durationPrecision)))
		} else {
			sb.WriteString(fmt.Sprintf("  [-] %s\n", o.Link))
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFailures(sb *strings.Builder, run *model.Run) {
	failed := make([]model.Outcome, 0)
	for _, o := range run.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	if len(failed) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILED LINKS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, o := range failed {
		sb.WriteString(fmt.Sprintf("  * %s\n", o.Link))
		if o.Err != "" {
			sb.WriteString(fmt.Sprintf("    Reason: %s\n", o.Err))
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writePublish(sb *strings.Builder, run *model.Run) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PUBLISH\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	switch {
	case run.PublishedKey != "":
		sb.WriteString(fmt.Sprintf("  Uploaded as %s\n", run.PublishedKey))
	case run.PublishError != "":
		sb.WriteString(fmt.Sprintf("  FAILED: %s\n", run.PublishError))
		sb.WriteString(fmt.Sprintf("  The dataset was saved locally; upload %s manually.\n", run.OutputPath))
	case run.PublishSkipped:
		sb.WriteString("  Skipped\n")
	default:
		sb.WriteString("  Not configured\n")
	}
	sb.WriteString("\n")
}
