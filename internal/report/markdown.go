package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/trainfetch/trainfetch/internal/model"
)

// MarkdownWriter outputs run summaries in Markdown format.
// This format is designed for commit descriptions and shared run logs.
//
// Design decision: the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeCounts(md, run)
	w.writeFailures(md, run)
	w.writePublish(md, run)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.Run) {
	md.H1("Trainfetch Run Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Links List", "`" + run.LinksURL + "`"},
			{"Output File", "`" + run.OutputPath + "`"},
			{"Started", run.StartedAt.Format(model.TimestampFormat)},
			{"Status", w.statusText(run)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) statusText(run *model.Run) string {
	if run.ErrorMessage != "" {
		return "❌ Error - " + run.ErrorMessage
	}
	return "✅ Complete"
}

func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, run *model.Run) {
	md.H2("Pages")
	md.PlainText("")

	loaded := run.LoadedCount()
	failed := run.FailedCount()

	md.Table(markdown.TableSet{
		Header: []string{"Result", "Count"},
		Rows: [][]string{
			{"🟢 Loaded", strconv.Itoa(loaded)},
			{"🔴 Failed", strconv.Itoa(failed)},
			{"**Total**", "**" + strconv.Itoa(len(run.Links)) + "**"},
		},
	})
	md.PlainText("")

	if loaded > 0 || failed > 0 {
		w.writePieChart(md, loaded, failed)
	}

	if failed > 0 {
		md.Warningf("%d link(s) yielded no content and were stored as empty entries.", failed)
	}
}

// writePieChart writes a mermaid pie chart for the load outcome split.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, loaded, failed int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Load Outcomes"),
		piechart.WithShowData(true),
	)

	if loaded > 0 {
		chart.LabelAndIntValue("Loaded", uint64(loaded))
	}
	if failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(failed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, run *model.Run) {
	rows := make([][]string, 0)
	for _, o := range run.Outcomes {
		if o.OK() {
			continue
		}
		reason := o.Err
		if reason == "" {
			reason = "empty content"
		}
		rows = append(rows, []string{"`" + o.Link + "`", reason})
	}
	if len(rows) == 0 {
		return
	}

	md.H2("Failed Links")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Link", "Reason"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writePublish(md *markdown.Markdown, run *model.Run) {
	md.H2("Publish")
	md.PlainText("")

	switch {
	case run.PublishedKey != "":
		md.PlainTextf("Uploaded as `%s`.", run.PublishedKey)
	case run.PublishError != "":
		md.Cautionf("Publish failed: %s. The dataset was saved locally; upload `%s` manually.",
			run.PublishError, run.OutputPath)
	case run.PublishSkipped:
		md.PlainText("Skipped.")
	default:
		md.PlainText("Not configured.")
	}
	md.PlainText("")
}
