package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/imyousuf/codegauge/internal/analyzer"
	"github.com/imyousuf/codegauge/internal/indexer"
	"github.com/imyousuf/codegauge/internal/store"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"})
	labelStyle = lipgloss.NewStyle().
			Faint(true).
			Width(26)
	valueStyle = lipgloss.NewStyle()
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF6B6B"})

	ratingStyles = map[string]lipgloss.Style{
		"good":     lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1E8449", Dark: "#58D68D"}),
		"moderate": lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B7950B", Dark: "#F7DC6F"}),
		"poor":     errorStyle,
	}
)

// TextWriter renders styled key/value blocks and tables for terminals.
type TextWriter struct {
	out io.Writer
}

// NewTextWriter creates a TextWriter that outputs to out.
func NewTextWriter(out io.Writer) *TextWriter {
	return &TextWriter{out: out}
}

func (w *TextWriter) title(s string) {
	fmt.Fprintln(w.out, titleStyle.Render(s))
	fmt.Fprintln(w.out, titleStyle.Render(strings.Repeat("=", lipgloss.Width(s))))
}

func (w *TextWriter) kv(label, value string) {
	fmt.Fprintf(w.out, "  %s %s\n", labelStyle.Render(label), valueStyle.Render(value))
}

func (w *TextWriter) metrics(r *analyzer.QualityReport) {
	rows := metricRows(r)
	for _, row := range rows[:len(rows)-1] {
		w.kv(row[0], row[1])
	}
	rating := Rating(r.MaintainabilityScore())
	w.kv("Maintainability index", ratingStyles[rating].Render(r.MaintainabilityIndex+" ("+rating+")"))
}

func (w *TextWriter) WriteReport(fileName string, r *analyzer.QualityReport) error {
	w.title(fileName)
	w.metrics(r)
	fmt.Fprintln(w.out)
	return nil
}

func (w *TextWriter) WriteRecord(rec *store.Record) error {
	w.title(rec.FileName)
	w.kv("ID", rec.ID)
	w.kv("Language", rec.Language)
	status := string(rec.Status)
	if rec.Status == store.StatusFailed {
		status = errorStyle.Render(status)
	}
	w.kv("Status", status)
	w.kv("Created", rec.CreatedAt.Local().Format(timeLayout))
	w.kv("Updated", rec.UpdatedAt.Local().Format(timeLayout))
	if rec.ErrorDetails != "" {
		w.kv("Error", errorStyle.Render(rec.ErrorDetails))
	}
	if rec.Status != store.StatusFailed {
		fmt.Fprintln(w.out)
		w.metrics(&rec.QualityReport)
	}
	fmt.Fprintln(w.out)
	return nil
}

func (w *TextWriter) WriteRecords(recs []*store.Record) error {
	if len(recs) == 0 {
		fmt.Fprintln(w.out, "No analyses stored.")
		return nil
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "FILE", "STATUS", "LOC", "CC", "MI", "UPDATED")
	for _, rec := range recs {
		t.Row(
			shortID(rec.ID),
			rec.FileName,
			string(rec.Status),
			strconv.Itoa(rec.LOC),
			strconv.Itoa(rec.CyclomaticComplexity),
			rec.MaintainabilityIndex,
			rec.UpdatedAt.Local().Format(timeLayout),
		)
	}
	fmt.Fprintln(w.out, t.String())
	fmt.Fprintf(w.out, "%d analyses\n", len(recs))
	return nil
}

func (w *TextWriter) WriteSummary(sum *indexer.Summary) error {
	w.title("Scan of " + sum.Root)
	for _, row := range totalRows(sum) {
		w.kv(row[0], row[1])
	}
	w.kv("Elapsed", sum.Elapsed.Round(time.Millisecond).String())
	fmt.Fprintln(w.out)

	if len(sum.Files) == 0 {
		fmt.Fprintln(w.out, "No matching files found.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("FILE", "LOC", "CC", "MI", "RESULT")
	for _, r := range sum.Files {
		if r.Failed() || r.Report == nil {
			t.Row(r.Path, "-", "-", "-", errorStyle.Render(r.Error))
			continue
		}
		t.Row(r.Path,
			strconv.Itoa(r.Report.LOC),
			strconv.Itoa(r.Report.CyclomaticComplexity),
			r.Report.MaintainabilityIndex,
			Rating(r.Report.MaintainabilityScore()),
		)
	}
	fmt.Fprintln(w.out, t.String())
	return nil
}
