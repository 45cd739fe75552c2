package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/imyousuf/codegauge/internal/analyzer"
	"github.com/imyousuf/codegauge/internal/indexer"
	"github.com/imyousuf/codegauge/internal/store"
)

// MarkdownWriter renders GitHub-flavored markdown built with nao1215/markdown.
type MarkdownWriter struct {
	out io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to out.
func NewMarkdownWriter(out io.Writer) *MarkdownWriter {
	return &MarkdownWriter{out: out}
}

func (w *MarkdownWriter) metricsTable(md *markdown.Markdown, r *analyzer.QualityReport) {
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows:   metricRows(r),
	})
	md.PlainText("")
}

func (w *MarkdownWriter) ratingAlert(md *markdown.Markdown, r *analyzer.QualityReport) {
	switch Rating(r.MaintainabilityScore()) {
	case "good":
		md.Tip("Maintainability is good.")
	case "moderate":
		md.Note("Maintainability is moderate.")
	default:
		md.Warningf("Maintainability index %s is poor; consider splitting this file.", r.MaintainabilityIndex)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) WriteReport(fileName string, r *analyzer.QualityReport) error {
	md := markdown.NewMarkdown(w.out)
	md.H1("Analysis of " + code(fileName))
	md.PlainText("")
	w.metricsTable(md, r)
	w.ratingAlert(md, r)
	return md.Build()
}

func (w *MarkdownWriter) WriteRecord(rec *store.Record) error {
	md := markdown.NewMarkdown(w.out)
	md.H1("Analysis of " + code(rec.FileName))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"ID", code(rec.ID)},
			{"Language", rec.Language},
			{"Status", string(rec.Status)},
			{"Created", rec.CreatedAt.UTC().Format(timeLayout + " MST")},
			{"Updated", rec.UpdatedAt.UTC().Format(timeLayout + " MST")},
		},
	})
	md.PlainText("")

	if rec.Status == store.StatusFailed {
		md.Cautionf("Analysis failed: %s", rec.ErrorDetails)
		md.PlainText("")
		return md.Build()
	}

	md.H2("Metrics")
	md.PlainText("")
	w.metricsTable(md, &rec.QualityReport)
	w.ratingAlert(md, &rec.QualityReport)
	return md.Build()
}

func (w *MarkdownWriter) WriteRecords(recs []*store.Record) error {
	md := markdown.NewMarkdown(w.out)
	md.H1("Analyses")
	md.PlainText("")
	if len(recs) == 0 {
		md.PlainText("No analyses stored.")
		return md.Build()
	}

	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, []string{
			code(shortID(rec.ID)),
			rec.FileName,
			string(rec.Status),
			strconv.Itoa(rec.LOC),
			strconv.Itoa(rec.CyclomaticComplexity),
			rec.MaintainabilityIndex,
			rec.UpdatedAt.UTC().Format(timeLayout),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "File", "Status", "LOC", "CC", "MI", "Updated (UTC)"},
		Rows:   rows,
	})
	md.PlainText("")
	return md.Build()
}

func (w *MarkdownWriter) WriteSummary(sum *indexer.Summary) error {
	md := markdown.NewMarkdown(w.out)
	md.H1("Scan of " + code(sum.Root))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Total", "Value"},
		Rows:   totalRows(sum),
	})
	md.PlainText("")

	if sum.Failed > 0 {
		md.Warningf("%d file(s) could not be analyzed.", sum.Failed)
		md.PlainText("")
	}

	md.H2("Files")
	md.PlainText("")
	if len(sum.Files) == 0 {
		md.PlainText("No matching files found.")
		return md.Build()
	}

	rows := make([][]string, 0, len(sum.Files))
	for _, r := range sum.Files {
		if r.Failed() || r.Report == nil {
			rows = append(rows, []string{code(r.Path), "-", "-", "-", "failed: " + r.Error})
			continue
		}
		rows = append(rows, []string{
			code(r.Path),
			strconv.Itoa(r.Report.LOC),
			strconv.Itoa(r.Report.CyclomaticComplexity),
			r.Report.MaintainabilityIndex,
			Rating(r.Report.MaintainabilityScore()),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"File", "LOC", "CC", "MI", "Result"},
		Rows:   rows,
	})
	md.PlainText("")
	return md.Build()
}

func code(s string) string {
	return "`" + s + "`"
}
