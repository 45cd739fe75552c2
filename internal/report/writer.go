// Package report renders analyses, stored records and scan summaries in the
// output formats the CLI supports.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/imyousuf/codegauge/internal/analyzer"
	"github.com/imyousuf/codegauge/internal/indexer"
	"github.com/imyousuf/codegauge/internal/store"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported format, for flag help.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatMarkdown}

// ParseFormat resolves a format name; "md" and "yml" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown output format %q (want one of %s)", s, formatList())
}

func formatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Writer renders results to an output stream.
type Writer interface {
	// WriteReport renders a single unsaved analysis.
	WriteReport(fileName string, r *analyzer.QualityReport) error
	// WriteRecord renders one stored analysis.
	WriteRecord(rec *store.Record) error
	// WriteRecords renders a list of stored analyses.
	WriteRecords(recs []*store.Record) error
	// WriteSummary renders the result of a directory scan.
	WriteSummary(sum *indexer.Summary) error
}

// New returns the Writer for format.
func New(format Format, out io.Writer) (Writer, error) {
	switch format {
	case FormatText:
		return NewTextWriter(out), nil
	case FormatJSON:
		return NewJSONWriter(out), nil
	case FormatYAML:
		return NewYAMLWriter(out), nil
	case FormatMarkdown:
		return NewMarkdownWriter(out), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

// fileReport is the serialized form of an unsaved analysis.
type fileReport struct {
	FileName               string `json:"fileName" yaml:"fileName"`
	analyzer.QualityReport `yaml:",inline"`
}

// Rating buckets a maintainability index.
func Rating(mi float64) string {
	switch {
	case mi >= 85:
		return "good"
	case mi >= 65:
		return "moderate"
	default:
		return "poor"
	}
}

// metricRows returns the label/value pairs shown for one report.
func metricRows(r *analyzer.QualityReport) [][]string {
	return [][]string{
		{"Lines of code", strconv.Itoa(r.LOC)},
		{"Source lines", strconv.Itoa(r.SLOC)},
		{"Logical lines", strconv.Itoa(r.LLOC)},
		{"Comment lines", strconv.Itoa(r.Comments)},
		{"Comment percentage", r.CommentPercentage + "%"},
		{"Code/comment ratio", r.CodeToCommentRatio},
		{"Cyclomatic complexity", strconv.Itoa(r.CyclomaticComplexity)},
		{"Maintainability index", r.MaintainabilityIndex + " (" + Rating(r.MaintainabilityScore()) + ")"},
	}
}

func totalRows(sum *indexer.Summary) [][]string {
	return [][]string{
		{"Files analyzed", strconv.Itoa(sum.Analyzed)},
		{"Files failed", strconv.Itoa(sum.Failed)},
		{"Lines of code", strconv.Itoa(sum.Totals.LOC)},
		{"Source lines", strconv.Itoa(sum.Totals.SLOC)},
		{"Logical lines", strconv.Itoa(sum.Totals.LLOC)},
		{"Comment lines", strconv.Itoa(sum.Totals.Comments)},
		{"Max complexity", strconv.Itoa(sum.Totals.MaxComplexity)},
		{"Average complexity", decimal(sum.Totals.AverageComplexity)},
		{"Average maintainability", decimal(sum.Totals.AverageMaintainability)},
	}
}

func decimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

const timeLayout = "2006-01-02 15:04:05"
