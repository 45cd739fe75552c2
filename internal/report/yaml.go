package report

import (
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/imyousuf/codegauge/internal/analyzer"
	"github.com/imyousuf/codegauge/internal/indexer"
	"github.com/imyousuf/codegauge/internal/store"
)

// YAMLWriter renders YAML documents.
type YAMLWriter struct {
	out io.Writer
}

// NewYAMLWriter creates a YAMLWriter that outputs to out.
func NewYAMLWriter(out io.Writer) *YAMLWriter {
	return &YAMLWriter{out: out}
}

func (w *YAMLWriter) encode(v any) error {
	enc := yaml.NewEncoder(w.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (w *YAMLWriter) WriteReport(fileName string, r *analyzer.QualityReport) error {
	return w.encode(fileReport{FileName: fileName, QualityReport: *r})
}

func (w *YAMLWriter) WriteRecord(rec *store.Record) error {
	return w.encode(rec)
}

func (w *YAMLWriter) WriteRecords(recs []*store.Record) error {
	if recs == nil {
		recs = []*store.Record{}
	}
	return w.encode(recs)
}

func (w *YAMLWriter) WriteSummary(sum *indexer.Summary) error {
	return w.encode(sum)
}
