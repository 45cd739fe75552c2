package report

import (
	"encoding/json"
	"io"

	"github.com/imyousuf/codegauge/internal/analyzer"
	"github.com/imyousuf/codegauge/internal/indexer"
	"github.com/imyousuf/codegauge/internal/store"
)

// JSONWriter renders indented JSON with camelCase field names.
type JSONWriter struct {
	enc *json.Encoder
}

// NewJSONWriter creates a JSONWriter that outputs to out.
func NewJSONWriter(out io.Writer) *JSONWriter {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return &JSONWriter{enc: enc}
}

func (w *JSONWriter) WriteReport(fileName string, r *analyzer.QualityReport) error {
	return w.enc.Encode(fileReport{FileName: fileName, QualityReport: *r})
}

func (w *JSONWriter) WriteRecord(rec *store.Record) error {
	return w.enc.Encode(rec)
}

func (w *JSONWriter) WriteRecords(recs []*store.Record) error {
	if recs == nil {
		recs = []*store.Record{}
	}
	return w.enc.Encode(recs)
}

func (w *JSONWriter) WriteSummary(sum *indexer.Summary) error {
	return w.enc.Encode(sum)
}
