// Package service stores analyses: it runs the analyzer on a source unit and
// persists the resulting record.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/imyousuf/codegauge/internal/analyzer"
	"github.com/imyousuf/codegauge/internal/store"
)

// Service creates and maintains analysis records.
type Service struct {
	analyzer *analyzer.Analyzer
	store    store.Store
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a Service backed by a and st.
func New(a *analyzer.Analyzer, st store.Store, opts ...Option) *Service {
	s := &Service{
		analyzer: a,
		store:    st,
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyzer returns the analyzer the service runs.
func (s *Service) Analyzer() *analyzer.Analyzer {
	return s.analyzer
}

// Create analyzes (fileName, code) and stores the result as a new record.
// Analyzer errors are returned unchanged and nothing is stored.
func (s *Service) Create(ctx context.Context, fileName, code string) (*store.Record, error) {
	report, err := s.analyzer.Analyze(fileName, code)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec := &store.Record{
		ID:            store.NewID(),
		FileName:      fileName,
		Code:          code,
		QualityReport: *report,
		Status:        store.StatusAnalyzed,
		Language:      s.analyzer.Language().DisplayName(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.log.Info("analysis created", "id", rec.ID, "file", fileName,
		"cc", report.CyclomaticComplexity, "mi", report.MaintainabilityIndex)
	return rec, nil
}

// Update changes the file name and/or code of record id. Empty arguments keep
// the stored value. Changed code is re-analyzed; a changed name is validated
// with the same rules as Create.
func (s *Service) Update(ctx context.Context, id, fileName, code string) (*store.Record, error) {
	if fileName == "" && code == "" {
		return nil, &analyzer.ValidationError{Reason: "file name or code is required"}
	}

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if fileName != "" && fileName != rec.FileName {
		if err := s.analyzer.ValidateFileName(fileName); err != nil {
			return nil, err
		}
		rec.FileName = fileName
	}

	if code != "" && code != rec.Code {
		report, err := s.analyzer.Analyze(rec.FileName, code)
		if err != nil {
			return nil, err
		}
		rec.Code = code
		rec.QualityReport = *report
		rec.Status = store.StatusAnalyzed
		rec.ErrorDetails = ""
	}

	rec.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, rec); err != nil {
		return nil, err
	}
	s.log.Info("analysis updated", "id", rec.ID, "file", rec.FileName)
	return rec, nil
}

// Save upserts by file name: an existing record is re-analyzed in place, a
// new name creates a record. When analysis fails and recordFailure is set,
// the record is stored with status failed and the error as its details; the
// analysis error is still returned.
func (s *Service) Save(ctx context.Context, fileName, code string, recordFailure bool) (*store.Record, error) {
	existing, err := s.store.GetByFileName(ctx, fileName)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	// Only syntax failures are recorded; a rejected name can never be stored.
	report, aerr := s.analyzer.Analyze(fileName, code)
	if aerr != nil {
		var perr *analyzer.ParseError
		if !recordFailure || !errors.As(aerr, &perr) {
			return nil, aerr
		}
	}

	now := s.now().UTC()
	rec := existing
	if rec == nil {
		rec = &store.Record{
			ID:        store.NewID(),
			FileName:  fileName,
			Language:  s.analyzer.Language().DisplayName(),
			CreatedAt: now,
		}
	}
	rec.Code = code
	rec.UpdatedAt = now
	if aerr != nil {
		rec.QualityReport = analyzer.QualityReport{}
		rec.Status = store.StatusFailed
		rec.ErrorDetails = aerr.Error()
	} else {
		rec.QualityReport = *report
		rec.Status = store.StatusAnalyzed
		rec.ErrorDetails = ""
	}

	if existing == nil {
		err = s.store.Create(ctx, rec)
	} else {
		err = s.store.Update(ctx, rec)
	}
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", fileName, err)
	}
	s.log.Debug("analysis saved", "id", rec.ID, "file", fileName, "status", rec.Status)
	return rec, aerr
}

// Get returns record id.
func (s *Service) Get(ctx context.Context, id string) (*store.Record, error) {
	return s.store.Get(ctx, id)
}

// GetByFileName returns the record stored under fileName.
func (s *Service) GetByFileName(ctx context.Context, fileName string) (*store.Record, error) {
	return s.store.GetByFileName(ctx, fileName)
}

// List returns all records, oldest first.
func (s *Service) List(ctx context.Context) ([]*store.Record, error) {
	return s.store.List(ctx)
}

// Delete removes record id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("analysis deleted", "id", id)
	return nil
}

// Stats returns record counts by status.
func (s *Service) Stats(ctx context.Context) (*store.Stats, error) {
	return s.store.Stats(ctx)
}
