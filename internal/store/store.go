// Package store defines persistence for analysis records.
package store

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/imyousuf/codegauge/internal/analyzer"
)

// Status is the lifecycle state of an analysis record.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAnalyzed Status = "analyzed"
	StatusFailed   Status = "failed"
)

// DefaultLanguage is stored when a record does not name its language.
const DefaultLanguage = "JavaScript"

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("analysis not found")
	// ErrDuplicateFileName is returned when another record already uses the file name.
	ErrDuplicateFileName = errors.New("file name already exists")
)

// Record is a persisted analysis: the source unit plus its quality report.
type Record struct {
	ID       string `json:"id" yaml:"id"`
	FileName string `json:"fileName" yaml:"fileName"`
	Code     string `json:"code" yaml:"code"`

	analyzer.QualityReport `yaml:",inline"`

	Status       Status    `json:"status" yaml:"status"`
	ErrorDetails string    `json:"errorDetails,omitempty" yaml:"errorDetails,omitempty"`
	Language     string    `json:"language" yaml:"language"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Stats holds aggregate counts over all stored records.
type Stats struct {
	Total    int64            `json:"total"`
	ByStatus map[Status]int64 `json:"byStatus"`
}

// Store is the interface for analysis record persistence.
type Store interface {
	// Create inserts a new record. The file name must be unused.
	Create(ctx context.Context, rec *Record) error

	// Get retrieves a record by ID.
	Get(ctx context.Context, id string) (*Record, error)

	// GetByFileName retrieves the record that owns the given file name.
	GetByFileName(ctx context.Context, fileName string) (*Record, error)

	// List returns all records ordered by creation time.
	List(ctx context.Context) ([]*Record, error)

	// Update replaces an existing record (matched by ID).
	Update(ctx context.Context, rec *Record) error

	// Delete removes a record by ID.
	Delete(ctx context.Context, id string) error

	// Stats returns aggregate statistics about the stored records.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases resources held by the store.
	Close() error
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// SortRecords orders records by creation time, then ID.
func SortRecords(recs []*Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
}
