// Package storetest holds the behavior every store.Store backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/imyousuf/codegauge/internal/analyzer"
	"github.com/imyousuf/codegauge/internal/store"
)

// Factory opens an empty store for one subtest and registers its cleanup.
type Factory func(t *testing.T) store.Store

// NewRecord builds an analyzed record for fileName with fixed metrics.
func NewRecord(fileName string, created time.Time) *store.Record {
	return &store.Record{
		ID:       store.NewID(),
		FileName: fileName,
		Code:     "let x = 1; // one\n",
		QualityReport: analyzer.QualityReport{
			LOC:                  2,
			LLOC:                 1,
			SLOC:                 1,
			Comments:             1,
			CommentPercentage:    "50.00",
			CodeToCommentRatio:   "1.00",
			CyclomaticComplexity: 1,
			MaintainabilityIndex: "100.00",
		},
		Status:    store.StatusAnalyzed,
		Language:  store.DefaultLanguage,
		CreatedAt: created.UTC(),
		UpdatedAt: created.UTC(),
	}
}

// Run exercises a backend against the store.Store contract.
func Run(t *testing.T, open Factory) {
	t.Run("CreateGet", func(t *testing.T) { testCreateGet(t, open(t)) })
	t.Run("DuplicateFileName", func(t *testing.T) { testDuplicateFileName(t, open(t)) })
	t.Run("GetByFileName", func(t *testing.T) { testGetByFileName(t, open(t)) })
	t.Run("ListOrder", func(t *testing.T) { testListOrder(t, open(t)) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, open(t)) })
	t.Run("UpdateRenameConflict", func(t *testing.T) { testUpdateRenameConflict(t, open(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, open(t)) })
	t.Run("Stats", func(t *testing.T) { testStats(t, open(t)) })
}

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testCreateGet(t *testing.T, s store.Store) {
	ctx := context.Background()
	rec := NewRecord("main.js", base)

	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FileName != "main.js" {
		t.Errorf("FileName = %q, want %q", got.FileName, "main.js")
	}
	if got.Code != rec.Code {
		t.Errorf("Code = %q, want %q", got.Code, rec.Code)
	}
	if got.QualityReport != rec.QualityReport {
		t.Errorf("QualityReport = %+v, want %+v", got.QualityReport, rec.QualityReport)
	}
	if got.Status != store.StatusAnalyzed {
		t.Errorf("Status = %q, want %q", got.Status, store.StatusAnalyzed)
	}
	if got.Language != store.DefaultLanguage {
		t.Errorf("Language = %q, want %q", got.Language, store.DefaultLanguage)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, rec.CreatedAt)
	}

	_, err = s.Get(ctx, "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func testDuplicateFileName(t *testing.T, s store.Store) {
	ctx := context.Background()
	if err := s.Create(ctx, NewRecord("dup.js", base)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := s.Create(ctx, NewRecord("dup.js", base.Add(time.Second)))
	if !errors.Is(err, store.ErrDuplicateFileName) {
		t.Fatalf("second Create error = %v, want ErrDuplicateFileName", err)
	}

	recs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("len(List) = %d, want 1", len(recs))
	}
}

func testGetByFileName(t *testing.T, s store.Store) {
	ctx := context.Background()
	rec := NewRecord("named.js", base)
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.GetByFileName(ctx, "named.js")
	if err != nil {
		t.Fatalf("GetByFileName: %v", err)
	}
	if got.ID != rec.ID {
		t.Errorf("ID = %q, want %q", got.ID, rec.ID)
	}

	_, err = s.GetByFileName(ctx, "other.js")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetByFileName(other) error = %v, want ErrNotFound", err)
	}
}

func testListOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	names := []string{"c.js", "a.js", "b.js"}
	for i, name := range names {
		if err := s.Create(ctx, NewRecord(name, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	recs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != len(names) {
		t.Fatalf("len(List) = %d, want %d", len(recs), len(names))
	}
	for i, name := range names {
		if recs[i].FileName != name {
			t.Errorf("List[%d].FileName = %q, want %q", i, recs[i].FileName, name)
		}
	}
}

func testUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()
	rec := NewRecord("old.js", base)
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec.FileName = "new.js"
	rec.Code = "x();"
	rec.CyclomaticComplexity = 3
	rec.UpdatedAt = base.Add(time.Hour)
	if err := s.Update(ctx, rec); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := s.GetByFileName(ctx, "new.js")
	if err != nil {
		t.Fatalf("GetByFileName(new): %v", err)
	}
	if got.Code != "x();" || got.CyclomaticComplexity != 3 {
		t.Errorf("updated record = %+v", got)
	}
	if !got.UpdatedAt.Equal(base.Add(time.Hour)) {
		t.Errorf("UpdatedAt = %v, want %v", got.UpdatedAt, base.Add(time.Hour))
	}
	if _, err := s.GetByFileName(ctx, "old.js"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("old name should be released, got %v", err)
	}

	// The freed name is usable again.
	if err := s.Create(ctx, NewRecord("old.js", base)); err != nil {
		t.Errorf("Create with released name: %v", err)
	}

	missing := NewRecord("ghost.js", base)
	if err := s.Update(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func testUpdateRenameConflict(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := NewRecord("a.js", base)
	b := NewRecord("b.js", base)
	for _, r := range []*store.Record{a, b} {
		if err := s.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	b.FileName = "a.js"
	if err := s.Update(ctx, b); !errors.Is(err, store.ErrDuplicateFileName) {
		t.Fatalf("rename onto taken name error = %v, want ErrDuplicateFileName", err)
	}

	got, err := s.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FileName != "b.js" {
		t.Errorf("failed rename changed FileName to %q", got.FileName)
	}
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	rec := NewRecord("gone.js", base)
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, rec.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, rec.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
	if err := s.Create(ctx, NewRecord("gone.js", base)); err != nil {
		t.Errorf("name should be free after delete: %v", err)
	}
}

func testStats(t *testing.T, s store.Store) {
	ctx := context.Background()
	failed := NewRecord("bad.js", base)
	failed.Status = store.StatusFailed
	failed.ErrorDetails = "invalid source"
	for _, r := range []*store.Record{NewRecord("one.js", base), NewRecord("two.js", base), failed} {
		if err := s.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.ByStatus[store.StatusAnalyzed] != 2 {
		t.Errorf("ByStatus[analyzed] = %d, want 2", stats.ByStatus[store.StatusAnalyzed])
	}
	if stats.ByStatus[store.StatusFailed] != 1 {
		t.Errorf("ByStatus[failed] = %d, want 1", stats.ByStatus[store.StatusFailed])
	}

	got, err := s.Get(ctx, failed.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ErrorDetails != "invalid source" {
		t.Errorf("ErrorDetails = %q, want %q", got.ErrorDetails, "invalid source")
	}
}
