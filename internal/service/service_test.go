package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/imyousuf/codegauge/internal/analyzer"
	"github.com/imyousuf/codegauge/internal/store"
	"github.com/imyousuf/codegauge/internal/store/embedded"
)

const (
	simpleCode = "function f(x) {\n  if (x) {\n    return 1;\n  }\n  return 0;\n}\n"
	loopCode   = "for (let i = 0; i < 3; i++) {\n  console.log(i); // tick\n}\n"
	brokenCode = "function f( {\n"
	fixedClock = "2024-05-01T12:00:00Z"
	laterClock = "2024-05-02T08:30:00Z"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatal(err)
	}
	return tm
}

func newTestService(t *testing.T) (*Service, *clock) {
	t.Helper()
	st, err := embedded.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	c := &clock{t: mustTime(t, fixedClock)}
	return New(analyzer.New(analyzer.Config{}), st, WithClock(c.now)), c
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "simple.js", simpleCode)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID == "" {
		t.Error("expected an ID")
	}
	if rec.Status != store.StatusAnalyzed {
		t.Errorf("Status = %q, want %q", rec.Status, store.StatusAnalyzed)
	}
	if rec.Language != "JavaScript" {
		t.Errorf("Language = %q, want JavaScript", rec.Language)
	}
	if rec.CyclomaticComplexity != 2 || rec.LOC != 7 {
		t.Errorf("report = %+v, want cc 2, loc 7", rec.QualityReport)
	}
	if rec.CodeToCommentRatio != analyzer.NotApplicable {
		t.Errorf("ratio = %q, want N/A", rec.CodeToCommentRatio)
	}

	got, err := svc.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.QualityReport != rec.QualityReport {
		t.Errorf("stored report = %+v, want %+v", got.QualityReport, rec.QualityReport)
	}
}

func TestCreateRejectsBadInputWithoutStoring(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		code     string
		wantErr  any
	}{
		{"wrong extension", "simple.ts", simpleCode, new(*analyzer.ValidationError)},
		{"long name", "a_very_long_file_name.js", simpleCode, new(*analyzer.ValidationError)},
		{"empty code", "simple.js", "", new(*analyzer.ValidationError)},
		{"syntax error", "broken.js", brokenCode, new(*analyzer.ParseError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			ctx := context.Background()

			rec, err := svc.Create(ctx, tt.fileName, tt.code)
			if err == nil {
				t.Fatalf("Create returned %+v, want error", rec)
			}
			if !errors.As(err, tt.wantErr) {
				t.Errorf("error %T (%v) has wrong type", err, err)
			}
			recs, err := svc.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(recs) != 0 {
				t.Errorf("stored %d records after failure", len(recs))
			}
		})
	}
}

func TestCreateDuplicateFileName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "simple.js", simpleCode); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := svc.Create(ctx, "simple.js", loopCode)
	if !errors.Is(err, store.ErrDuplicateFileName) {
		t.Errorf("second Create err = %v, want ErrDuplicateFileName", err)
	}
}

func TestUpdateReanalyzesChangedCode(t *testing.T) {
	svc, c := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "simple.js", simpleCode)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	c.t = mustTime(t, laterClock)
	updated, err := svc.Update(ctx, rec.ID, "", loopCode)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.FileName != "simple.js" {
		t.Errorf("FileName = %q, want unchanged", updated.FileName)
	}
	if updated.Comments != 1 {
		t.Errorf("Comments = %d, want 1", updated.Comments)
	}
	if updated.CodeToCommentRatio != "3.00" {
		t.Errorf("ratio = %q, want 3.00", updated.CodeToCommentRatio)
	}
	if !updated.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", rec.CreatedAt, updated.CreatedAt)
	}
	if !updated.UpdatedAt.Equal(c.t) {
		t.Errorf("UpdatedAt = %v, want %v", updated.UpdatedAt, c.t)
	}
}

func TestUpdateRename(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "simple.js", simpleCode)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Update(ctx, rec.ID, "renamed.js", ""); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := svc.GetByFileName(ctx, "renamed.js")
	if err != nil {
		t.Fatalf("GetByFileName: %v", err)
	}
	if got.ID != rec.ID {
		t.Errorf("renamed record ID = %s, want %s", got.ID, rec.ID)
	}
	if got.QualityReport != rec.QualityReport {
		t.Error("rename without code should keep the report")
	}
}

func TestUpdateUsesCreateLimit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "simple.js", simpleCode)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 21 characters: one over the create limit.
	_, err = svc.Update(ctx, rec.ID, "abcdefghijklmnopqr.js", "")
	var verr *analyzer.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Update err = %v, want ValidationError", err)
	}

	got, err := svc.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FileName != "simple.js" {
		t.Errorf("FileName = %q after rejected update", got.FileName)
	}
}

func TestUpdateRejectsBrokenCode(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "simple.js", simpleCode)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = svc.Update(ctx, rec.ID, "", brokenCode)
	var perr *analyzer.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Update err = %v, want ParseError", err)
	}
	got, _ := svc.Get(ctx, rec.ID)
	if got.Code != simpleCode {
		t.Error("code changed after rejected update")
	}
}

func TestUpdateRequiresAField(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), "whatever", "", "")
	var verr *analyzer.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestUpdateMissing(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), "missing", "x.js", "")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveUpserts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Save(ctx, "loop.js", simpleCode, false)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := svc.Save(ctx, "loop.js", loopCode, false)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("upsert created a new record: %s vs %s", first.ID, second.ID)
	}
	recs, _ := svc.List(ctx)
	if len(recs) != 1 {
		t.Errorf("got %d records, want 1", len(recs))
	}
}

func TestSaveRecordsParseFailure(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Save(ctx, "broken.js", brokenCode, true)
	var perr *analyzer.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Save err = %v, want ParseError", err)
	}
	if rec == nil {
		t.Fatal("expected a failed record")
	}
	if rec.Status != store.StatusFailed {
		t.Errorf("Status = %q, want failed", rec.Status)
	}
	if rec.ErrorDetails == "" {
		t.Error("expected error details")
	}

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.ByStatus[store.StatusFailed] != 1 {
		t.Errorf("failed count = %d, want 1", stats.ByStatus[store.StatusFailed])
	}

	// Fixing the code flips the same record back to analyzed.
	fixed, err := svc.Save(ctx, "broken.js", simpleCode, true)
	if err != nil {
		t.Fatalf("Save fixed: %v", err)
	}
	if fixed.ID != rec.ID || fixed.Status != store.StatusAnalyzed || fixed.ErrorDetails != "" {
		t.Errorf("fixed record = %+v", fixed)
	}
}

func TestSaveNeverStoresInvalidNames(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Save(ctx, "style.css", "body {}", true)
	if err == nil || rec != nil {
		t.Fatalf("Save = %v, %v; want validation error", rec, err)
	}
	recs, _ := svc.List(ctx)
	if len(recs) != 0 {
		t.Errorf("stored %d records", len(recs))
	}
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	rec, err := svc.Create(ctx, "simple.js", simpleCode)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, rec.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, rec.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}
