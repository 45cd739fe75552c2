package embedded

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/imyousuf/codegauge/internal/store"
	"github.com/imyousuf/codegauge/internal/store/storetest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestReopenKeepsRecords(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	rec := storetest.NewRecord("persist.js", time.Now())
	if err := s.Create(ctx, rec); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = NewStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.GetByFileName(ctx, "persist.js")
	if err != nil {
		t.Fatalf("GetByFileName after reopen: %v", err)
	}
	if got.ID != rec.ID {
		t.Errorf("ID = %q, want %q", got.ID, rec.ID)
	}
}

func TestKeyScheme(t *testing.T) {
	if got := string(recordKey("abc")); got != "rec:abc" {
		t.Errorf("recordKey = %q, want %q", got, "rec:abc")
	}
	if got := string(nameKey("a.js")); got != "idx:name:a.js" {
		t.Errorf("nameKey = %q, want %q", got, "idx:name:a.js")
	}
}

func TestDeleteMissing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete error = %v, want ErrNotFound", err)
	}
}
