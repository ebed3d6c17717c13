package audit

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreLatestNewestFirst(t *testing.T) {
	store := newTestStore(t)
	for i, ts := range []string{
		"2026-01-01T10:00:00.000Z",
		"2026-01-01T10:01:00.000Z",
		"2026-01-01T10:02:00.000Z",
	} {
		e := NewEntry("s-1", ActionCrisisResourceView, AuditDetails{Score: 50 + i})
		e.Timestamp = ts
		if err := store.Record(e); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	got, err := store.Latest(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Details.Score != 52 || got[1].Details.Score != 51 {
		t.Errorf("expected newest first, got scores %d, %d", got[0].Details.Score, got[1].Details.Score)
	}
}

func TestStoreBySession(t *testing.T) {
	store := newTestStore(t)
	store.Record(NewEntry("s-a", ActionCrisisResourceView, AuditDetails{Score: 60, Categories: []string{"critical"}}))
	store.Record(NewEntry("s-b", ActionCrisisResourceView, AuditDetails{Score: 70}))
	store.Record(NewEntry("s-a", ActionSessionSummary, AuditDetails{Messages: 3}))

	got, err := store.BySession("s-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries for s-a, got %d", len(got))
	}
	if got[0].Action != ActionCrisisResourceView || got[1].Action != ActionSessionSummary {
		t.Errorf("unexpected order: %s, %s", got[0].Action, got[1].Action)
	}
	if len(got[0].Details.Categories) != 1 || got[0].Details.Categories[0] != "critical" {
		t.Errorf("details not round-tripped: %+v", got[0].Details)
	}

	none, err := store.BySession("s-missing")
	if err != nil {
		t.Fatal(err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", none)
	}
}

func TestStoreStampsMissingFields(t *testing.T) {
	store := newTestStore(t)
	if err := store.Record(AuditEntry{SessionID: "s-1", Action: ActionSessionSummary}); err != nil {
		t.Fatal(err)
	}
	got, _ := store.Latest(1)
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].ID == "" || got[0].Timestamp == "" {
		t.Errorf("expected stamped entry, got %+v", got[0])
	}
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, defaultLimit},
		{-3, defaultLimit},
		{5, 5},
		{maxLimit + 1, maxLimit},
	}
	for _, tt := range tests {
		if got := clampLimit(tt.in); got != tt.want {
			t.Errorf("clampLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
