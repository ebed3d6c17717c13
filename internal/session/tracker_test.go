package session

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRecordAndMessages(t *testing.T) {
	tr := NewTracker(10, time.Minute)
	tr.Record("s1", "hello")
	tr.Record("s1", "how are you")
	tr.Record("s2", "other session")

	if diff := cmp.Diff([]string{"hello", "how are you"}, tr.Messages("s1")); diff != "" {
		t.Errorf("messages (-want +got):\n%s", diff)
	}
	if tr.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", tr.Len())
	}
	if tr.Messages("missing") != nil {
		t.Error("expected nil for unknown session")
	}
}

func TestWindowDropsOldest(t *testing.T) {
	tr := NewTracker(3, time.Minute)
	for i := 1; i <= 5; i++ {
		tr.Record("s", fmt.Sprintf("m%d", i))
	}
	if diff := cmp.Diff([]string{"m3", "m4", "m5"}, tr.Messages("s")); diff != "" {
		t.Errorf("window (-want +got):\n%s", diff)
	}
	s, _ := tr.Get("s")
	if s.Total != 5 {
		t.Errorf("expected total 5, got %d", s.Total)
	}
}

func TestMessagesReturnsCopy(t *testing.T) {
	tr := NewTracker(0, 0)
	tr.Record("s", "original")
	msgs := tr.Messages("s")
	msgs[0] = "mutated"
	if tr.Messages("s")[0] != "original" {
		t.Fatal("Messages exposed internal slice")
	}
}

func TestEndRemovesSession(t *testing.T) {
	tr := NewTracker(0, 0)
	tr.Record("s", "bye")
	s, ok := tr.End("s")
	if !ok || len(s.Messages) != 1 {
		t.Fatalf("expected ended session with 1 message, got %+v, %v", s, ok)
	}
	if _, ok := tr.End("s"); ok {
		t.Error("expected second End to report missing session")
	}
	if tr.Len() != 0 {
		t.Errorf("expected 0 sessions, got %d", tr.Len())
	}
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	tr := NewTracker(0, 10*time.Minute)
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return clock }

	tr.Record("old", "a")
	clock = clock.Add(15 * time.Minute)
	tr.Record("fresh", "b")

	expired := tr.Sweep()
	if len(expired) != 1 || expired[0].ID != "old" {
		t.Fatalf("expected only 'old' expired, got %+v", expired)
	}
	if tr.Len() != 1 {
		t.Errorf("expected 1 remaining session, got %d", tr.Len())
	}
}

func TestNewIDUnique(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Fatal("expected unique IDs")
	}
	if !strings.HasPrefix(a, "s-") {
		t.Errorf("expected s- prefix, got %s", a)
	}
}

func TestConcurrentRecord(t *testing.T) {
	tr := NewTracker(1000, time.Minute)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				tr.Record("shared", "msg")
			}
		}()
	}
	wg.Wait()
	s, _ := tr.Get("shared")
	if s.Total != 800 {
		t.Errorf("expected 800 messages, got %d", s.Total)
	}
}
