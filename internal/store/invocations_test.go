package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *InvocationStore {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "invocations.db"), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInvocationStore_RecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	entries := []*InvocationEntry{
		{ID: "inv-1", Shape: "legacy-gateway", Method: "GET", URI: "/health", StatusCode: 200, LatencyMS: 3.5, CreatedAt: base},
		{ID: "inv-2", Shape: "streamlined-gateway", Method: "POST", URI: "/orders", StatusCode: 201, LatencyMS: 12.25, CreatedAt: base.Add(time.Second)},
		{ID: "inv-3", Shape: "load-balancer", Method: "GET", URI: "/orders", StatusCode: 500, LatencyMS: 41, CreatedAt: base.Add(2 * time.Second)},
	}
	for _, entry := range entries {
		if err := s.Record(ctx, entry); err != nil {
			t.Fatalf("Record(%s) error = %v", entry.ID, err)
		}
	}

	recent, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent() returned %d entries, want 2", len(recent))
	}
	if recent[0].ID != "inv-3" || recent[1].ID != "inv-2" {
		t.Errorf("Recent() order = [%s, %s], want newest first", recent[0].ID, recent[1].ID)
	}
	if recent[0].StatusCode != 500 || recent[0].Shape != "load-balancer" {
		t.Errorf("Recent()[0] = %+v, want the inv-3 fields back", recent[0])
	}
}

func TestInvocationStore_RecordDuplicateID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	entry := &InvocationEntry{ID: "inv-1", Shape: "legacy-gateway", Method: "GET", URI: "/", StatusCode: 200}
	if err := s.Record(ctx, entry); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := s.Record(ctx, entry); err == nil {
		t.Error("Record() with a duplicate id should fail")
	}
}

func TestInvocationStore_RecentEmpty(t *testing.T) {
	s := openTestStore(t)

	recent, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("Recent() on an empty store returned %d entries", len(recent))
	}
}
