package auditstore

import (
	"path/filepath"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := DeriveAuditKey([]byte("test-seed-material"))
	if err != nil {
		t.Fatalf("DeriveAuditKey failed: %v", err)
	}
	return key
}

func TestOpenAndClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	s, err := Open(dbPath, testKey(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestOpenRejectsShortKey(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	if _, err := Open(dbPath, []byte("short")); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestRecordAndReadQualifyRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	s, err := Open(dbPath, testKey(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	run := QualifyRun{TimestampNs: 1000, Passed: true, FailureCode: -1, DurationNs: 50, Hostname: "host-a"}
	if err := s.RecordQualifyRun(run); err != nil {
		t.Fatalf("RecordQualifyRun failed: %v", err)
	}

	runs, err := s.RecentQualifyRuns(10)
	if err != nil {
		t.Fatalf("RecentQualifyRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Hostname != "host-a" || !runs[0].Passed {
		t.Errorf("unexpected run: %+v", runs[0])
	}
}

func TestRecordSelfTestTripAndFeedEvent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	s, err := Open(dbPath, testKey(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if err := s.RecordSelfTestTrip(SelfTestTrip{TimestampNs: 2000, CollectorOSR: 4}); err != nil {
		t.Fatalf("RecordSelfTestTrip failed: %v", err)
	}
	if err := s.RecordFeedEvent(FeedEvent{TimestampNs: 3000, BytesFed: 32, EntropyBits: 256, Source: "jent"}); err != nil {
		t.Fatalf("RecordFeedEvent failed: %v", err)
	}

	trips, err := s.RecentSelfTestTrips(10)
	if err != nil {
		t.Fatalf("RecentSelfTestTrips failed: %v", err)
	}
	if len(trips) != 1 || trips[0].CollectorOSR != 4 {
		t.Fatalf("unexpected trips: %+v", trips)
	}

	feeds, err := s.RecentFeedEvents(10)
	if err != nil {
		t.Fatalf("RecentFeedEvents failed: %v", err)
	}
	if len(feeds) != 1 || feeds[0].Source != "jent" {
		t.Fatalf("unexpected feeds: %+v", feeds)
	}
}

func TestVerifyIntegritySurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	key := testKey(t)

	s, err := Open(dbPath, key)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := s.RecordFeedEvent(FeedEvent{TimestampNs: int64(i), BytesFed: 32, EntropyBits: 256, Source: "jent"}); err != nil {
			t.Fatalf("RecordFeedEvent %d failed: %v", i, err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(dbPath, key)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	if err := reopened.VerifyIntegrity(); err != nil {
		t.Errorf("VerifyIntegrity failed after reopen: %v", err)
	}
}

func TestOpenWithWrongKeyFailsIntegrity(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	s, err := Open(dbPath, testKey(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.RecordFeedEvent(FeedEvent{TimestampNs: 1, BytesFed: 32, EntropyBits: 256, Source: "jent"}); err != nil {
		t.Fatalf("RecordFeedEvent failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	wrongKey, err := DeriveAuditKey([]byte("a-different-seed"))
	if err != nil {
		t.Fatalf("DeriveAuditKey failed: %v", err)
	}

	_, err = Open(dbPath, wrongKey)
	if err == nil {
		t.Fatal("expected integrity error opening with wrong key")
	}
}
