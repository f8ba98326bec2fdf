package auditstore

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite-backed, hash-chained audit history for a single
// jitterentropyd installation.
type Store struct {
	db        *sql.DB
	key       []byte
	mu        sync.Mutex
	lastHash  [32]byte
	rowCount  int64
	chainGood bool
}

// ErrChainBroken is returned by Open and VerifyIntegrity when the
// stored hash chain doesn't reproduce the stored HMAC, meaning the
// database was edited outside of this package.
var ErrChainBroken = errors.New("auditstore: integrity chain broken")

// Open opens or creates the audit database at path, using key (as
// produced by DeriveAuditKey) as the chain's HMAC key. Existing databases
// are integrity-checked before being returned usable.
func Open(path string, key []byte) (*Store, error) {
	if len(key) < 32 {
		return nil, errors.New("auditstore: key must be at least 32 bytes")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("auditstore: create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("auditstore: open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("auditstore: apply schema: %w", err)
	}
	_ = os.Chmod(path, 0600)

	s := &Store{db: db, key: key}

	if err := s.loadChain(); err != nil {
		db.Close()
		return nil, err
	}

	if err := s.VerifyIntegrity(); err != nil {
		return s, err
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) loadChain() error {
	var chainHash []byte
	var count int64
	var mac []byte

	err := s.db.QueryRow(`SELECT chain_hash, row_count, hmac FROM chain WHERE id = 1`).Scan(&chainHash, &count, &mac)
	if errors.Is(err, sql.ErrNoRows) {
		var zero [32]byte
		s.lastHash = zero
		s.rowCount = 0
		initMAC := chainHMAC(s.key, zero, 0)
		_, err := s.db.Exec(`INSERT INTO chain (id, chain_hash, row_count, hmac) VALUES (1, ?, 0, ?)`, zero[:], initMAC)
		return err
	}
	if err != nil {
		return fmt.Errorf("auditstore: load chain: %w", err)
	}

	copy(s.lastHash[:], chainHash)
	s.rowCount = count
	return nil
}

// VerifyIntegrity recomputes the stored HMAC over the current chain
// head and compares it against what's on disk.
func (s *Store) VerifyIntegrity() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var storedMAC []byte
	if err := s.db.QueryRow(`SELECT hmac FROM chain WHERE id = 1`).Scan(&storedMAC); err != nil {
		return fmt.Errorf("auditstore: read chain record: %w", err)
	}

	expected := chainHMAC(s.key, s.lastHash, s.rowCount)
	if len(storedMAC) != len(expected) || !hmacEqual(storedMAC, expected) {
		s.chainGood = false
		return ErrChainBroken
	}

	s.chainGood = true
	return nil
}

func hmacEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

// appendChained inserts a row via insertFn inside a transaction, then
// advances and persists the hash chain. It passes the new row's hash and
// HMAC to insertFn so insertFn can store them alongside the row.
func (s *Store) appendChained(domain string, payload []byte, insertFn func(tx execer, rowHash [32]byte, rowMAC []byte) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("auditstore: begin transaction: %w", err)
	}
	defer tx.Rollback()

	nextHash := chainLink(s.lastHash, domain, payload)
	nextCount := s.rowCount + 1
	rowMAC := chainHMAC(s.key, nextHash, nextCount)

	if err := insertFn(tx, nextHash, rowMAC); err != nil {
		return err
	}

	chainMAC := chainHMAC(s.key, nextHash, nextCount)
	if _, err := tx.Exec(`UPDATE chain SET chain_hash = ?, row_count = ?, hmac = ? WHERE id = 1`, nextHash[:], nextCount, chainMAC); err != nil {
		return fmt.Errorf("auditstore: update chain: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("auditstore: commit: %w", err)
	}

	s.lastHash = nextHash
	s.rowCount = nextCount
	return nil
}

// execer is satisfied by *sql.Tx; it exists only to keep appendChained
// testable without importing database/sql into every caller.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// RecordQualifyRun appends a Qualify() outcome to the history.
func (s *Store) RecordQualifyRun(r QualifyRun) error {
	payload := append([]byte{}, int64Bytes(r.TimestampNs)...)
	payload = append(payload, boolByte(r.Passed))
	payload = append(payload, int32Bytes(r.FailureCode)...)
	payload = append(payload, int64Bytes(r.DurationNs)...)
	payload = append(payload, []byte(r.Hostname)...)

	return s.appendChained("qualify_run", payload, func(tx execer, rowHash [32]byte, rowMAC []byte) error {
		_, err := tx.Exec(`
			INSERT INTO qualify_runs (timestamp_ns, passed, failure_code, duration_ns, hostname, row_hash, hmac)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.TimestampNs, r.Passed, r.FailureCode, r.DurationNs, r.Hostname, rowHash[:], rowMAC,
		)
		return err
	})
}

// RecordSelfTestTrip appends a FIPS continuous-test failure.
func (s *Store) RecordSelfTestTrip(t SelfTestTrip) error {
	payload := append([]byte{}, int64Bytes(t.TimestampNs)...)
	payload = append(payload, uint32Bytes(t.CollectorOSR)...)

	return s.appendChained("selftest_trip", payload, func(tx execer, rowHash [32]byte, rowMAC []byte) error {
		_, err := tx.Exec(`
			INSERT INTO selftest_trips (timestamp_ns, collector_osr, row_hash, hmac)
			VALUES (?, ?, ?, ?)`,
			t.TimestampNs, t.CollectorOSR, rowHash[:], rowMAC,
		)
		return err
	})
}

// RecordFeedEvent appends a pool top-up.
func (s *Store) RecordFeedEvent(f FeedEvent) error {
	payload := append([]byte{}, int64Bytes(f.TimestampNs)...)
	payload = append(payload, int32Bytes(f.BytesFed)...)
	payload = append(payload, int32Bytes(f.EntropyBits)...)
	payload = append(payload, []byte(f.Source)...)

	return s.appendChained("feed_event", payload, func(tx execer, rowHash [32]byte, rowMAC []byte) error {
		_, err := tx.Exec(`
			INSERT INTO feed_events (timestamp_ns, bytes_fed, entropy_bits, source, row_hash, hmac)
			VALUES (?, ?, ?, ?, ?, ?)`,
			f.TimestampNs, f.BytesFed, f.EntropyBits, f.Source, rowHash[:], rowMAC,
		)
		return err
	})
}

// RecentQualifyRuns returns up to limit qualification runs, newest first.
func (s *Store) RecentQualifyRuns(limit int) ([]QualifyRun, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp_ns, passed, failure_code, duration_ns, hostname
		FROM qualify_runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("auditstore: query qualify runs: %w", err)
	}
	defer rows.Close()

	var out []QualifyRun
	for rows.Next() {
		var r QualifyRun
		if err := rows.Scan(&r.ID, &r.TimestampNs, &r.Passed, &r.FailureCode, &r.DurationNs, &r.Hostname); err != nil {
			return nil, fmt.Errorf("auditstore: scan qualify run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentSelfTestTrips returns up to limit self-test trips, newest first.
func (s *Store) RecentSelfTestTrips(limit int) ([]SelfTestTrip, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp_ns, collector_osr
		FROM selftest_trips ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("auditstore: query selftest trips: %w", err)
	}
	defer rows.Close()

	var out []SelfTestTrip
	for rows.Next() {
		var t SelfTestTrip
		if err := rows.Scan(&t.ID, &t.TimestampNs, &t.CollectorOSR); err != nil {
			return nil, fmt.Errorf("auditstore: scan selftest trip: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// RecentFeedEvents returns up to limit feed events, newest first.
func (s *Store) RecentFeedEvents(limit int) ([]FeedEvent, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp_ns, bytes_fed, entropy_bits, source
		FROM feed_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("auditstore: query feed events: %w", err)
	}
	defer rows.Close()

	var out []FeedEvent
	for rows.Next() {
		var f FeedEvent
		if err := rows.Scan(&f.ID, &f.TimestampNs, &f.BytesFed, &f.EntropyBits, &f.Source); err != nil {
			return nil, fmt.Errorf("auditstore: scan feed event: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func int32Bytes(n int) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(int32(n)))
	return b
}

func uint32Bytes(n uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, n)
	return b
}
