// Package auditstore persists jitterentropyd's qualification and
// continuous-self-test history in a local SQLite database, hash-chained
// with an HMAC over the chain head. VerifyIntegrity checks that head
// HMAC only; it does not re-hash the stored rows, so an edit to a row
// that leaves the chain record untouched is not detected.
package auditstore

// QualifyRun records the outcome of one Qualify() invocation at
// jitterentropyd startup.
type QualifyRun struct {
	ID         int64
	TimestampNs int64
	Passed     bool
	FailureCode int // jent.QualifyError, or -1 when Passed
	DurationNs int64
	Hostname   string
}

// SelfTestTrip records one FIPS continuous-test failure observed while
// draining a Collector.
type SelfTestTrip struct {
	ID          int64
	TimestampNs int64
	CollectorOSR uint32
}

// FeedEvent records one top-up of the OS entropy pool.
type FeedEvent struct {
	ID           int64
	TimestampNs  int64
	BytesFed     int
	EntropyBits  int
	Source       string // "jent" or "jent+tpm"
}
