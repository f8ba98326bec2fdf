package jent

import "errors"

// Sentinel errors returned by the collector lifecycle and read path.
var (
	// ErrNilCollector is returned when an operation is attempted on a nil
	// or already-closed Collector.
	ErrNilCollector = errors.New("jent: nil or closed collector")

	// ErrContinuousTest is returned by ReadEntropy when the FIPS 140-2
	// style continuous self-test trips: the current 64-bit block is
	// identical to the previous one.
	ErrContinuousTest = errors.New("jent: continuous self-test failure, repeated block")

	// ErrDebiasRetriesExceeded is returned when the Von Neumann debiaser
	// fails to produce a decision within its retry budget. This should be
	// effectively unreachable on real hardware; it exists as a hard
	// bound so the generation loop cannot spin forever.
	ErrDebiasRetriesExceeded = errors.New("jent: debias retry budget exceeded")
)

// QualifyError enumerates the ways the one-time environment qualification
// (Qualify) can fail. It is a distinct type from the sentinel errors above
// because callers (notably cmd/jitterentropy-qualify) report these as a
// stable numeric code, matching spec.md's §4.12 error table.
type QualifyError int

const (
	// ErrNoTime indicates the timer source could not be read at all.
	ErrNoTime QualifyError = iota + 1

	// ErrCoarseTime indicates the timer's apparent resolution is too
	// coarse to carry the assumed TimeEntropyBits per sample.
	ErrCoarseTime

	// ErrNoMonotonic indicates the timer went backward during
	// qualification, so it cannot be trusted as a monotonic source.
	ErrNoMonotonic

	// ErrMinVariation indicates the measured timing deltas show too
	// little absolute variation to be a usable noise source.
	ErrMinVariation

	// ErrVarVar indicates the variation of the timing deltas is itself
	// too small (the deltas are suspiciously uniform).
	ErrVarVar

	// ErrMinVarVar indicates the mean delta-of-delta across the
	// qualification run does not exceed TimeEntropyBits.
	ErrMinVarVar
)

func (e QualifyError) Error() string {
	switch e {
	case ErrNoTime:
		return "jent: qualification failed, no usable timer"
	case ErrCoarseTime:
		return "jent: qualification failed, timer resolution too coarse"
	case ErrNoMonotonic:
		return "jent: qualification failed, timer is not monotonic"
	case ErrMinVariation:
		return "jent: qualification failed, insufficient timing variation"
	case ErrVarVar:
		return "jent: qualification failed, timing variation too uniform"
	case ErrMinVarVar:
		return "jent: qualification failed, delta-of-delta below minimum entropy assumption"
	default:
		return "jent: qualification failed, unknown reason"
	}
}
