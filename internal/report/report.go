// Package report builds and schema-validates qualification reports for
// jitterentropyd and jitterentropy-qualify.
package report

import (
	"fmt"

	"jitterentropy-go/internal/jent"
)

// SchemaVersion is the report format's schema version. It must match
// the "version" const in docs/schema/qualification-report-v1.schema.json.
const SchemaVersion = 1

// QualificationReport is the JSON-serializable record produced after
// running jent.Qualify(), suitable for machine consumption by
// monitoring or audit tooling.
type QualificationReport struct {
	Version     int    `json:"version"`
	Hostname    string `json:"hostname"`
	TimestampNs int64  `json:"timestamp_ns"`
	Passed      bool   `json:"passed"`
	FailureCode int    `json:"failure_code"`
	FailureText string `json:"failure_text,omitempty"`
	DurationNs  int64  `json:"duration_ns"`
	OSR         uint32 `json:"osr"`
}

// Build constructs a QualificationReport from the result of a single
// Qualify() call. durationNs is the wall time the qualification run
// took, measured by the caller.
func Build(hostname string, timestampNs int64, durationNs int64, osr uint32, qualifyErr error) *QualificationReport {
	r := &QualificationReport{
		Version:     SchemaVersion,
		Hostname:    hostname,
		TimestampNs: timestampNs,
		DurationNs:  durationNs,
		OSR:         osr,
		FailureCode: -1,
	}

	if qualifyErr == nil {
		r.Passed = true
		return r
	}

	r.Passed = false
	r.FailureText = qualifyErr.Error()

	var qe jent.QualifyError
	if asQualifyError(qualifyErr, &qe) {
		r.FailureCode = int(qe)
	}

	return r
}

func asQualifyError(err error, out *jent.QualifyError) bool {
	qe, ok := err.(jent.QualifyError)
	if !ok {
		return false
	}
	*out = qe
	return true
}

// String renders a one-line human summary, used by jitterentropy-qualify's
// non-JSON output mode.
func (r *QualificationReport) String() string {
	if r.Passed {
		return fmt.Sprintf("qualify: PASS host=%s osr=%d duration=%dns", r.Hostname, r.OSR, r.DurationNs)
	}
	return fmt.Sprintf("qualify: FAIL host=%s osr=%d duration=%dns reason=%s", r.Hostname, r.OSR, r.DurationNs, r.FailureText)
}
