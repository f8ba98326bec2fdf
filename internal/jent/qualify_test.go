package jent

import "testing"

func TestQualifyPassesOnARealMonotonicTimer(t *testing.T) {
	// Qualify has no mockable timer seam by design (it qualifies the
	// actual process timer, not a substitute), so this runs against
	// whatever monotonic clock the test host provides. Any general
	// purpose machine is expected to pass: this is exactly the
	// assumption the package makes at real startup.
	if err := Qualify(); err != nil {
		t.Errorf("Qualify() = %v, want nil on a normal host", err)
	}
}

func TestQualifyErrorsImplementError(t *testing.T) {
	errs := []QualifyError{
		ErrNoTime, ErrCoarseTime, ErrNoMonotonic,
		ErrMinVariation, ErrVarVar, ErrMinVarVar,
	}
	seen := make(map[string]bool)
	for _, e := range errs {
		msg := e.Error()
		if msg == "" {
			t.Errorf("QualifyError(%d).Error() is empty", e)
		}
		if seen[msg] {
			t.Errorf("QualifyError(%d).Error() duplicates another code's message: %q", e, msg)
		}
		seen[msg] = true
	}
}
