package report

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	"jitterentropy-go/internal/jent"
)

func repoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("unable to resolve caller path")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

func TestBuildPassedReport(t *testing.T) {
	r := Build("host-a", 1000, 500, 4, nil)
	if !r.Passed || r.FailureCode != -1 {
		t.Errorf("unexpected report: %+v", r)
	}
}

func TestBuildFailedReportCapturesQualifyError(t *testing.T) {
	r := Build("host-a", 1000, 500, 1, jent.ErrMinVarVar)
	if r.Passed {
		t.Fatal("expected Passed == false")
	}
	if r.FailureCode != int(jent.ErrMinVarVar) {
		t.Errorf("expected failure code %d, got %d", int(jent.ErrMinVarVar), r.FailureCode)
	}
	if r.FailureText == "" {
		t.Error("expected non-empty failure text")
	}
}

func TestBuildFailedReportWithNonQualifyError(t *testing.T) {
	r := Build("host-a", 1000, 500, 1, errors.New("boom"))
	if r.Passed || r.FailureCode != -1 {
		t.Errorf("unexpected report: %+v", r)
	}
}

func TestValidatorAcceptsGeneratedReport(t *testing.T) {
	schemaPath := filepath.Join(repoRoot(t), "docs", "schema", "qualification-report-v1.schema.json")
	v, err := NewValidator(schemaPath)
	if err != nil {
		t.Fatalf("NewValidator failed: %v", err)
	}

	r := Build("host-a", 1000, 500, 1, nil)
	if err := v.Validate(r); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestValidatorAcceptsFixtureEquivalentReport(t *testing.T) {
	root := repoRoot(t)
	v, err := NewValidator(filepath.Join(root, "docs", "schema", "qualification-report-v1.schema.json"))
	if err != nil {
		t.Fatalf("NewValidator failed: %v", err)
	}

	r := Build("build-runner-07", 1732000000000000000, 48213000, 1, nil)
	if err := v.Validate(r); err != nil {
		t.Errorf("Validate against fixture-equivalent report failed: %v", err)
	}
}
