// Command jitterentropy-qualify runs the one-time timer qualification
// check standalone, with no daemon, config file, or audit store
// attached.
//
// It exists for operators and packagers who want to know whether a
// given host's timer is trustworthy as a jitter source before ever
// installing jitterentropyd - the same check jitterentropyd itself
// runs at startup, exposed on its own.
//
// Usage:
//
//	jitterentropy-qualify [flags]
//
// Examples:
//
//	# Human-readable pass/fail on stdout
//	jitterentropy-qualify
//
//	# Schema-validated JSON report, for scripting
//	jitterentropy-qualify -json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jitterentropy-go/internal/jent"
	"jitterentropy-go/internal/report"
)

var (
	jsonOutput = flag.Bool("json", false, "emit a schema-validated JSON report instead of text")
	schemaPath = flag.String("schema", defaultSchemaPath(), "path to the qualification report JSON Schema (used only with -json)")
	osr        = flag.Uint("osr", 1, "oversampling rate to record in the report (informational only; qualification itself doesn't depend on it)")
	quiet      = flag.Bool("quiet", false, "suppress text output; exit code alone reports pass/fail")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "jitterentropy-qualify - check whether this host's timer qualifies as a jitter source\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	hostname, _ := os.Hostname()

	start := time.Now()
	qualifyErr := jent.Qualify()
	duration := time.Since(start)

	rpt := report.Build(hostname, start.UnixNano(), int64(duration), uint32(*osr), qualifyErr)

	if *jsonOutput {
		if err := emitJSON(rpt); err != nil {
			fmt.Fprintf(os.Stderr, "jitterentropy-qualify: %v\n", err)
			os.Exit(2)
		}
	} else if !*quiet {
		fmt.Println(rpt.String())
	}

	if !rpt.Passed {
		os.Exit(1)
	}
}

// emitJSON validates rpt against the qualification report schema before
// printing it, so a malformed report is caught here rather than by
// whatever downstream tool consumes the JSON.
func emitJSON(rpt *report.QualificationReport) error {
	v, err := report.NewValidator(*schemaPath)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	if err := v.Validate(rpt); err != nil {
		return fmt.Errorf("report failed its own schema: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rpt)
}

// defaultSchemaPath guesses the schema's location relative to the
// binary's working directory, matching how this repo lays out
// docs/schema. Packagers that install the binary elsewhere should pass
// -schema explicitly.
func defaultSchemaPath() string {
	return filepath.Join("docs", "schema", "qualification-report-v1.schema.json")
}
