package jent

import "testing"

func TestFipsTestDetectsRepeatedBlock(t *testing.T) {
	SetFIPSEnabled(true)
	defer SetFIPSEnabled(true)

	c, err := NewCollector(1, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	c.data = 0x1111111111111111
	if err := c.fipsTest(); err != nil {
		t.Fatalf("first fipsTest call: %v", err)
	}

	// Same pool value again with no change in between should trip the
	// continuous self-test.
	if err := c.fipsTest(); err != ErrContinuousTest {
		t.Errorf("fipsTest on repeated block = %v, want ErrContinuousTest", err)
	}
}

func TestFipsTestPassesOnDistinctBlocks(t *testing.T) {
	SetFIPSEnabled(true)
	defer SetFIPSEnabled(true)

	c, err := NewCollector(1, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	c.data = 1
	if err := c.fipsTest(); err != nil {
		t.Fatalf("fipsTest: %v", err)
	}

	c.data = 2
	if err := c.fipsTest(); err != nil {
		t.Errorf("fipsTest on a distinct block returned %v, want nil", err)
	}
}

func TestFipsTestDisabledNeverFails(t *testing.T) {
	SetFIPSEnabled(false)
	defer SetFIPSEnabled(true)

	c, err := NewCollector(1, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	c.data = 42
	if err := c.fipsTest(); err != nil {
		t.Fatalf("fipsTest: %v", err)
	}
	if err := c.fipsTest(); err != nil {
		t.Errorf("fipsTest with FIPS disabled on a repeated block returned %v, want nil", err)
	}
}

func TestSetFIPSEnabledRoundTrip(t *testing.T) {
	defer SetFIPSEnabled(true)

	SetFIPSEnabled(false)
	if FIPSEnabled() {
		t.Error("FIPSEnabled() = true after SetFIPSEnabled(false)")
	}

	SetFIPSEnabled(true)
	if !FIPSEnabled() {
		t.Error("FIPSEnabled() = false after SetFIPSEnabled(true)")
	}
}
