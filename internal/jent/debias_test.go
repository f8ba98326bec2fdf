package jent

import "testing"

func TestUnbiasedBitDisabledReturnsRawMeasurement(t *testing.T) {
	c, err := NewCollector(1, DisableUnbias)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	if _, err := c.unbiasedBit(); err != nil {
		t.Errorf("unbiasedBit with DisableUnbias = %v, want nil error", err)
	}
}

func TestUnbiasedBitEnabledTerminates(t *testing.T) {
	c, err := NewCollector(1, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	for i := 0; i < 16; i++ {
		if _, err := c.unbiasedBit(); err != nil {
			t.Fatalf("unbiasedBit call %d: %v", i, err)
		}
	}
}
