package jent

import "testing"

func TestGenLoopBaseCoversThePool(t *testing.T) {
	// ceil(64 / 3) == 22
	if genLoopBase != 22 {
		t.Errorf("genLoopBase = %d, want 22", genLoopBase)
	}
}

func TestGenEntropyPrimesPoolOnFirstSample(t *testing.T) {
	c, err := NewCollector(1, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	c.data = 0xdeadbeefdeadbeef
	if err := c.genEntropy(); err != nil {
		t.Fatalf("genEntropy: %v", err)
	}

	if c.data == 0xdeadbeefdeadbeef {
		t.Error("genEntropy left the pool unchanged; priming/stirring did not run")
	}
}

func TestGenEntropyWithHigherOSRStillSucceeds(t *testing.T) {
	c, err := NewCollector(8, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	for i := 0; i < 3; i++ {
		if err := c.genEntropy(); err != nil {
			t.Fatalf("genEntropy with osr=8: %v", err)
		}
	}
}
