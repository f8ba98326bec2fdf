package jent

import "testing"

func TestNewCollectorDefaultsOSR(t *testing.T) {
	c, err := NewCollector(0, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	if c.osr != 1 {
		t.Errorf("osr = %d, want 1 when 0 is passed", c.osr)
	}
}

func TestNewCollectorAllocatesNoiseBuffer(t *testing.T) {
	c, err := NewCollector(1, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	if c.mem == nil {
		t.Fatal("expected noise buffer to be allocated by default")
	}
}

func TestNewCollectorDisableMemoryAccess(t *testing.T) {
	c, err := NewCollector(1, DisableMemoryAccess)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	if c.mem != nil {
		t.Error("expected noise buffer to be nil when DisableMemoryAccess is set")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c, err := NewCollector(1, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close should be a no-op, got: %v", err)
	}
}

func TestCloseZeroesState(t *testing.T) {
	c, err := NewCollector(1, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	c.data = 0xdeadbeefdeadbeef
	c.lastBlock = 0xcafebabecafebabe
	c.hasLastBlock = true

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if c.data != 0 || c.lastBlock != 0 || c.hasLastBlock {
		t.Error("Close did not zero collector state")
	}
	if c.mem != nil {
		t.Error("Close did not release the noise buffer")
	}
}

func TestReadEntropyOnClosedCollector(t *testing.T) {
	c, err := NewCollector(1, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	buf := make([]byte, 8)
	if _, err := c.ReadEntropy(buf); err != ErrNilCollector {
		t.Errorf("ReadEntropy on closed collector: err = %v, want ErrNilCollector", err)
	}
}

func TestReadEntropyOnNilCollector(t *testing.T) {
	var c *Collector
	buf := make([]byte, 8)
	if _, err := c.ReadEntropy(buf); err != ErrNilCollector {
		t.Errorf("ReadEntropy on nil collector: err = %v, want ErrNilCollector", err)
	}
}
