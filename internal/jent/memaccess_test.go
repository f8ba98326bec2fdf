package jent

import "testing"

func TestMemAccessNoopWithoutBuffer(t *testing.T) {
	c, err := NewCollector(1, DisableMemoryAccess)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	// Should not panic on a nil buffer.
	c.memAccess()
}

func TestMemAccessAdvancesIndex(t *testing.T) {
	c, err := NewCollector(1, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	start := c.memBlockIndex
	c.memAccess()
	if c.memBlockIndex == start && len(c.mem) > defaultMemBlockSize-1 {
		t.Error("memAccess did not advance the block index")
	}
}

func TestMemAccessStaysInBounds(t *testing.T) {
	c, err := NewCollector(1, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	for i := 0; i < 100; i++ {
		c.memAccess()
		if c.memBlockIndex >= uint(len(c.mem)) {
			t.Fatalf("memBlockIndex %d out of bounds for buffer of length %d", c.memBlockIndex, len(c.mem))
		}
	}
}
