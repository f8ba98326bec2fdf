package jent

import "testing"

func TestStirPoolDeterministicGivenStartState(t *testing.T) {
	c, err := NewCollector(1, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	c.data = 0x0102030405060708
	c.stirPool()
	first := c.data

	c.data = 0x0102030405060708
	c.stirPool()
	second := c.data

	if first != second {
		t.Errorf("stirPool is not a pure function of pool state: got %d then %d", first, second)
	}
}

func TestStirPoolDifferentStartStatesDiverge(t *testing.T) {
	c, err := NewCollector(1, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	c.data = 1
	c.stirPool()
	a := c.data

	c.data = 2
	c.stirPool()
	b := c.data

	if a == b {
		t.Error("stirPool produced the same pool value starting from two different pool states")
	}
}

func TestStirPoolIsBijective(t *testing.T) {
	c, err := NewCollector(1, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	seen := make(map[uint64]bool)
	for _, start := range []uint64{0, 1, 2, 0xdeadbeef, 0xffffffffffffffff, 0x8000000000000001} {
		c.data = start
		c.stirPool()
		if seen[c.data] {
			t.Fatalf("stirPool(%#x) collided with a previous distinct start state", start)
		}
		seen[c.data] = true
	}
}

func TestStirPoolZeroPoolIsNotFixed(t *testing.T) {
	c, err := NewCollector(1, 0)
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	defer c.Close()

	c.data = 0
	c.stirPool()

	if c.data == 0 {
		t.Error("stirPool left an all-zero pool unchanged")
	}
}
