package jent

import (
	"golang.org/x/sys/unix"
)

// Flags controls which optional noise-shaping stages a Collector runs.
// The zero value runs every stage; each bit disables one stage, mirroring
// the knobs the reference implementation exposes as compile-time options.
type Flags uint8

const (
	// DisableMemoryAccess turns off the cache-hostile memory-access
	// noise source; the folding loop still runs, timed on its own.
	DisableMemoryAccess Flags = 1 << iota

	// DisableStir turns off the bitwise pool-stirring mix and falls
	// back to a plain XOR of each measurement into the pool.
	DisableStir

	// DisableUnbias turns off the Von Neumann debiaser; raw
	// measurements are folded into the pool directly.
	DisableUnbias
)

func (f Flags) has(bit Flags) bool {
	return f&bit != 0
}

// Collector holds all per-instance state for one entropy collector: the
// pool accumulator, the memory-access noise buffer, and the bookkeeping
// the continuous self-test needs. It is not safe for concurrent use - per
// the design notes, a single collector is meant to be used by one
// goroutine at a time, the same way the reference implementation assumes
// a single-threaded caller.
type Collector struct {
	osr   uint32
	flags Flags

	data         uint64
	prevTime     uint64
	lastBlock    uint64
	hasLastBlock bool
	fipsFail     bool

	mem            []byte
	memBlockIndex  uint
	memAccessLoops uint
	memLocked      bool

	closed bool
}

// NewCollector allocates a collector with the given oversampling rate.
// osr must be at least 1; a value of 0 is treated as 1. If memory-access
// noise is enabled (the default), the noise buffer is allocated and
// locked into RAM with unix.Mlock so it is never written to swap - the
// buffer's transient byte values are not secret, but a backing store that
// can observe and replay them would let an attacker correlate access
// timing after the fact, defeating the point of measuring it live.
// Locking failure is not fatal and is not reported to the caller: the
// collector still functions, just without that protection.
//
// Construction always runs one full generation so data is non-zero
// before the first caller-visible read, then runs the continuous
// self-test once to prime it. Either step failing (the debiaser hitting
// its retry budget, or an already-tripped self-test) releases the
// partially built collector and returns the error instead of handing back
// a collector that could never pass a read.
func NewCollector(osr uint32, flags Flags) (*Collector, error) {
	if osr == 0 {
		osr = 1
	}

	c := &Collector{
		osr:            osr,
		flags:          flags,
		memAccessLoops: defaultMemAccessLoops,
	}

	if !flags.has(DisableMemoryAccess) {
		c.mem = make([]byte, defaultMemBlockSize*defaultMemBlocks)
		if err := unix.Mlock(c.mem); err == nil {
			c.memLocked = true
		}
	}

	if err := c.genEntropy(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.fipsTest(); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

// Close releases the collector's locked memory and marks it closed.
// Close is idempotent: a second call is a no-op returning nil, since Go
// gives no way to force a caller to null out their own reference the way
// the reference implementation's destroy() nulls the caller's pointer.
func (c *Collector) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true

	if c.memLocked {
		_ = unix.Munlock(c.mem)
		c.memLocked = false
	}

	for i := range c.mem {
		c.mem[i] = 0
	}
	c.mem = nil
	c.data = 0
	c.prevTime = 0
	c.lastBlock = 0
	c.hasLastBlock = false
	c.fipsFail = false

	return nil
}
