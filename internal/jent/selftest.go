package jent

import "sync/atomic"

// fipsEnabled controls whether every read path runs the continuous
// self-test. It defaults to enabled, matching FIPS 140-2's requirement
// that a continuous test run on every generated block; SetFIPSEnabled
// exists for environments (and tests) that need to disable it explicitly
// and knowingly.
var fipsEnabled atomic.Bool

func init() {
	fipsEnabled.Store(true)
}

// SetFIPSEnabled enables or disables the continuous self-test globally.
func SetFIPSEnabled(enabled bool) {
	fipsEnabled.Store(enabled)
}

// FIPSEnabled reports whether the continuous self-test is currently active.
func FIPSEnabled() bool {
	return fipsEnabled.Load()
}

// fipsTest compares the pool's current value against the block produced
// by the previous call and fails if they are identical. A healthy jitter
// source should never emit the same 64-bit block twice in a row; seeing
// one is the cheapest possible signal that the noise source has stopped
// producing noise (a stuck timer, a collapsed loop, etc.). A failure is
// sticky: once fipsFail is set, every later call fails immediately
// without re-examining the pool, since a collector that has already
// proven its noise source dead has no way to un-prove it.
//
// The very first call has nothing to compare against yet, so it saves
// the current block as the baseline and runs one more generation to
// produce a block that actually can be compared - mirroring how the
// reference implementation primes old_data before its first real
// comparison.
func (c *Collector) fipsTest() error {
	if !fipsEnabled.Load() {
		c.lastBlock = c.data
		c.hasLastBlock = true
		return nil
	}

	if c.fipsFail {
		return ErrContinuousTest
	}

	if !c.hasLastBlock {
		c.lastBlock = c.data
		c.hasLastBlock = true
		if err := c.genEntropy(); err != nil {
			return err
		}
	}

	if c.data == c.lastBlock {
		c.fipsFail = true
		return ErrContinuousTest
	}

	c.lastBlock = c.data
	return nil
}
