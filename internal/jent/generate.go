package jent

import "math/bits"

// genLoopBase is the number of debiased samples needed to cover the pool
// once, given that each sample is assumed to carry only TimeEntropyBits
// of real entropy: ceil(DataSizeBits / TimeEntropyBits).
const genLoopBase = (DataSizeBits-1)/TimeEntropyBits + 1

// genEntropy runs genLoopBase * osr debiased measurements and mixes them
// into the pool. osr (oversampling rate) exists because the
// TimeEntropyBits assumption is conservative on fast, low-jitter
// hardware; running the loop osr times longer compensates without
// changing the algorithm.
//
// The very first measurement of every call is discarded: it exists only
// to prime measureJitter's prevTime, since the delta it would otherwise
// produce is meaningless (there is no prior sample to compare against).
// Every measurement after that is XORed into the pool and the pool is
// rotated left by TimeEntropyBits, so that after the full loop every pool
// bit has been touched by at least one fresh measurement. If stirring is
// enabled, the pool-stirring permutation runs once at the end, not once
// per sample.
func (c *Collector) genEntropy() error {
	if _, err := c.unbiasedBit(); err != nil {
		return err
	}

	loopCount := genLoopBase * uint64(c.osr)

	for i := uint64(0); i < loopCount; i++ {
		bit, err := c.unbiasedBit()
		if err != nil {
			return err
		}

		c.data ^= bit
		c.data = bits.RotateLeft64(c.data, TimeEntropyBits)
	}

	if !c.flags.has(DisableStir) {
		c.stirPool()
	}

	return nil
}
