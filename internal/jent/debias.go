package jent

// maxDebiasRetries bounds the Von Neumann debiaser's retry loop. A real
// timing source producing two identical measurements on every one of
// 1024 consecutive pairs would indicate the noise source itself has
// failed, not bad luck; the bound exists so generation can report an
// error instead of spinning forever.
const maxDebiasRetries = 1024

// unbiasedBit draws pairs of consecutive jitter measurements and applies
// the Von Neumann extractor to them: an equal pair carries no usable
// information about which of the two came first by chance and is
// discarded; an unequal pair is a decision, and the first of the pair is
// returned. This is correctness-safe even if the two measurements aren't
// perfectly independent - XORing the result into the pool afterward is
// bijective, so debiasing can only fail to be optimal, never destroy
// entropy. When DisableUnbias is set, debiasing is skipped entirely and
// one raw measurement is returned.
func (c *Collector) unbiasedBit() (uint64, error) {
	if c.flags.has(DisableUnbias) {
		return c.measureJitter(), nil
	}

	for i := 0; i < maxDebiasRetries; i++ {
		a := c.measureJitter()
		b := c.measureJitter()

		if a != b {
			return a, nil
		}
	}

	return 0, ErrDebiasRetriesExceeded
}
