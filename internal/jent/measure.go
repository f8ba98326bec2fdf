package jent

// measureJitter takes one timing measurement: it runs the memory-access
// noise source, reads the timer, computes the delta against the previous
// call's reading, and folds that delta down to TimeEntropyBits bits. The
// very first call after a collector is created (or after Close resets
// prevTime) produces a meaningless delta, since there is no prior
// reading to compare against; the caller is responsible for discarding
// that first result (genEntropy does this).
func (c *Collector) measureJitter() uint64 {
	c.memAccess()

	t := nowNS()
	delta := t - c.prevTime
	c.prevTime = t

	folded, _ := fold(c, delta, 0)
	return folded
}
