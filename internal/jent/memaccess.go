package jent

// Sizing for the memory-access noise source. The block size and block
// count are chosen to exceed typical L1 data cache size so the access
// pattern forces cache-line evictions and reloads rather than hitting
// entirely in L1, which is where most of this source's timing noise
// actually comes from.
const (
	defaultMemBlockSize   = 32
	defaultMemBlocks      = 64
	defaultMemAccessLoops = 128
)

// memAccess walks the collector's noise buffer in a cache-hostile,
// non-sequential pattern, touching one byte per step with a
// read-modify-write so the access cannot be optimized into a pure read.
// Its only useful output is the time it takes; the byte it leaves behind
// is discarded by the caller. If the collector has no buffer (memory
// access disabled via Flags), it is a no-op.
//
// Each step reads the byte at the current location, increments it modulo
// 256, writes it back, then advances the location by defaultMemBlockSize-1
// modulo the buffer length - a stride of blockSize-1 is coprime with the
// buffer's power-of-two total size, so it walks every byte of the buffer
// before repeating rather than settling into a short cycle that would keep
// hitting the same handful of cache lines.
func (c *Collector) memAccess() {
	if c.mem == nil {
		return
	}

	idx := c.memBlockIndex
	n := uint(len(c.mem))
	for i := uint(0); i < c.memAccessLoops; i++ {
		c.mem[idx]++
		barrier(uint64(c.mem[idx]))
		idx = (idx + (defaultMemBlockSize - 1)) % n
	}
	c.memBlockIndex = idx
}
