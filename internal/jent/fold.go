package jent

// maxFoldLoopBit and minFoldLoopBit bound how many times the outer fold
// loop runs: the loop count itself is shuffled between minFoldLoopBit's
// floor and 2^maxFoldLoopBit-1 additional iterations so an observer
// cannot derive the exact number of timer samples folded into one
// measurement. With minFoldLoopBit at 0 the resulting loop count lands in
// [1, 16].
const (
	maxFoldLoopBit = 4
	minFoldLoopBit = 0

	// foldInnerSlices is how many fixed-width, TimeEntropyBits-wide
	// slices of a 64-bit time value the inner fold loop XORs together:
	// floor(DataSizeBits / TimeEntropyBits). 64 isn't a multiple of 3,
	// so the lowest bit of the input is never touched by any slice -
	// that's intentional, not an off-by-one.
	foldInnerSlices = DataSizeBits / TimeEntropyBits

	foldSliceMask = uint64(1)<<TimeEntropyBits - 1
)

// fold compresses a 64-bit time value down to TimeEntropyBits bits by
// XORing together foldInnerSlices fixed-width slices of it, taken from the
// high end downward. state, when non-nil, lets the outer loop count be
// shuffled by the collector's current pool value as well as the clock;
// state's pool is otherwise untouched by fold itself.
//
// The outer loop recomputes the identical accumulator value loopCount
// times; it exists purely so the *time spent folding* is the signal
// measureJitter captures, not so the result changes with loopCount. Every
// call is forced through barrier so the compiler cannot notice the outer
// iterations are redundant and collapse the loop to one pass. forcedCount,
// when non-zero, pins the loop count instead of shuffling it - tests use
// this to get a deterministic, single-pass fold.
func fold(state *Collector, t uint64, forcedCount uint64) (folded uint64, loopCount uint64) {
	loopCount = forcedCount
	if loopCount == 0 {
		loopCount = shuffle(state, maxFoldLoopBit, minFoldLoopBit)
	}

	var acc uint64
	for outer := uint64(0); outer < loopCount; outer++ {
		acc = 0
		for i := uint64(1); i <= foldInnerSlices; i++ {
			shift := DataSizeBits - i*TimeEntropyBits
			acc ^= (t >> shift) & foldSliceMask
		}
		barrier(acc)
	}

	return acc, loopCount
}
