// Package jent implements a non-physical true random number generator
// whose entropy source is CPU execution-time jitter: the small,
// unpredictable variations in how long a fixed instruction sequence takes
// to run, caused by pipeline state, memory hierarchy occupancy, prefetcher
// and branch-predictor behavior, and asynchronous micro-architectural
// events.
//
// The collector samples a high-resolution monotonic timer around a memory
// access and a folding loop, folds the delta into a few bits, removes bias
// with a Von Neumann extractor, XORs the result into a 64-bit pool, and
// applies a FIPS 140-2 style continuous self-test before handing bytes to
// a caller. It does not whiten cryptographically, does not seed a DRBG,
// and makes no throughput guarantee — it is an entropy source, not a
// stream cipher.
//
// Compiler hostility: the folding loop in fold.go and the memory-access
// loop in memaccess.go are timed, not merely computed. Their execution
// time is the signal this package measures, so every iteration's result
// is threaded through barrier (see barrier.go) to keep the compiler from
// proving intermediate iterations are dead code and collapsing the loop.
package jent

// Global sizing constants shared by every component.
const (
	// DataSizeBits is the width of the entropy pool accumulator.
	DataSizeBits = 64

	// TimeEntropyBits is the assumed minimum entropy, in bits, carried by
	// a single timer delta. It sizes the fold width and the number of
	// generation-loop iterations needed to cover the pool once.
	TimeEntropyBits = 3
)
