package jent

// testLoopCount and clearCache size the one-time environment
// qualification run: clearCache iterations warm up the timer and any
// branch-predictor/cache state before the accumulated checks start
// counting, and testLoopCount samples after that are analyzed for
// monotonicity and variation. Every iteration of both, though, runs the
// same intra-iteration bracket and the same per-sample ENOTIME/
// ECOARSETIME/EMINVARIATION checks - those catch a timer that is broken
// outright, which is just as true during warm-up as after it.
const (
	testLoopCount = 300
	clearCache    = 100

	// maxNonMonotonic is how many non-increasing timer brackets are
	// tolerated across the run before the timer is judged
	// non-monotonic; seeing it repeatedly means the clock isn't moving
	// forward at all.
	maxNonMonotonic = 3

	// coarseFraction is the threshold for ECOARSETIME: if more than
	// this fraction of observed deltas are exact multiples of 100ns,
	// the timer is treated as too coarse-grained (it's quantizing real
	// variation away) even though it technically produced nonzero
	// deltas.
	coarseFractionNum = 9
	coarseFractionDen = 10
)

// Qualify runs the one-time environment check every process must perform
// before trusting this package's timer as a noise source: it confirms the
// timer is readable, fine-grained, monotonic, and varies enough from call
// to call to support the TimeEntropyBits assumption baked into
// genLoopBase. It has no per-collector state and is meant to be called
// once at process startup (or by cmd/jitterentropy-qualify standalone);
// NewCollector does not call it implicitly, since running it once per
// collector on a system that creates many collectors would be wasted,
// repeated work.
//
// Each of the testLoopCount+clearCache iterations reads the timer, runs a
// real call to fold with a forced loop count of one, and reads the timer
// again - exactly as C4 is invoked from a real measurement, bracketed so
// the very delta the checks reason about is the one produced by doing
// real work, not just two back-to-back clock reads.
func Qualify() error {
	var (
		deltaSum      uint64
		oldDelta      uint64
		timeBackwards int
		countMod      int
	)

	for i := 0; i < testLoopCount+clearCache; i++ {
		t := nowNS()
		fold(nil, t, 1<<minFoldLoopBit)
		t2 := nowNS()

		if t == 0 || t2 == 0 {
			return ErrNoTime
		}

		delta := t2 - t
		if delta == 0 {
			return ErrCoarseTime
		}
		if delta < TimeEntropyBits {
			return ErrMinVariation
		}

		if i < clearCache {
			continue
		}

		if !(t2 > t) {
			timeBackwards++
		}
		if delta%100 == 0 {
			countMod++
		}

		if i != 0 {
			if delta > oldDelta {
				deltaSum += delta - oldDelta
			} else {
				deltaSum += oldDelta - delta
			}
		}
		oldDelta = delta
	}

	if timeBackwards > maxNonMonotonic {
		return ErrNoMonotonic
	}

	// A run whose deltas are all identical (deltaSum stays 0) signals a
	// timer with no usable jitter at all, distinct from the weaker
	// "average delta-of-delta too small" check below.
	if deltaSum == 0 {
		return ErrVarVar
	}

	// This is the stricter, intended form of the reference
	// implementation's delta-of-delta check: the mean absolute
	// delta-of-delta across the run must exceed TimeEntropyBits. The C
	// source's equivalent check has a negation-precedence bug
	// (`!(delta_sum / TESTLOOPCOUNT) > TIME_ENTROPY_BITS`, which
	// evaluates the `!` before the `>` and is therefore always false)
	// that makes it vacuously true on every input; reproducing that bug
	// in a fresh implementation would just be carrying forward a
	// defect, not fidelity.
	if deltaSum/uint64(testLoopCount) <= TimeEntropyBits {
		return ErrMinVarVar
	}

	if countMod*coarseFractionDen > testLoopCount*coarseFractionNum {
		return ErrCoarseTime
	}

	return nil
}
