package jent

import "sync/atomic"

// sink is a package-level landing pad for values that exist only so their
// computation can't be proven dead. It is never read by any component; it
// is written to with an atomic store so the compiler cannot treat the
// store (and the work that produced its operand) as eliminable.
var sink uint64

// barrier forces v to have been computed: a loop built so every iteration
// feeds its intermediate result through barrier cannot be collapsed by the
// optimizer into a closed-form final value or dropped entirely, because
// atomic.StoreUint64 is an external, observable side effect from the
// compiler's point of view.
func barrier(v uint64) {
	atomic.StoreUint64(&sink, v)
}
