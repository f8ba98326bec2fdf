package jent

import "encoding/binary"

// ReadEntropy fills dst with entropy, DataSizeBits/8 bytes at a time. Each
// block runs a full genEntropy pass, then the continuous self-test before
// the block is copied out; a self-test failure aborts the read and
// reports how many bytes were already written, same as a short read from
// any io.Reader. The pool's 64-bit accumulator is always serialized
// little-endian, regardless of host byte order, so callers get one
// canonical representation instead of one that varies by platform.
//
// Once every requested byte has been copied out, ReadEntropy runs one
// more generation whose output is never observed by the caller, so the
// value sitting in the pool after the call isn't the same value that was
// just handed out - an anti-disclosure precaution against anything that
// might later inspect process memory. When the collector's noise buffer
// is locked into RAM (NewCollector's unix.Mlock succeeded), that
// precaution is redundant with the OS guarantee that the pool is never
// paged to swap, so the extra generation is skipped.
func (c *Collector) ReadEntropy(dst []byte) (int, error) {
	if c == nil || c.closed {
		return 0, ErrNilCollector
	}
	if len(dst) == 0 {
		return 0, nil
	}

	var buf [DataSizeBits / 8]byte
	written := 0

	for written < len(dst) {
		if err := c.genEntropy(); err != nil {
			return written, err
		}
		if err := c.fipsTest(); err != nil {
			return written, err
		}

		binary.LittleEndian.PutUint64(buf[:], c.data)
		written += copy(dst[written:], buf[:])
	}

	if !c.memLocked {
		if err := c.genEntropy(); err != nil {
			return written, err
		}
	}

	return written, nil
}
