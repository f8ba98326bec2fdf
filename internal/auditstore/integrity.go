package auditstore

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
)

// chainLink computes the next chain hash from the previous one and a
// domain-tagged row payload, the way the event chain in the witnessing
// store's secure mode links consecutive rows.
func chainLink(prevHash [32]byte, domain string, payload []byte) [32]byte {
	h := sha256.New()
	h.Write(prevHash[:])
	h.Write([]byte(domain))
	h.Write(payload)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func chainHMAC(key []byte, rowHash [32]byte, count int64) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte("jitterentropyd-chain-v1"))
	h.Write(rowHash[:])
	h.Write(uint64Bytes(uint64(count)))
	return h.Sum(nil)
}

func uint64Bytes(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func int64Bytes(n int64) []byte {
	return uint64Bytes(uint64(n))
}
