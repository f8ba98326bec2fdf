package auditstore

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const auditKeyDomain = "jitterentropyd-audit-v1"

// DeriveAuditKey derives the 32-byte HMAC key used to chain-tag audit
// rows from a caller-supplied seed (typically a machine identifier or
// a key read from disk by the daemon's installer). The derivation is
// HKDF-SHA256 with a fixed domain-separated salt and info string, so a
// given seed always yields the same audit key.
func DeriveAuditKey(seed []byte) ([]byte, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("auditstore: empty key seed")
	}

	reader := hkdf.New(sha256.New, seed, []byte(auditKeyDomain), []byte("row-hmac"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("auditstore: derive key: %w", err)
	}
	return key, nil
}
