package util

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"
)

// HashKey returns a filesystem-safe identifier for an arbitrary key.
func HashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// StableSignature maps s onto [0, mod) using its SHA-256 digest read as an
// unsigned big-endian integer. The result depends only on s.
func StableSignature(s string, mod int64) int64 {
	if mod <= 0 {
		return 0
	}
	sum := sha256.Sum256([]byte(s))
	n := new(big.Int).SetBytes(sum[:])
	return n.Mod(n, big.NewInt(mod)).Int64()
}
