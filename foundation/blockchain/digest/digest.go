// Package digest provides the hashing helpers used to derive shareable
// addresses, request nonces and block hashes.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// ZeroHash represents a hash code of zeros. It is recorded as the previous
// hash of the first block in a chain.
const ZeroHash string = "0000000000000000000000000000000000000000000000000000000000000000"

// Hash returns the lowercase hex encoded SHA-256 of the concatenation of
// the provided parts.
func Hash(parts ...string) string {
	h := sha256.New()
	for _, part := range parts {
		io.WriteString(h, part)
	}

	return hex.EncodeToString(h.Sum(nil))
}

// IsHash reports whether s has the shape of a value produced by Hash.
func IsHash(s string) bool {
	if len(s) != 2*sha256.Size {
		return false
	}

	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}

	return true
}
