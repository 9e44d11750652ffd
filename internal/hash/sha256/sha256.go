// Package sha256 provides SHA-256 hashing utilities.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Sum returns the hex SHA-256 digest of data.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// CanonicalJSON digests the canonical JSON serialization of v: compact,
// with object keys sorted at every level (encoding/json sorts map keys).
// Identical content therefore yields an identical digest regardless of the
// key order the source document used. Array order remains significant.
func CanonicalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("canonical marshal: %w", err)
	}
	return Sum(data), nil
}
