// Package checksum fingerprints input documents.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// File returns the digest of the file at path.
func File(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("checksum: %w", err)
	}
	return Sum(data), nil
}
