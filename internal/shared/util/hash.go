package util

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
)

// FileHash returns the hex SHA-1 of rs read from offset 0. The reader is
// rewound to 0 on success so it can be consumed again by the caller.
func FileHash(rs io.ReadSeeker) (string, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek start: %w", err)
	}
	h := sha1.New()
	if _, err := io.Copy(h, rs); err != nil {
		return "", fmt.Errorf("hash body: %w", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
