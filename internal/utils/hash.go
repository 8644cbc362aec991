package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashEmail returns the lowercase hex SHA-256 digest of the lowercased
// input. Attribution providers expect this exact shape for matching.
// Empty input returns "" so the field can be omitted downstream.
func HashEmail(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ""
	}
	digest := sha256.Sum256([]byte(email))
	return hex.EncodeToString(digest[:])
}
