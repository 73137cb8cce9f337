package logger

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint identifies a secret in logs without revealing it: the first
// 8 hex digits of its sha256, or "" for an empty secret
func Fingerprint(secret string) string {
	if secret == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:4])
}
