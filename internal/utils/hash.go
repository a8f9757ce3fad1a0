package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// resetTokenBytes is the entropy of a generated password-reset token.
const resetTokenBytes = 32

// SHA256Hex computes the SHA-256 digest of data and returns it hex-encoded.
//
// Used to derive the stored digest of a password-reset token: only the digest
// is persisted, so a database leak never exposes a redeemable token.
func SHA256Hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// GenerateRandomToken returns a high-entropy random token as a hex string.
// The caller is responsible for persisting only its SHA256Hex digest and
// delivering the plaintext out-of-band.
func GenerateRandomToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error generating random token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
