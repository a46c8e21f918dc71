package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const opaqueTokenBytes = 32

// generateOpaqueToken returns a random hex token for email verification and
// password reset links. 32 bytes gives 256 bits of entropy.
func generateOpaqueToken() (string, error) {
	buf := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
