package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// publicTokenBytes gives 256 bits of entropy per capability token
const publicTokenBytes = 32

// NewPublicToken generates an unguessable capability token for customer-facing
// quote and invoice links. The token grants read (and for quotes, accept)
// access only; it never authorizes any other write.
func NewPublicToken() (string, error) {
	buf := make([]byte, publicTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate public token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
