package tokens

import (
	"crypto/rand"
	"encoding/base64"
)

// StateBytes es la entropía del parámetro state anti-CSRF.
const StateBytes = 32

// GenerateOpaqueToken genera un token opaco aleatorio (base64url sin padding).
func GenerateOpaqueToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewState genera el state del flujo authorization-code.
func NewState() (string, error) { return GenerateOpaqueToken(StateBytes) }
