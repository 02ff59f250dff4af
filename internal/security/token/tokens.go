package token

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateOpaque genera un token opaco aleatorio (base64url sin padding).
// Reemplaza al generador tiempo+Math.random del sistema anterior: los códigos
// y refresh tokens no deben ser adivinables.
func GenerateOpaque(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateCode genera un authorization code de 32 bytes de entropía.
func GenerateCode() (string, error) { return GenerateOpaque(32) }

// GenerateRefreshToken genera un refresh token de 32 bytes de entropía.
func GenerateRefreshToken() (string, error) { return GenerateOpaque(32) }
