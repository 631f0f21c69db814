package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// Unreserved character set allowed in a PKCE code verifier (RFC 7636 §4.1).
const verifierCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

const verifierLength = 64

// newCodeVerifier generates a cryptographically random PKCE verifier.
func newCodeVerifier() (string, error) {
	raw := make([]byte, verifierLength)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	for i, b := range raw {
		raw[i] = verifierCharset[int(b)%len(verifierCharset)]
	}
	return string(raw), nil
}

// codeChallenge derives the S256 challenge for a verifier:
// base64url(sha256(verifier)) without padding.
func codeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
