package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer signs access-token claims into a compact JWT string.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
}

// EdDSASigner implements Signer using Ed25519.
type EdDSASigner struct {
	kid string
	key ed25519.PrivateKey
	pub ed25519.PublicKey
}

// NewEphemeralEdDSA generates a fresh Ed25519 keypair and returns a signer
// and matching verifier. Tokens signed by one process run cannot be verified
// by another; a restart invalidates all outstanding tokens, which is the
// accepted trade-off of the stateless token design.
func NewEphemeralEdDSA(kid, issuer string) (*EdDSASigner, *EdDSAVerifier, error) {
	pub, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("jwtx: generate Ed25519 key: %w", err)
	}

	signer := &EdDSASigner{kid: kid, key: key, pub: pub}
	verifier := NewVerifierEdDSA(pub, issuer)
	return signer, verifier, nil
}

func (s *EdDSASigner) Alg() string { return jwt.SigningMethodEdDSA.Alg() }
func (s *EdDSASigner) KID() string { return s.kid }

// Sign turns claims into a signed JWT string.
func (s *EdDSASigner) Sign(claims Claims) (string, error) {
	if s.key == nil {
		return "", errors.New("jwtx: nil Ed25519 key")
	}

	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// Public returns the verification key for this signer.
func (s *EdDSASigner) Public() ed25519.PublicKey { return s.pub }
