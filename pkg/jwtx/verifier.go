package jwtx

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// EdDSAVerifier validates JWTs signed with a single Ed25519 key.
type EdDSAVerifier struct {
	pub    ed25519.PublicKey
	issuer string

	// now is overridable for expiry tests.
	now func() time.Time
}

// NewVerifierEdDSA creates a verifier for the given public key and issuer.
func NewVerifierEdDSA(pub ed25519.PublicKey, issuer string) *EdDSAVerifier {
	return &EdDSAVerifier{pub: pub, issuer: issuer, now: time.Now}
}

// WithNow replaces the clock used for expiry checks. Tests only.
func (v *EdDSAVerifier) WithNow(now func() time.Time) *EdDSAVerifier {
	v.now = now
	return v
}

// Verify validates the JWT string and returns its parsed Claims. Expiry is
// validated separately from the signature so callers can distinguish
// ErrExpired from ErrInvalidSig, even though both surface to clients as a
// plain 401.
func (v *EdDSAVerifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.pub, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidSig, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidSig
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(v.now()); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}
