// Package auth provides JWT token generation and validation for the API.
//
// WHY JWT?
// JWT (JSON Web Token) is stateless — the server doesn't need to store session
// data. All the information needed (userID, email, expiry) is inside the signed
// token. The signature ensures nobody can tamper with it without the secret key.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims (data) → {"sub":"userID","email":"...","exp":1234567890}
//	- Signature: HMAC(header+"."+payload, secretKey)
//
// The server can verify the signature without any DB lookup — just the secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the access token lifetime when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// Claims is the JWT payload. It embeds jwt.RegisteredClaims, which carries
// the standard fields (Subject, ExpiresAt, IssuedAt), and adds the account
// email so clients can display who is signed in without a profile fetch.
//
// Subject ("sub") holds the user's opaque ID — the standard claim for
// identifying who a token belongs to.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies signed access tokens.
//
// It holds the HMAC secret key used to sign and verify tokens, the signing
// algorithm, and the token lifetime. The same secret must be used for both
// operations — keep it safe, rotate it periodically in production.
type TokenService struct {
	secret []byte
	method *jwt.SigningMethodHMAC
	ttl    time.Duration
}

// NewTokenService creates a TokenService.
//
// The secret should be at least 32 bytes of random data in production
// (JWT_SECRET=$(openssl rand -hex 32)); we enforce a 16-character floor.
// algorithm selects the HMAC family member (HS256, HS384, HS512) — anything
// else is rejected at construction so an algorithm-confusion misconfiguration
// can't make it to runtime. A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenService(secret, algorithm string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}

	var method *jwt.SigningMethodHMAC
	switch algorithm {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("auth: unsupported signing algorithm %q", algorithm)
	}

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenService{secret: []byte(secret), method: method, ttl: ttl}, nil
}

// Generate creates and signs a new access token for the given user.
// The expiry is now + the configured TTL.
func (s *TokenService) Generate(userID, email string) (string, error) {
	return s.GenerateWithTTL(userID, email, s.ttl)
}

// GenerateWithTTL creates a token with an explicit lifetime.
// Used by tests to mint already-expired tokens.
func (s *TokenService) GenerateWithTTL(userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(s.method, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Decode parses and verifies a token string.
//
// Returns (claims, true) only for a structurally valid, correctly signed,
// unexpired token. EVERY validation failure — expired, malformed, signed
// with a different key, wrong algorithm — returns (nil, false) with no
// further detail: callers must not be able to distinguish why a token was
// rejected, and neither must their clients.
//
// ALGORITHM CONFUSION:
// jwt.WithValidMethods pins verification to the configured HMAC method, so
// a token claiming alg "none" (or an attacker-supplied RSA key) is rejected
// regardless of its contents.
func (s *TokenService) Decode(tokenStr string) (*Claims, bool) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, false
	}

	c, ok := token.Claims.(*Claims)
	if !ok {
		return nil, false
	}

	return c, true
}
