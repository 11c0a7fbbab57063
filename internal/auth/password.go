// Package auth — password hashing utilities.
//
// WHY BCRYPT?
// bcrypt is a password hashing function specifically designed to be slow.
// That slowness is a security feature: it makes brute-force attacks expensive.
//
// bcrypt automatically:
//   - Generates a random salt (so two users with the same password get different hashes)
//   - Embeds the salt in the output hash (no separate salt column needed)
//   - Controls the work factor via "cost" (higher = slower = harder to crack)
//
// NEVER store passwords in plain text or with fast hashes (MD5, SHA-256).
// bcrypt with cost 12 takes ~250ms — negligible for login, brutal for attackers.
//
// THE 72-BYTE LIMIT:
// bcrypt only looks at the first 72 bytes of its input. Rather than rejecting
// longer passwords, we truncate to 72 bytes on BOTH hash and verify, so the
// two sides always agree. Two passwords sharing the same first 72 bytes are
// the same password as far as bcrypt is concerned — that is inherent to the
// algorithm, and being consistent about it is what matters.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor (2^12 = 4096 rounds).
// Set cost so that hashing takes ~200-300ms on production hardware.
const defaultCost = 12

// bcryptMaxInput is bcrypt's input limit in bytes. Longer inputs are truncated.
const bcryptMaxInput = 72

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so that the cost can be injected
// in tests — using a lower cost (e.g. 4) makes tests run much faster
// without compromising the logic being tested.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost (12).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a custom (low)
// cost. Use bcrypt's minimum cost 4 in tests to avoid the ~250ms overhead
// of cost 12 per hashing operation. Do NOT use in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// truncate clips a plaintext to bcrypt's 72-byte input limit.
// Applied identically on hash and verify so truncation is consistent.
func truncate(plaintext string) []byte {
	b := []byte(plaintext)
	if len(b) > bcryptMaxInput {
		b = b[:bcryptMaxInput]
	}
	return b
}

// Hash hashes the given plaintext password with bcrypt.
//
// The output is a self-contained string like:
//
//	$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy
//
// Store this string directly in the database. It includes the salt and
// cost — verification knows how to decode it.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(truncate(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether a plaintext password matches a stored hash.
//
// It never returns an error: a malformed hash, an empty hash, or any other
// structural problem is a verification FAILURE, not a fault the caller has
// to handle. Login code can treat the bool as the whole answer.
//
// LEGACY ENCODING FALLBACK:
// Hashes imported from older systems may carry the "$2y$" bcrypt prefix
// (the PHP/passlib variant). If the library rejects that encoding
// structurally, we retry once with the prefix normalised to "$2a$" — the
// digest itself is identical across variants, only the version marker
// differs. On total failure the answer is simply false.
//
// TIMING SAFETY:
// bcrypt.CompareHashAndPassword uses a constant-time comparison internally,
// so an attacker can't tell from response time how close a guess was.
func (p *PasswordService) Verify(plaintext, hash string) bool {
	pw := truncate(plaintext)

	err := bcrypt.CompareHashAndPassword([]byte(hash), pw)
	if err == nil {
		return true
	}
	if err == bcrypt.ErrMismatchedHashAndPassword {
		return false
	}

	// Structural failure — try the legacy "$2y$" encoding once.
	if len(hash) >= 4 && hash[:4] == "$2y$" {
		legacy := "$2a$" + hash[4:]
		return bcrypt.CompareHashAndPassword([]byte(legacy), pw) == nil
	}

	return false
}
