package auth

import (
	"strings"
	"testing"
)

// =========================================================================
// HELPER
// =========================================================================

// newTestPasswordService returns a PasswordService with bcrypt cost 4.
// Cost 4 is the minimum allowed by the bcrypt library. This makes tests
// run in milliseconds instead of ~250ms each.
func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(4)
}

// =========================================================================
// Hash TESTS
// =========================================================================

func TestHash_ReturnsNonEmptyHash(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("my-secret-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "" {
		t.Error("Hash() returned empty string")
	}
}

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("password123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// bcrypt hashes always start with $2a$ or $2b$
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
}

func TestHash_SamePasswordProducesDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	// bcrypt generates a random salt each time, so two hashes for the
	// same password must differ — otherwise rainbow tables would work.
	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password (salt must be random)")
	}
}

func TestHash_AcceptsPasswordOver72Bytes(t *testing.T) {
	ps := newTestPasswordService()

	// bcrypt only reads the first 72 bytes. We truncate instead of
	// rejecting, so a long passphrase must hash without error.
	longPassword := strings.Repeat("a", 200)
	if _, err := ps.Hash(longPassword); err != nil {
		t.Fatalf("Hash() should accept a long password, got error: %v", err)
	}
}

// =========================================================================
// Verify TESTS
// =========================================================================

func TestVerify_CorrectPassword(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !ps.Verify("correct-horse-battery-staple", hash) {
		t.Error("Verify() = false for the correct password")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	ps := newTestPasswordService()

	hash, _ := ps.Hash("correct-password")

	if ps.Verify("wrong-password", hash) {
		t.Error("Verify() = true for the wrong password")
	}
}

func TestVerify_TruncationIsConsistent(t *testing.T) {
	ps := newTestPasswordService()

	// Two passwords that agree on the first 72 bytes are the same password
	// to bcrypt. Hashing one and verifying the other must succeed — that is
	// the consistency the shared truncation guarantees. A password that
	// DIFFERS within the first 72 bytes must still fail.
	base := strings.Repeat("x", 72)
	hash, err := ps.Hash(base + "tail-one")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !ps.Verify(base+"completely-different-tail", hash) {
		t.Error("Verify() = false for a password equal in the first 72 bytes")
	}
	if ps.Verify(strings.Repeat("y", 72)+"tail-one", hash) {
		t.Error("Verify() = true for a password differing within the first 72 bytes")
	}
}

func TestVerify_MalformedHashReturnsFalse(t *testing.T) {
	ps := newTestPasswordService()

	// Verify never errors or panics — garbage in the hash column is just a
	// failed login.
	for _, hash := range []string{"", "not-a-hash", "$2a$zz$broken"} {
		if ps.Verify("whatever", hash) {
			t.Errorf("Verify() = true for malformed hash %q", hash)
		}
	}
}

func TestVerify_LegacyPrefixHash(t *testing.T) {
	ps := newTestPasswordService()

	// Hashes imported from older systems carry the "$2y$" version marker.
	// The digest is identical to "$2a$" — verification must accept it.
	hash, err := ps.Hash("legacy-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	legacy := "$2y$" + hash[4:]

	if !ps.Verify("legacy-password", legacy) {
		t.Error("Verify() = false for a $2y$-prefixed hash of the correct password")
	}
	if ps.Verify("wrong-password", legacy) {
		t.Error("Verify() = true for a $2y$-prefixed hash with the wrong password")
	}
}
