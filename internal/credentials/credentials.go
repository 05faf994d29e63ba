// Package credentials implements password hashing/verification and the
// derivation of opaque tokens. Passwords use argon2id; opaque tokens are
// SHA-256 digests over the owner, the current time at nanosecond
// resolution, and fresh random bytes, so concurrent issuance cannot collide.
package credentials

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/moodlog/moodlog/internal/fault"
)

// Argon2id parameters: 3 passes, 64MB, 4 lanes, 32-byte key.
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// Hash creates an argon2id digest of the plaintext, encoded as
// $argon2id$v=19$m=65536,t=3,p=4$salt$hash.
func Hash(plain string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fault.Hashing("failed to generate salt", err)
	}

	digest := argon2.IDKey(
		[]byte(plain),
		salt,
		argon2Time,
		argon2Memory,
		argon2Threads,
		argon2KeyLen,
	)

	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(digest)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		encodedSalt,
		encodedHash,
	), nil
}

// Verify reports whether the plaintext matches the stored digest. A
// malformed digest verifies false; it never panics or errors on mismatch.
// The comparison is constant time.
func Verify(plain, encodedDigest string) bool {
	parts := strings.Split(encodedDigest, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false
	}
	var memory, passes uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &passes, &threads); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	stored, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	computed := argon2.IDKey(
		[]byte(plain),
		salt,
		passes,
		memory,
		threads,
		uint32(len(stored)),
	)

	return subtle.ConstantTimeCompare(stored, computed) == 1
}

// DeriveToken produces an opaque unique token bound to the owner. The seed
// mixes the owner name, a nanosecond timestamp and 32 random bytes, so two
// issuances in the same instant still differ.
func DeriveToken(owner string) (string, error) {
	entropy := make([]byte, 32)
	if _, err := rand.Read(entropy); err != nil {
		return "", fault.Hashing("failed to gather token entropy", err)
	}

	h := sha256.New()
	fmt.Fprintf(h, "%s:%d:", owner, time.Now().UnixNano())
	h.Write(entropy)

	return hex.EncodeToString(h.Sum(nil)), nil
}

// DigestEmail hashes an email address for storage at rest. Addresses are
// only ever compared for equality, so a plain SHA-256 digest suffices.
func DigestEmail(address string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(address))))
	return hex.EncodeToString(sum[:])
}
