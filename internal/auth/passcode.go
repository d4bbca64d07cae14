package auth

// Optional per-role passcodes. Role selection is trusted when no
// passcode is configured; deployments that want an actual credential
// check upstream of the session store set argon2id hashes in config.

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // 64 MB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// HashPasscode derives an encoded argon2id hash for storing in config.
func HashPasscode(passcode string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(passcode), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPasscode checks passcode against an encoded hash. Comparison is
// constant time.
func VerifyPasscode(passcode string, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, fmt.Errorf("malformed passcode hash")
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, fmt.Errorf("malformed passcode hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("malformed passcode hash salt: %w", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("malformed passcode hash key: %w", err)
	}

	key := argon2.IDKey([]byte(passcode), salt, iterations, memory, parallelism, uint32(len(expected)))
	return hmac.Equal(key, expected), nil
}

// CheckPasscode validates a login attempt for role against the
// configured hash table. Roles without a configured hash pass.
func CheckPasscode(hashes map[string]string, role Role, passcode string) (bool, error) {
	encoded, ok := hashes[role.String()]
	if !ok || encoded == "" {
		return true, nil
	}
	return VerifyPasscode(passcode, encoded)
}
