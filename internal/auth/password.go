package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/scrypt"
)

const MinPasswordLength = 8

// Parameters of the primary "hex(salt):hex(key)" format. The hex salt string
// itself is the scrypt salt.
const (
	scryptN      = 16384
	scryptR      = 16
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

// HashPassword returns a hash in the primary format.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	key, err := scrypt.Key([]byte(password), []byte(saltHex), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}
	return saltHex + ":" + hex.EncodeToString(key), nil
}

// VerifyPassword checks password against hash. Hashes without ":" are legacy bcrypt hashes.
func VerifyPassword(hash, password string) (bool, error) {
	if !IsPrimaryHash(hash) {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("failed to verify legacy hash: %w", err)
		}
		return true, nil
	}

	saltHex, keyHex, _ := strings.Cut(hash, ":")
	want, err := hex.DecodeString(keyHex)
	if err != nil {
		return false, fmt.Errorf("malformed password hash: %w", err)
	}
	got, err := scrypt.Key([]byte(password), []byte(saltHex), scryptN, scryptR, scryptP, len(want))
	if err != nil {
		return false, fmt.Errorf("failed to derive key: %w", err)
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func IsPrimaryHash(hash string) bool {
	return strings.Contains(hash, ":")
}
