package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

const (
	saltBytes = 16
	keyLength = 64

	scryptN = 16384
	scryptR = 8
	scryptP = 1
)

// HashPassword returns "salt:key" where salt is 16 random bytes in hex and
// key is the hex scrypt derivation of password salted with that hex string.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltBytes)

	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "generate salt")
	}

	saltHex := hex.EncodeToString(salt)

	key, err := derive(password, saltHex)

	if err != nil {
		return "", err
	}

	return saltHex + ":" + hex.EncodeToString(key), nil
}

// VerifyPassword fails closed: a malformed stored hash never matches.
func VerifyPassword(password, storedHash string) bool {
	salt, keyHex, found := strings.Cut(storedHash, ":")

	if !found || salt == "" || keyHex == "" {
		return false
	}

	storedKey, err := hex.DecodeString(keyHex)

	if err != nil || len(storedKey) != keyLength {
		return false
	}

	key, err := derive(password, salt)

	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(key, storedKey) == 1
}

func derive(password, salt string) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, keyLength)

	if err != nil {
		return nil, errors.Wrap(err, "derive password key")
	}

	return key, nil
}
