package credentials

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/dmitrijs2005/accessflow/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	argon2Prefix  = "argon2id"
	argon2SaltLen = 16
)

var errMalformedSealed = errors.New("malformed sealed password")

// Argon2 derives a key with argon2id and stores only its SHA-256 verifier,
// encoded as "argon2id$<salt>$<verifier>" in unpadded base64.
type Argon2 struct{}

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

func makeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

func (Argon2) Seal(password string) (string, error) {
	salt := common.GenerateRandByteArray(argon2SaltLen)

	key := deriveKey([]byte(password), salt)
	defer common.WipeByteArray(key)

	enc := base64.RawStdEncoding
	return strings.Join([]string{
		argon2Prefix,
		enc.EncodeToString(salt),
		enc.EncodeToString(makeVerifier(key)),
	}, "$"), nil
}

func (Argon2) Verify(sealed, candidate string) bool {
	salt, want, err := parseArgon2(sealed)
	if err != nil {
		return false
	}

	key := deriveKey([]byte(candidate), salt)
	defer common.WipeByteArray(key)

	return subtle.ConstantTimeCompare(makeVerifier(key), want) == 1
}

func parseArgon2(sealed string) (salt, verifier []byte, err error) {
	parts := strings.Split(sealed, "$")
	if len(parts) != 3 || parts[0] != argon2Prefix {
		return nil, nil, errMalformedSealed
	}

	enc := base64.RawStdEncoding
	if salt, err = enc.DecodeString(parts[1]); err != nil {
		return nil, nil, errMalformedSealed
	}
	if verifier, err = enc.DecodeString(parts[2]); err != nil {
		return nil, nil, errMalformedSealed
	}
	return salt, verifier, nil
}
