// Package cryptox hashes and verifies account passwords.
//
// Stored hashes are self-describing ("alg$params$hex") so the work factor can
// be raised without invalidating existing accounts. A bare hex digest is read
// as PBKDF2-SHA512 with DefaultIterations.
package cryptox

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fizisplayer/fplay/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

type Algorithm string

const (
	PBKDF2SHA512 Algorithm = "pbkdf2-sha512"
	Argon2id     Algorithm = "argon2id"
)

const (
	DefaultIterations = 310000
	pbkdf2KeyLen      = 128
	saltBytes         = 32

	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

var ErrMalformedHash = errors.New("malformed password hash")

// Hasher derives slow salted password hashes.
type Hasher struct {
	alg        Algorithm
	iterations int
}

// NewHasher validates the algorithm. iterations applies to PBKDF2 only;
// zero selects DefaultIterations.
func NewHasher(alg Algorithm, iterations int) (*Hasher, error) {
	switch alg {
	case PBKDF2SHA512, Argon2id:
	case "":
		alg = PBKDF2SHA512
	default:
		return nil, fmt.Errorf("unsupported password algorithm %q", alg)
	}
	if iterations < 0 {
		return nil, fmt.Errorf("iterations must be positive, got %d", iterations)
	}
	if iterations == 0 {
		iterations = DefaultIterations
	}
	return &Hasher{alg: alg, iterations: iterations}, nil
}

// Hash returns the encoded hash of password. An empty salt is replaced with a
// fresh random one, which is returned.
func (h *Hasher) Hash(password, salt string) (hash string, usedSalt string, err error) {
	if salt == "" {
		salt, err = common.MakeRandHexString(saltBytes)
		if err != nil {
			return "", "", fmt.Errorf("generate salt: %w", err)
		}
	}

	switch h.alg {
	case Argon2id:
		sum := argon2.IDKey([]byte(password), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
		params := fmt.Sprintf("t=%d,m=%d,p=%d", argonTime, argonMemory, argonThreads)
		return encode(Argon2id, params, sum), salt, nil
	default:
		sum := pbkdf2.Key([]byte(password), []byte(salt), h.iterations, pbkdf2KeyLen, sha512.New)
		return encode(PBKDF2SHA512, strconv.Itoa(h.iterations), sum), salt, nil
	}
}

// Verify recomputes the hash with the parameters recorded in stored and
// compares in constant time. Malformed input never verifies.
func (h *Hasher) Verify(password, stored, salt string) bool {
	alg, params, want, err := decode(stored)
	if err != nil {
		return false
	}

	var got []byte
	switch alg {
	case PBKDF2SHA512:
		iter, err := strconv.Atoi(params)
		if err != nil || iter <= 0 {
			return false
		}
		got = pbkdf2.Key([]byte(password), []byte(salt), iter, len(want), sha512.New)
	case Argon2id:
		var t, m uint32
		var p uint8
		if _, err := fmt.Sscanf(params, "t=%d,m=%d,p=%d", &t, &m, &p); err != nil {
			return false
		}
		got = argon2.IDKey([]byte(password), []byte(salt), t, m, p, uint32(len(want)))
	default:
		return false
	}

	return subtle.ConstantTimeCompare(got, want) == 1
}

func encode(alg Algorithm, params string, sum []byte) string {
	return string(alg) + "$" + params + "$" + hex.EncodeToString(sum)
}

func decode(stored string) (Algorithm, string, []byte, error) {
	parts := strings.Split(stored, "$")
	switch len(parts) {
	case 1:
		sum, err := hex.DecodeString(parts[0])
		if err != nil || len(sum) == 0 {
			return "", "", nil, ErrMalformedHash
		}
		return PBKDF2SHA512, strconv.Itoa(DefaultIterations), sum, nil
	case 3:
		sum, err := hex.DecodeString(parts[2])
		if err != nil || len(sum) == 0 {
			return "", "", nil, ErrMalformedHash
		}
		return Algorithm(parts[0]), parts[1], sum, nil
	}
	return "", "", nil, ErrMalformedHash
}
