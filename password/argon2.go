package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	algorithmID = "argon2id"

	minMemoryKB   uint32 = 8 * 1024
	minSaltLength uint32 = 16
	minKeyLength  uint32 = 16
)

var (
	// ErrEmptySecret is returned when hashing an empty secret.
	ErrEmptySecret = errors.New("password: empty secret")
	// ErrMalformedHash is returned for strings that are not argon2id PHC hashes.
	ErrMalformedHash = errors.New("password: malformed hash")
	// ErrWeakParams is returned by NewHasher for parameters below the floor.
	ErrWeakParams = errors.New("password: parameters below minimum")
)

// Params are the Argon2id cost parameters.
type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams are sized for an interactive login on a small server.
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Time:        2,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// FastParams are the cheapest accepted parameters. Use them for seeded demo
// accounts and tests.
func FastParams() Params {
	return Params{
		Memory:      minMemoryKB,
		Time:        1,
		Parallelism: 1,
		SaltLength:  minSaltLength,
		KeyLength:   minKeyLength,
	}
}

// Hasher produces and checks PHC encoded Argon2id hashes.
type Hasher struct {
	params Params
	rand   io.Reader
}

// NewHasher validates p and returns a Hasher.
func NewHasher(p Params) (*Hasher, error) {
	switch {
	case p.Memory < minMemoryKB:
		return nil, fmt.Errorf("%w: memory %d KiB", ErrWeakParams, p.Memory)
	case p.Time < 1:
		return nil, fmt.Errorf("%w: time %d", ErrWeakParams, p.Time)
	case p.Parallelism < 1:
		return nil, fmt.Errorf("%w: parallelism %d", ErrWeakParams, p.Parallelism)
	case p.SaltLength < minSaltLength:
		return nil, fmt.Errorf("%w: salt length %d", ErrWeakParams, p.SaltLength)
	case p.KeyLength < minKeyLength:
		return nil, fmt.Errorf("%w: key length %d", ErrWeakParams, p.KeyLength)
	}
	return &Hasher{params: p, rand: rand.Reader}, nil
}

// Hash returns the PHC encoding of secret under a fresh salt.
func (h *Hasher) Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("password: read salt: %w", err)
	}
	key := argon2.IDKey([]byte(secret), salt, h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLength)
	return encode(h.params, salt, key), nil
}

// Verify reports whether secret matches encoded. The parameters embedded in
// encoded are used, not the Hasher's.
func (h *Hasher) Verify(secret, encoded string) (bool, error) {
	p, salt, key, err := decode(encoded)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(secret), salt, p.Time, p.Memory, p.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(got, key) == 1, nil
}

// Stale reports whether encoded was produced with cheaper parameters than
// the Hasher's.
func (h *Hasher) Stale(encoded string) (bool, error) {
	p, salt, key, err := decode(encoded)
	if err != nil {
		return false, err
	}
	return p.Memory < h.params.Memory ||
		p.Time < h.params.Time ||
		p.Parallelism < h.params.Parallelism ||
		uint32(len(salt)) < h.params.SaltLength ||
		uint32(len(key)) < h.params.KeyLength, nil
}

func encode(p Params, salt, key []byte) string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID, argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

func decode(encoded string) (Params, []byte, []byte, error) {
	var p Params
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return p, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: version %q", ErrMalformedHash, parts[2])
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("%w: params %q", ErrMalformedHash, parts[3])
	}
	if p.Memory < minMemoryKB || p.Time < 1 || p.Parallelism < 1 {
		return p, nil, nil, fmt.Errorf("%w: params %q", ErrMalformedHash, parts[3])
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || uint32(len(salt)) < minSaltLength {
		return p, nil, nil, fmt.Errorf("%w: salt", ErrMalformedHash)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, fmt.Errorf("%w: key", ErrMalformedHash)
	}
	return p, salt, key, nil
}
