package pinhash

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"runtime"

	"github.com/dmitrijs2005/pinkeeper/internal/common"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultIterations   = 100_000
	DefaultSaltLength   = 16
	DefaultDigestLength = 32

	minSaltLength   = 8
	minDigestLength = 16
)

var encoding = base64.StdEncoding

// Params configures a Hasher.
type Params struct {
	// Iterations is the PBKDF2 iteration count.
	Iterations int
	// SaltLength is the number of random bytes in a fresh salt.
	SaltLength int
	// DigestLength is the number of derived bytes.
	DigestLength int
	// Concurrency caps the number of derivations running at once.
	// Zero means runtime.NumCPU().
	Concurrency int
}

// DefaultParams returns the production parameters.
func DefaultParams() Params {
	return Params{
		Iterations:   DefaultIterations,
		SaltLength:   DefaultSaltLength,
		DigestLength: DefaultDigestLength,
		Concurrency:  runtime.NumCPU(),
	}
}

// Hasher is safe for concurrent use.
type Hasher struct {
	params Params
	slots  *semaphore.Weighted
}

// New validates p and returns a Hasher.
func New(p Params) (*Hasher, error) {
	if p.Concurrency == 0 {
		p.Concurrency = runtime.NumCPU()
	}
	switch {
	case p.Iterations < 1:
		return nil, fmt.Errorf("%w: iterations must be positive, got %d", ErrInvalidParams, p.Iterations)
	case p.SaltLength < minSaltLength:
		return nil, fmt.Errorf("%w: salt length must be at least %d, got %d", ErrInvalidParams, minSaltLength, p.SaltLength)
	case p.DigestLength < minDigestLength:
		return nil, fmt.Errorf("%w: digest length must be at least %d, got %d", ErrInvalidParams, minDigestLength, p.DigestLength)
	case p.Concurrency < 1:
		return nil, fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidParams, p.Concurrency)
	}

	return &Hasher{params: p, slots: semaphore.NewWeighted(int64(p.Concurrency))}, nil
}

// Params returns the effective parameters.
func (h *Hasher) Params() Params { return h.params }

// ValidatePIN checks the PIN format contract: exactly four ASCII digits.
func ValidatePIN(pin string) error {
	if len(pin) != common.PINLength {
		return ErrInvalidPINFormat
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return ErrInvalidPINFormat
		}
	}
	return nil
}

// GenerateSalt returns SaltLength bytes from crypto/rand, base64-encoded.
func (h *Hasher) GenerateSalt() (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("reading random salt: %w", err)
	}
	return encoding.EncodeToString(salt), nil
}

// DeriveDigest computes the base64 digest of pin under salt. It is a pure
// function of its inputs and the Hasher's parameters.
func (h *Hasher) DeriveDigest(pin, salt string) (string, error) {
	key, err := h.derive(context.Background(), pin, salt)
	if err != nil {
		return "", err
	}
	return encoding.EncodeToString(key), nil
}

// Hash generates a fresh salt and derives the digest of pin under it.
// It is the building block of the "set PIN" flow.
func (h *Hasher) Hash(ctx context.Context, pin string) (digest, salt string, err error) {
	if err := ValidatePIN(pin); err != nil {
		return "", "", err
	}
	salt, err = h.GenerateSalt()
	if err != nil {
		return "", "", err
	}
	key, err := h.derive(ctx, pin, salt)
	if err != nil {
		return "", "", err
	}
	return encoding.EncodeToString(key), salt, nil
}

// Verify reports whether candidate matches storedDigest under storedSalt.
// The digests are compared in constant time. If ctx ends while waiting for
// or running the derivation, ctx.Err() is returned.
func (h *Hasher) Verify(ctx context.Context, candidate, storedDigest, storedSalt string) (bool, error) {
	if err := ValidatePIN(candidate); err != nil {
		return false, err
	}

	want, err := encoding.DecodeString(storedDigest)
	if err != nil || len(want) != h.params.DigestLength {
		return false, ErrMalformedDigest
	}

	got, err := h.derive(ctx, candidate, storedSalt)
	if err != nil {
		return false, err
	}
	defer common.WipeByteArray(got)

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

func (h *Hasher) derive(ctx context.Context, pin, salt string) ([]byte, error) {
	if err := ValidatePIN(pin); err != nil {
		return nil, err
	}
	rawSalt, err := encoding.DecodeString(salt)
	if err != nil || len(rawSalt) == 0 {
		return nil, ErrMalformedSalt
	}

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	result := make(chan []byte, 1)
	go func() {
		defer h.slots.Release(1)
		result <- pbkdf2.Key([]byte(pin), rawSalt, h.params.Iterations, h.params.DigestLength, sha256.New)
	}()

	select {
	case key := <-result:
		return key, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
