package otp

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/xlzd/gotp"
)

const (
	DefaultLength = 6
	secretLength  = 20
	maxAttempts   = 32
)

var ErrGenerationFailed = errors.New("otp generation failed")

// Generator produces numeric one-time codes.
type Generator interface {
	Generate() (string, error)
}

// GOTPGenerator derives codes from HOTP values over a fresh random secret
// and counter.
// Values with a leading zero are rejected, so a code of length n is uniform
// over [10^(n-1), 10^n - 1].
type GOTPGenerator struct {
	length int
}

func NewGOTPGenerator(length int) *GOTPGenerator {
	if length <= 0 {
		length = DefaultLength
	}

	return &GOTPGenerator{length: length}
}

func (g *GOTPGenerator) Generate() (string, error) {
	for range maxAttempts {
		secret, counter, err := randomSeed()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
		}

		code := gotp.NewHOTP(secret, g.length, nil).At(counter)
		if len(code) != g.length {
			return "", fmt.Errorf("%w: unexpected code length %d", ErrGenerationFailed, len(code))
		}
		if code[0] != '0' {
			return code, nil
		}
	}

	return "", ErrGenerationFailed
}

func randomSeed() (string, int, error) {
	buf := make([]byte, secretLength+4)
	if _, err := rand.Read(buf); err != nil {
		return "", 0, err
	}

	secret := base32.StdEncoding.EncodeToString(buf[:secretLength])
	counter := int(binary.BigEndian.Uint32(buf[secretLength:]) >> 1)

	return secret, counter, nil
}
