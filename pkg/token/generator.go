// Package token provides session token generation.
package token

import (
	"crypto/rand"
	"errors"
)

// Alphabet is the symbol set tokens are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultLength is the session token length in characters.
const DefaultLength = 15

// ErrInvalidLength is returned for non-positive lengths.
var ErrInvalidLength = errors.New("token: length must be positive")

// maxUnbiased is the largest multiple of len(Alphabet) that fits in a byte.
// Random bytes at or above it are discarded so that the modulo stays uniform.
const maxUnbiased = 256 - 256%len(Alphabet)

// Generate generates a session token of DefaultLength characters.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength generates a token of length characters drawn from Alphabet.
func GenerateWithLength(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}

	out := make([]byte, 0, length)
	// Oversample so a single read almost always suffices.
	buf := make([]byte, length+length/2+1)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}

// IsWellFormed reports whether s has DefaultLength characters, all from Alphabet.
func IsWellFormed(s string) bool {
	if len(s) != DefaultLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !inAlphabet(s[i]) {
			return false
		}
	}
	return true
}

func inAlphabet(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
