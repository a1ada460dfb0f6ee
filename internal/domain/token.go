package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const TokenLength = 30

const (
	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	digits       = "0123456789"
)

// Token is a 30 character alphanumeric secret used for subscription and invitation links.
type Token struct {
	value string
}

func ParseToken(raw string) (Token, error) {
	if len(raw) != TokenLength || !onlyFrom(raw, alphanumeric) {
		return Token{}, fmt.Errorf("%w: %q", ErrInvalidToken, raw)
	}
	return Token{value: raw}, nil
}

func (t Token) String() string { return t.value }

// NewToken draws a token from crypto/rand.
func NewToken() (Token, error) {
	s, err := randomString(TokenLength, alphanumeric)
	if err != nil {
		return Token{}, err
	}
	return Token{value: s}, nil
}

const ValidationCodeLength = 6

// ValidationCode is the six digit code that accompanies an invitation token.
type ValidationCode struct {
	value string
}

func ParseValidationCode(raw string) (ValidationCode, error) {
	if len(raw) != ValidationCodeLength || !onlyFrom(raw, digits) {
		return ValidationCode{}, fmt.Errorf("%w: %q", ErrInvalidValidationCode, raw)
	}
	return ValidationCode{value: raw}, nil
}

func (c ValidationCode) String() string { return c.value }

func NewValidationCode() (ValidationCode, error) {
	s, err := randomString(ValidationCodeLength, digits)
	if err != nil {
		return ValidationCode{}, err
	}
	return ValidationCode{value: s}, nil
}

func onlyFrom(s, alphabet string) bool {
	for i := range len(s) {
		found := false
		for j := range len(alphabet) {
			if s[i] == alphabet[j] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func randomString(n int, alphabet string) (string, error) {
	b := make([]byte, n)
	limit := big.NewInt(int64(len(alphabet)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate random string: %w", err)
		}
		b[i] = alphabet[idx.Int64()]
	}
	return string(b), nil
}
