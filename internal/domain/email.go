package domain

import (
	"fmt"
	"net/mail"
	"strings"
)

// Email is a bare addr-spec such as ursula@example.com.
type Email struct {
	value string
}

// ParseEmail accepts a bare address whose domain has at least one dot. Display
// names, angle brackets and surrounding whitespace are rejected, so String
// returns exactly the parsed input.
func ParseEmail(raw string) (Email, error) {
	if raw == "" || strings.TrimSpace(raw) != raw {
		return Email{}, fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}

	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Name != "" || addr.Address != raw {
		return Email{}, fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}

	at := strings.LastIndexByte(raw, '@')
	host := raw[at+1:]
	if !strings.Contains(host, ".") || strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return Email{}, fmt.Errorf("%w: %q", ErrInvalidEmail, raw)
	}

	return Email{value: raw}, nil
}

func (e Email) String() string { return e.value }
