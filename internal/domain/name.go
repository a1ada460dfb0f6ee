package domain

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

const maxNameGraphemes = 256

const forbiddenNameChars = `/()"<>\{}`

// Name is a subscriber's display name.
type Name struct {
	value string
}

// ParseName trims raw and limits it to 256 user-perceived characters. The
// count runs on the NFC form; the trimmed input is stored as submitted.
func ParseName(raw string) (Name, error) {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return Name{}, fmt.Errorf("%w: empty", ErrInvalidName)
	case uniseg.GraphemeClusterCount(norm.NFC.String(s)) > maxNameGraphemes:
		return Name{}, fmt.Errorf("%w: longer than %d characters", ErrInvalidName, maxNameGraphemes)
	case strings.ContainsAny(s, forbiddenNameChars):
		return Name{}, fmt.Errorf("%w: contains one of %s", ErrInvalidName, forbiddenNameChars)
	}
	return Name{value: s}, nil
}

func (n Name) String() string { return n.value }
