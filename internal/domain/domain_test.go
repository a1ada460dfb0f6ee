package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsletter/internal/domain"
)

func TestParseEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"ursula_le_guin@gmail.com", "a.b+tag@sub.example.org", "x@y.io"}
	for _, raw := range valid {
		t.Run(raw, func(t *testing.T) {
			t.Parallel()
			e, err := domain.ParseEmail(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, e.String())
		})
	}

	invalid := []string{"", " ", "ursuladomain.com", "@domain.com", "ursula@", "ursula@localhost", "Ursula <u@x.com>", " u@x.com", "u@x.", "u@.com"}
	for _, raw := range invalid {
		t.Run("invalid "+raw, func(t *testing.T) {
			t.Parallel()
			_, err := domain.ParseEmail(raw)
			assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		})
	}
}

func TestParseName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"plain", "le guin", true},
		{"256 graphemes", strings.Repeat("ë", 256), true},
		{"256 decomposed graphemes", strings.Repeat("é", 256), true},
		{"257 graphemes", strings.Repeat("a", 257), false},
		{"whitespace only", "   ", false},
		{"empty", "", false},
	}
	for _, c := range `/()"<>\{}` {
		tests = append(tests, struct {
			name  string
			raw   string
			valid bool
		}{"forbidden " + string(c), "a" + string(c) + "b", false})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := domain.ParseName(tt.raw)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, domain.ErrInvalidName)
		})
	}
}

func TestParseName_Trims(t *testing.T) {
	t.Parallel()

	n, err := domain.ParseName("  le guin ")
	require.NoError(t, err)
	assert.Equal(t, "le guin", n.String())
}

func TestParseName_KeepsSubmittedForm(t *testing.T) {
	t.Parallel()

	decomposed := "Rene\u0301e"
	n, err := domain.ParseName(" " + decomposed + " ")
	require.NoError(t, err)
	assert.Equal(t, decomposed, n.String())
}

func TestParseToken(t *testing.T) {
	t.Parallel()

	ok := "da39a3ee5e6b4b0d3255bfef956018"
	tok, err := domain.ParseToken(ok)
	require.NoError(t, err)
	assert.Equal(t, ok, tok.String())

	for _, raw := range []string{"", strings.Repeat("a", 29), strings.Repeat("a", 31), strings.Repeat("a", 29) + "-", strings.Repeat(" ", 30), strings.Repeat("é", 15)} {
		_, err := domain.ParseToken(raw)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, raw)
	}
}

func TestNewToken(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for range 50 {
		tok, err := domain.NewToken()
		require.NoError(t, err)
		_, err = domain.ParseToken(tok.String())
		require.NoError(t, err)
		seen[tok.String()] = true
	}
	assert.Len(t, seen, 50)
}

func TestValidationCode(t *testing.T) {
	t.Parallel()

	c, err := domain.ParseValidationCode("152354")
	require.NoError(t, err)
	assert.Equal(t, "152354", c.String())

	for _, raw := range []string{"", "44444", "4444444", "$#d@11", "１２３４５６"} {
		_, err := domain.ParseValidationCode(raw)
		assert.ErrorIs(t, err, domain.ErrInvalidValidationCode, raw)
	}

	gen, err := domain.NewValidationCode()
	require.NoError(t, err)
	_, err = domain.ParseValidationCode(gen.String())
	assert.NoError(t, err)
}

func TestParseNewSubscriber(t *testing.T) {
	t.Parallel()

	s, err := domain.ParseNewSubscriber("ursula_le_guin@gmail.com", "le guin")
	require.NoError(t, err)
	assert.Equal(t, "ursula_le_guin@gmail.com", s.Email.String())
	assert.Equal(t, "le guin", s.Name.String())

	_, err = domain.ParseNewSubscriber("not-an-email", "")
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
	assert.ErrorIs(t, err, domain.ErrInvalidName)
}

func TestParseUserRole(t *testing.T) {
	t.Parallel()

	r, err := domain.ParseUserRole("admin")
	require.NoError(t, err)
	assert.True(t, r.IsAdmin())

	r, err = domain.ParseUserRole("collaborator")
	require.NoError(t, err)
	assert.False(t, r.IsAdmin())

	_, err = domain.ParseUserRole("root")
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}
