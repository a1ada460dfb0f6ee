package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/a-h/templ"
)

type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

type SendEmailParams struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"-"`
	Text    string `json:"-"`
	Tag     string `json:"tag,omitempty"`
}

// Validate requires a recipient, a subject and at least one body.
func (p SendEmailParams) Validate() error {
	switch {
	case strings.TrimSpace(p.To) == "":
		return fmt.Errorf("%w: recipient is required", ErrInvalidParams)
	case strings.TrimSpace(p.Subject) == "":
		return fmt.Errorf("%w: subject is required", ErrInvalidParams)
	case p.HTML == "" && p.Text == "":
		return fmt.Errorf("%w: html or text body is required", ErrInvalidParams)
	}
	return nil
}

// Render renders a templ component to a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}
