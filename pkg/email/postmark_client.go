package email

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strings"

	"github.com/mrz1836/postmark"
)

type postmarkClient struct {
	client *postmark.Client
	sender string
}

// NewPostmarkClient returns a sender that posts to {BaseURL}/email with the server token header.
func NewPostmarkClient(cfg Config) (EmailSender, error) {
	if cfg.ServerToken == "" {
		return nil, fmt.Errorf("%w: server token is required", ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	}
	if _, err := mail.ParseAddress(cfg.Sender); err != nil {
		return nil, fmt.Errorf("%w: sender must be a valid email address", ErrInvalidConfig)
	}

	c := postmark.NewClient(cfg.ServerToken, "")
	c.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	c.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: statusCheck{next: http.DefaultTransport},
	}

	return &postmarkClient{client: c, sender: cfg.Sender}, nil
}

func MustNewPostmarkClient(cfg Config) EmailSender {
	c, err := NewPostmarkClient(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *postmarkClient) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	resp, err := c.client.SendEmail(ctx, postmark.Email{
		From:     c.sender,
		To:       params.To,
		Subject:  params.Subject,
		Tag:      params.Tag,
		HTMLBody: params.HTML,
		TextBody: params.Text,
	})
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrFailedToSendEmail, fmt.Errorf("postmark error %d: %s", resp.ErrorCode, resp.Message))
	}
	return nil
}

// statusCheck turns non-2xx responses into transport errors, so a
// 4xx or 5xx from the API is never mistaken for a delivery.
type statusCheck struct {
	next http.RoundTripper
}

func (s statusCheck) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := s.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}
