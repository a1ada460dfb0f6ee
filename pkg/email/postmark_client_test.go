package email_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/newsletter/pkg/email"
)

func params() email.SendEmailParams {
	return email.SendEmailParams{
		To:      "ursula@example.com",
		Subject: "Welcome!",
		HTML:    "<p>hello</p>",
		Text:    "hello",
	}
}

func newServer(t *testing.T, h http.HandlerFunc) email.EmailSender {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	sender, err := email.NewPostmarkClient(email.Config{
		BaseURL:     srv.URL + "/",
		ServerToken: "server-token",
		Sender:      "newsletter@example.com",
		Timeout:     200 * time.Millisecond,
	})
	require.NoError(t, err)
	return sender
}

func ok(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"To":"ursula@example.com","ErrorCode":0,"Message":"OK"}`))
}

func TestPostmarkClient_SendsExpectedRequest(t *testing.T) {
	t.Parallel()

	var (
		path, token string
		body        map[string]any
	)
	sender := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		token = r.Header.Get("X-Postmark-Server-Token")
		_ = json.NewDecoder(r.Body).Decode(&body)
		ok(w)
	})

	require.NoError(t, sender.SendEmail(context.Background(), params()))
	assert.Equal(t, "/email", path)
	assert.Equal(t, "server-token", token)
	assert.Equal(t, "newsletter@example.com", body["From"])
	assert.Equal(t, "ursula@example.com", body["To"])
	assert.Equal(t, "Welcome!", body["Subject"])
	assert.Equal(t, "<p>hello</p>", body["HtmlBody"])
	assert.Equal(t, "hello", body["TextBody"])
}

func TestPostmarkClient_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"unprocessable", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"ErrorCode":300,"Message":"Invalid email request"}`))
		}},
		{"api error code", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"ErrorCode":406,"Message":"Inactive recipient"}`))
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			ok(w)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sender := newServer(t, tt.handler)
			err := sender.SendEmail(context.Background(), params())
			assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
		})
	}
}

func TestPostmarkClient_InvalidParams(t *testing.T) {
	t.Parallel()

	called := false
	sender := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		ok(w)
	})

	p := params()
	p.To = ""
	assert.ErrorIs(t, sender.SendEmail(context.Background(), p), email.ErrInvalidParams)
	assert.False(t, called)
}

func TestNewPostmarkClient_InvalidConfig(t *testing.T) {
	t.Parallel()

	valid := email.Config{BaseURL: "http://localhost", ServerToken: "t", Sender: "a@example.com"}

	tests := []struct {
		name   string
		mutate func(*email.Config)
	}{
		{"no token", func(c *email.Config) { c.ServerToken = "" }},
		{"no base url", func(c *email.Config) { c.BaseURL = "" }},
		{"bad sender", func(c *email.Config) { c.Sender = "not-an-email" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			_, err := email.NewPostmarkClient(cfg)
			assert.ErrorIs(t, err, email.ErrInvalidConfig)
		})
	}
}
