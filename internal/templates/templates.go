// Package templates renders transactional email bodies from embedded sources.
package templates

import (
	"context"
	"embed"
	"errors"
	htmltemplate "html/template"
	"io"
	"strings"
	texttemplate "text/template"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/newsletter/pkg/email"
)

//go:embed mail/*
var sources embed.FS

var ErrRender = errors.New("templates.render_failed")

// Message is one email body in both formats.
type Message struct {
	HTML string
	Text string
}

// Renderer owns the parsed templates. Build one at startup and share it.
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

func New() (*Renderer, error) {
	h, err := htmltemplate.ParseFS(sources, "mail/*.html")
	if err != nil {
		return nil, errors.Join(ErrRender, err)
	}
	t, err := texttemplate.ParseFS(sources, "mail/*.txt")
	if err != nil {
		return nil, errors.Join(ErrRender, err)
	}
	return &Renderer{html: h, text: t}, nil
}

func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

type linkData struct {
	Link string
}

// SubscriptionConfirmation renders the mail carrying the confirmation link.
func (r *Renderer) SubscriptionConfirmation(ctx context.Context, link string) (Message, error) {
	return r.render(ctx, "subscription_confirmation", linkData{Link: link})
}

// CollaboratorInvitation renders the mail carrying the registration link.
func (r *Renderer) CollaboratorInvitation(ctx context.Context, link string) (Message, error) {
	return r.render(ctx, "collaborator_invitation", linkData{Link: link})
}

// HTMLComponent exposes an HTML template as a templ component.
func (r *Renderer) HTMLComponent(name string, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return r.html.ExecuteTemplate(w, name+".html", data)
	})
}

func (r *Renderer) render(ctx context.Context, name string, data any) (Message, error) {
	html, err := email.Render(ctx, r.HTMLComponent(name, data))
	if err != nil {
		return Message{}, errors.Join(ErrRender, err)
	}

	var text strings.Builder
	if err := r.text.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return Message{}, errors.Join(ErrRender, err)
	}
	return Message{HTML: html, Text: strings.TrimSpace(text.String())}, nil
}
