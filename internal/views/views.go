// Package views renders the HTML pages as templ components.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/newsletter/pkg/flash"
)

//go:embed pages/*.html
var sources embed.FS

var pageNames = []string{"home", "login", "dashboard", "password", "newsletters", "collaborator"}

// Views holds one parsed template set per page, each sharing the layout.
type Views struct {
	pages map[string]*template.Template
}

func New() (*Views, error) {
	layout, err := template.ParseFS(sources, "pages/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	v := &Views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(sources, "pages/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

func MustNew() *Views {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

type page struct {
	Title string
	Flash []flash.Message
	Data  any
}

func (v *Views) render(name, title string, msgs []flash.Message, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		t, ok := v.pages[name]
		if !ok {
			return fmt.Errorf("unknown page %q", name)
		}
		return t.ExecuteTemplate(w, "layout", page{Title: title, Flash: msgs, Data: data})
	})
}

func (v *Views) Home() templ.Component {
	return v.render("home", "Home", nil, nil)
}

func (v *Views) Login(msgs []flash.Message) templ.Component {
	return v.render("login", "Login", msgs, nil)
}

type DashboardParams struct {
	Username string
	IsAdmin  bool
}

func (v *Views) Dashboard(p DashboardParams) templ.Component {
	return v.render("dashboard", "Admin dashboard", nil, p)
}

func (v *Views) ChangePassword(msgs []flash.Message) templ.Component {
	return v.render("password", "Change Password", msgs, nil)
}

type PublishParams struct {
	IdempotencyKey string
}

func (v *Views) PublishNewsletter(msgs []flash.Message, p PublishParams) templ.Component {
	return v.render("newsletters", "Publish a newsletter issue", msgs, p)
}

type RegistrationParams struct {
	InvitationToken string
}

func (v *Views) CollaboratorRegistration(msgs []flash.Message, p RegistrationParams) templ.Component {
	return v.render("collaborator", "Collaborator registration", msgs, p)
}
