package handler

import (
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"
)

type emptyResponse struct {
	status int
}

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty answers with status and no body.
func Empty(status int) Response {
	return emptyResponse{status: status}
}

type jsonResponse struct {
	status int
	v      any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	data, err := json.Marshal(j.v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(j.status)
	_, err = w.Write(data)
	return err
}

// JSON encodes v as the whole body with status 200.
func JSON(v any) Response {
	return jsonResponse{status: http.StatusOK, v: v}
}

type redirectResponse struct {
	url string
}

func (r redirectResponse) Render(w http.ResponseWriter, req *http.Request) error {
	http.Redirect(w, req, r.url, http.StatusSeeOther)
	return nil
}

// Redirect answers 303 See Other.
func Redirect(url string) Response {
	return redirectResponse{url: url}
}

type templResponse struct {
	status    int
	component templ.Component
}

func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(t.status)
	return t.component.Render(r.Context(), w)
}

// Templ renders c as an HTML page with status 200.
func Templ(c templ.Component) Response {
	return templResponse{status: http.StatusOK, component: c}
}

type errorResponse struct {
	err error
}

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error {
	return e.err
}

// Error hands err to the error handler through the render step.
func Error(err error) Response {
	return errorResponse{err: err}
}
