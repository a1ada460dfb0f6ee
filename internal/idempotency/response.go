package idempotency

import (
	"net/http"
)

type HeaderPair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Response is an HTTP response in a form that can be stored and replayed.
type Response struct {
	StatusCode int
	Headers    []HeaderPair
	Body       []byte
}

// SeeOther is a body-less 303 to location.
func SeeOther(location string) Response {
	return Response{
		StatusCode: http.StatusSeeOther,
		Headers:    []HeaderPair{{Name: "Location", Value: location}},
	}
}

// Render writes the response verbatim.
func (r Response) Render(w http.ResponseWriter, _ *http.Request) error {
	h := w.Header()
	for _, p := range r.Headers {
		h.Add(p.Name, p.Value)
	}
	w.WriteHeader(r.StatusCode)
	if len(r.Body) == 0 {
		return nil
	}
	_, err := w.Write(r.Body)
	return err
}
