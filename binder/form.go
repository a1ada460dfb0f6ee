package binder

import (
	"fmt"
	"mime"
	"net/http"
)

const maxFormSize = 1 << 20

// Form binds application/x-www-form-urlencoded bodies. Requests without a body
// method are left to other binders.
func Form() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			return ErrBinderNotApplicable
		}

		mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || mediaType != "application/x-www-form-urlencoded" {
			return fmt.Errorf("%w: expected application/x-www-form-urlencoded", ErrUnsupportedMediaType)
		}

		r.Body = http.MaxBytesReader(nil, r.Body, maxFormSize)
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidForm, err)
		}
		return bindValues(v, "form", r.PostForm, ErrInvalidForm)
	}
}
