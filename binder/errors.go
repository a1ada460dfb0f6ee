package binder

import "errors"

var (
	ErrBinderNotApplicable  = errors.New("binder.not_applicable")
	ErrUnsupportedMediaType = errors.New("binder.unsupported_media_type")
	ErrInvalidForm          = errors.New("binder.invalid_form")
	ErrInvalidQuery         = errors.New("binder.invalid_query")
	ErrMissingField         = errors.New("binder.missing_field")
)
