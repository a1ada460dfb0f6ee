package domain

import "errors"

var (
	ErrInvalidEmail          = errors.New("domain.invalid_email")
	ErrInvalidName           = errors.New("domain.invalid_name")
	ErrInvalidToken          = errors.New("domain.invalid_token")
	ErrInvalidValidationCode = errors.New("domain.invalid_validation_code")
	ErrInvalidRole           = errors.New("domain.invalid_role")
)
