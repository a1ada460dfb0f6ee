package accounts

import "errors"

var (
	ErrInvalidCredentials = errors.New("accounts.invalid_credentials")
	ErrUserNotFound       = errors.New("accounts.user_not_found")
	ErrUsernameTaken      = errors.New("accounts.username_taken")
	ErrPasswordLength     = errors.New("accounts.password_length")
	ErrPasswordMismatch   = errors.New("accounts.password_mismatch")
	ErrHashPassword       = errors.New("accounts.hash_password_failed")
	ErrMalformedHash      = errors.New("accounts.malformed_hash")
	ErrStorage            = errors.New("accounts.storage_failed")
	ErrSession            = errors.New("accounts.session_failed")
)
