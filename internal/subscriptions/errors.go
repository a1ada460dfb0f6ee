package subscriptions

import (
	"errors"

	"github.com/dmitrymomot/newsletter/handler"
)

var (
	ErrInvalidSubscriber   = errors.New("subscriptions.invalid_subscriber")
	ErrInvalidToken        = errors.New("subscriptions.invalid_token")
	ErrSubscriberConfirmed = errors.New("subscriptions.already_confirmed")
	ErrTokenNotFound       = errors.New("subscriptions.token_not_found")
	ErrStorage             = errors.New("subscriptions.storage_failed")
	ErrSendConfirmation    = errors.New("subscriptions.send_confirmation_failed")
)

// toHTTPError attaches the response status to a service error.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidSubscriber), errors.Is(err, ErrInvalidToken):
		return errors.Join(handler.ErrBadRequest, err)
	case errors.Is(err, ErrTokenNotFound):
		return errors.Join(handler.ErrUnauthorized, err)
	case errors.Is(err, ErrSubscriberConfirmed):
		return errors.Join(handler.ErrNotAcceptable, err)
	default:
		return errors.Join(handler.ErrInternalServerError, err)
	}
}
