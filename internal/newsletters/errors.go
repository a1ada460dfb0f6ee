package newsletters

import (
	"errors"

	"github.com/dmitrymomot/newsletter/handler"
	"github.com/dmitrymomot/newsletter/internal/idempotency"
)

var (
	ErrNotAdmin = errors.New("newsletters.not_admin")
	ErrDelivery = errors.New("newsletters.delivery_failed")
	ErrArchive  = errors.New("newsletters.archive_failed")
)

func toHTTPError(err error) error {
	var validation handler.ValidationError
	switch {
	case errors.As(err, &validation):
		return err
	case errors.Is(err, idempotency.ErrInvalidKey):
		return errors.Join(handler.ErrBadRequest, err)
	case errors.Is(err, ErrNotAdmin):
		return errors.Join(handler.ErrMethodNotAllowed, err)
	default:
		return errors.Join(handler.ErrInternalServerError, err)
	}
}
