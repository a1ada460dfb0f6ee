package collaborators

import (
	"errors"

	"github.com/dmitrymomot/newsletter/handler"
	"github.com/dmitrymomot/newsletter/internal/accounts"
)

var (
	ErrNotAdmin           = errors.New("collaborators.not_admin")
	ErrInvalidEmail       = errors.New("collaborators.invalid_email")
	ErrInvalidToken       = errors.New("collaborators.invalid_token")
	ErrInvalidCode        = errors.New("collaborators.invalid_validation_code")
	ErrInvitationNotFound = errors.New("collaborators.invitation_not_found")
	ErrStorage            = errors.New("collaborators.storage_failed")
	ErrSendInvitation     = errors.New("collaborators.send_invitation_failed")
)

func toHTTPError(err error) error {
	var validation handler.ValidationError
	switch {
	case errors.As(err, &validation):
		return err
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrInvalidToken), errors.Is(err, ErrInvalidCode):
		return errors.Join(handler.ErrBadRequest, err)
	case errors.Is(err, ErrInvitationNotFound):
		return errors.Join(handler.ErrUnauthorized, err)
	case errors.Is(err, ErrNotAdmin):
		return errors.Join(handler.ErrMethodNotAllowed, err)
	case errors.Is(err, accounts.ErrUsernameTaken):
		return errors.Join(handler.ErrConflict, err)
	default:
		return errors.Join(handler.ErrInternalServerError, err)
	}
}
