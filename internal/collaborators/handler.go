package collaborators

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/newsletter/binder"
	"github.com/dmitrymomot/newsletter/handler"
	"github.com/dmitrymomot/newsletter/internal/accounts"
	"github.com/dmitrymomot/newsletter/internal/views"
)

const msgPasswordLength = "New password must contain at least 8 and up to 64 characters."

type inviteRequest struct {
	Email string `form:"email,required"`
}

type inviteResponse struct {
	ValidationCode string `json:"validation_code"`
}

type registrationFormRequest struct {
	Token string `query:"invitation_token,required"`
}

type registerRequest struct {
	Token    string `form:"invitation_token,required"`
	Code     string `form:"validation_code,required"`
	Username string `form:"username,required"`
	Password string `form:"password,required"`
}

// AdminRoutes registers POST /collaborator on an authenticated /admin router.
func (s *Service) AdminRoutes(r chi.Router) {
	r.Post("/collaborator", handler.Wrap(s.invite,
		handler.WithDecorators[handler.Context, inviteRequest](accounts.AdminOnly[inviteRequest]()),
		handler.WithBinders[handler.Context, inviteRequest](binder.Form()),
		handler.WithErrorHandler[handler.Context, inviteRequest](s.errorHandler),
	))
}

// PublicRoutes registers the invitee facing pages.
func (s *Service) PublicRoutes(r chi.Router) {
	r.Get("/collaborator", handler.Wrap(s.registrationForm,
		handler.WithBinders[handler.Context, registrationFormRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, registrationFormRequest](s.errorHandler),
	))
	r.Post("/collaborator/register", handler.Wrap(s.register,
		handler.WithBinders[handler.Context, registerRequest](binder.Form()),
		handler.WithErrorHandler[handler.Context, registerRequest](s.errorHandler),
	))
}

func (s *Service) invite(ctx handler.Context, req inviteRequest) handler.Response {
	inviter, _ := accounts.CurrentPrincipal(ctx)
	code, err := s.Invite(ctx, inviter, req.Email)
	if err != nil {
		return handler.Error(toHTTPError(err))
	}
	return handler.JSON(inviteResponse{ValidationCode: code.String()})
}

func (s *Service) registrationForm(ctx handler.Context, req registrationFormRequest) handler.Response {
	token, err := s.CheckInvitation(ctx, req.Token)
	if err != nil {
		return handler.Error(toHTTPError(err))
	}
	msgs := s.flash.Pop(ctx.ResponseWriter(), ctx.Request())
	return handler.Templ(s.views.CollaboratorRegistration(msgs, views.RegistrationParams{
		InvitationToken: token.String(),
	}))
}

func (s *Service) register(ctx handler.Context, req registerRequest) handler.Response {
	_, err := s.Register(ctx, Registration{
		Token:    req.Token,
		Code:     req.Code,
		Username: req.Username,
		Password: req.Password,
	})
	back := "/collaborator?invitation_token=" + url.QueryEscape(req.Token)

	switch {
	case err == nil:
		return handler.Empty(http.StatusOK)
	case errors.Is(err, accounts.ErrPasswordLength):
		s.flash.Error(ctx.ResponseWriter(), msgPasswordLength)
		return handler.Redirect(back)
	case errors.Is(err, accounts.ErrUsernameTaken):
		s.flash.Error(ctx.ResponseWriter(), fmt.Sprintf("Username %q is already in use.", req.Username))
		return handler.Redirect(back)
	default:
		return handler.Error(toHTTPError(err))
	}
}
