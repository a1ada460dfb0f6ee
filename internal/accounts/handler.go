package accounts

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/newsletter/binder"
	"github.com/dmitrymomot/newsletter/handler"
	"github.com/dmitrymomot/newsletter/internal/views"
	"github.com/dmitrymomot/newsletter/pkg/logger"
)

const (
	msgAuthFailed       = "Authentication failed"
	msgLoggedOut        = "You have successfully logged out."
	msgPasswordMismatch = "You entered two different new passwords - the field values must match."
	msgPasswordLength   = "New password must contain at least 8 and up to 64 characters."
	msgWrongPassword    = "The current password is incorrect."
	msgPasswordChanged  = "Your password has been changed."
)

type loginRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

type changePasswordRequest struct {
	CurrentPassword  string `form:"current_password"`
	NewPassword      string `form:"new_password"`
	NewPasswordCheck string `form:"new_password_check"`
}

// LoginHandler serves GET and POST /, meant to be mounted at /login.
func (s *Service) LoginHandler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", handler.Wrap(s.loginForm,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Post("/", handler.Wrap(s.login,
		handler.WithBinders[handler.Context, loginRequest](binder.Form()),
		handler.WithErrorHandler[handler.Context, loginRequest](s.errorHandler),
	))
	return r
}

// AdminRoutes registers the account pages on an authenticated /admin router.
func (s *Service) AdminRoutes(r chi.Router) {
	r.Get("/dashboard", handler.Wrap(s.dashboard,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Get("/password", handler.Wrap(s.passwordForm,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	r.Post("/password", handler.Wrap(s.changePassword,
		handler.WithBinders[handler.Context, changePasswordRequest](binder.Form()),
		handler.WithErrorHandler[handler.Context, changePasswordRequest](s.errorHandler),
	))
	r.Post("/logout", handler.Wrap(s.logout,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
}

func (s *Service) loginForm(ctx handler.Context, _ struct{}) handler.Response {
	return handler.Templ(s.views.Login(s.flash.Pop(ctx.ResponseWriter(), ctx.Request())))
}

func (s *Service) login(ctx handler.Context, req loginRequest) handler.Response {
	u, err := s.ValidateCredentials(ctx, req.Username, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		s.log.WarnContext(ctx, "login rejected",
			logger.Event("account.login_failed"),
			logger.Component("accounts"),
		)
		s.flash.Error(ctx.ResponseWriter(), msgAuthFailed)
		return handler.Redirect("/login")
	}
	if err != nil {
		return handler.Error(err)
	}

	if _, err := s.sessions.Authenticate(ctx, ctx.ResponseWriter(), ctx.Request(), u.ID, string(u.Role)); err != nil {
		return handler.Error(errors.Join(ErrSession, err))
	}

	s.log.InfoContext(ctx, "user logged in",
		logger.UserID(u.ID),
		logger.Role(u.Role),
		logger.Event("account.login"),
		logger.Component("accounts"),
	)
	return handler.Redirect("/admin/dashboard")
}

func (s *Service) dashboard(ctx handler.Context, _ struct{}) handler.Response {
	p, ok := CurrentPrincipal(ctx)
	if !ok {
		return handler.Redirect("/login")
	}
	u, err := s.store.UserByID(ctx, p.UserID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.Templ(s.views.Dashboard(views.DashboardParams{
		Username: u.Username,
		IsAdmin:  p.IsAdmin(),
	}))
}

func (s *Service) passwordForm(ctx handler.Context, _ struct{}) handler.Response {
	return handler.Templ(s.views.ChangePassword(s.flash.Pop(ctx.ResponseWriter(), ctx.Request())))
}

func (s *Service) changePassword(ctx handler.Context, req changePasswordRequest) handler.Response {
	p, ok := CurrentPrincipal(ctx)
	if !ok {
		return handler.Redirect("/login")
	}

	w := ctx.ResponseWriter()
	err := s.ChangePassword(ctx, p.UserID, req.CurrentPassword, req.NewPassword, req.NewPasswordCheck)
	switch {
	case err == nil:
		s.flash.Info(w, msgPasswordChanged)
	case errors.Is(err, ErrPasswordMismatch):
		s.flash.Error(w, msgPasswordMismatch)
	case errors.Is(err, ErrPasswordLength):
		s.flash.Error(w, msgPasswordLength)
	case errors.Is(err, ErrInvalidCredentials):
		s.flash.Error(w, msgWrongPassword)
	default:
		return handler.Error(err)
	}
	return handler.Redirect("/admin/password")
}

func (s *Service) logout(ctx handler.Context, _ struct{}) handler.Response {
	if err := s.sessions.Destroy(ctx, ctx.ResponseWriter(), ctx.Request()); err != nil {
		return handler.Error(errors.Join(ErrSession, err))
	}
	s.flash.Info(ctx.ResponseWriter(), msgLoggedOut)
	return handler.Redirect("/login")
}
