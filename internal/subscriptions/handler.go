package subscriptions

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/newsletter/binder"
	"github.com/dmitrymomot/newsletter/handler"
)

type subscribeRequest struct {
	Email string `form:"email,required"`
	Name  string `form:"name,required"`
}

type confirmRequest struct {
	Token string `query:"subscription_token,required"`
}

// Handle mounts POST / and GET /confirm, meant to live under /subscriptions.
func (s *Service) Handle() http.Handler {
	r := chi.NewRouter()

	r.Post("/", handler.Wrap(s.subscribe,
		handler.WithBinders[handler.Context, subscribeRequest](binder.Form()),
		handler.WithErrorHandler[handler.Context, subscribeRequest](s.errorHandler),
	))
	r.Get("/confirm", handler.Wrap(s.confirm,
		handler.WithBinders[handler.Context, confirmRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, confirmRequest](s.errorHandler),
	))

	return r
}

func (s *Service) subscribe(ctx handler.Context, req subscribeRequest) handler.Response {
	if err := s.Subscribe(ctx, req.Email, req.Name); err != nil {
		return handler.Error(toHTTPError(err))
	}
	return handler.Empty(http.StatusOK)
}

func (s *Service) confirm(ctx handler.Context, req confirmRequest) handler.Response {
	if err := s.Confirm(ctx, req.Token); err != nil {
		return handler.Error(toHTTPError(err))
	}
	return handler.Empty(http.StatusOK)
}
