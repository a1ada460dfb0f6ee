package newsletters

import (
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/newsletter/binder"
	"github.com/dmitrymomot/newsletter/handler"
	"github.com/dmitrymomot/newsletter/internal/accounts"
	"github.com/dmitrymomot/newsletter/internal/views"
)

const msgPublished = "The newsletter issue has been published!"

type publishRequest struct {
	Title          string `form:"title,required"`
	HTMLContent    string `form:"html_content,required"`
	TextContent    string `form:"text_content,required"`
	IdempotencyKey string `form:"idempotency_key,required"`
}

// AdminRoutes registers the publish form and action on an authenticated /admin router.
func (s *Service) AdminRoutes(r chi.Router) {
	r.Get("/newsletters", handler.Wrap(s.publishForm,
		handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler),
	))
	// Publish checks the role itself, after the key, so a malformed key is 400 for everyone.
	r.Post("/newsletters", handler.Wrap(s.publish,
		handler.WithBinders[handler.Context, publishRequest](binder.Form()),
		handler.WithErrorHandler[handler.Context, publishRequest](s.errorHandler),
	))
}

func (s *Service) publishForm(ctx handler.Context, _ struct{}) handler.Response {
	msgs := s.flash.Pop(ctx.ResponseWriter(), ctx.Request())
	return handler.Templ(s.views.PublishNewsletter(msgs, views.PublishParams{
		IdempotencyKey: uuid.NewString(),
	}))
}

func (s *Service) publish(ctx handler.Context, req publishRequest) handler.Response {
	publisher, _ := accounts.CurrentPrincipal(ctx)
	resp, err := s.Publish(ctx, publisher, req.IdempotencyKey, Issue{
		Title: req.Title,
		HTML:  req.HTMLContent,
		Text:  req.TextContent,
	})
	if err != nil {
		return handler.Error(toHTTPError(err))
	}
	s.flash.Info(ctx.ResponseWriter(), msgPublished)
	return resp
}
