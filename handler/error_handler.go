package handler

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/newsletter/pkg/logger"
	"github.com/dmitrymomot/newsletter/pkg/requestid"
)

// NewErrorHandler logs the failure and answers with the status text. Client
// errors log at warn with the cause; server errors log at error and never
// leak the cause to the client.
func NewErrorHandler(log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}

	return func(ctx Context, err error) {
		r := ctx.Request()
		code := StatusCode(err)

		level := slog.LevelError
		if code < http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		log.LogAttrs(r.Context(), level, "request failed",
			logger.RequestID(requestid.FromContext(r.Context())),
			logger.Error(err),
			slog.Int("status_code", code),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("error_handler"),
		)

		http.Error(ctx.ResponseWriter(), http.StatusText(code), code)
	}
}
