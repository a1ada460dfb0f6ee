// Package handler turns typed request handlers into http.HandlerFunc.
//
// A HandlerFunc receives a Context and a request value populated by the
// configured binders, and returns a Response. Failures anywhere in the chain
// (binding, the handler itself, rendering) go through one ErrorHandler, which
// maps HTTPError values to their status code and everything else to 500.
//
//	h := handler.Wrap(func(ctx handler.Context, req confirmRequest) handler.Response {
//		if err := svc.Confirm(ctx, req.Token); err != nil {
//			return handler.Error(err)
//		}
//		return handler.Empty(http.StatusOK)
//	}, handler.WithBinders[handler.Context, confirmRequest](binder.Query()))
package handler
