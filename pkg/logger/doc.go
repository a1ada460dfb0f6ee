// Package logger builds *slog.Logger instances for the newsletter service.
//
// New assembles a text or JSON handler from functional options, then wraps it
// with LogHandlerDecorator, which copies request-scoped values (request id,
// authenticated user) from context.Context into every record.
//
// Attribute helpers in attr.go keep key names stable across packages:
//
//	log.WarnContext(ctx, "skipping confirmed subscriber",
//	    logger.SubscriberID(id),
//	    logger.Error(err),
//	)
package logger
