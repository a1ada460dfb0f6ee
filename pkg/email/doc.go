// Package email sends transactional messages through Postmark.
//
// EmailSender is the only thing callers depend on. NewPostmarkClient talks to
// the Postmark HTTP API (or any server speaking it, selected by BaseURL) and
// treats every non-2xx answer as a failed delivery. NewDevSender writes each
// message to disk instead, which is handy when running locally:
//
//	var sender email.EmailSender
//	if cfg.DevDir != "" {
//		sender = email.NewDevSender(cfg.DevDir)
//	} else {
//		sender, err = email.NewPostmarkClient(cfg)
//	}
//
// Render turns a templ component into a string for HTML and text bodies.
package email
