// Package session keeps server-side login sessions in Redis.
//
// The browser only holds an opaque random token in a signed cookie. The
// Manager resolves the token to a Session through a Store, slides the idle
// expiry on activity and caps the total lifetime. Tokens are rotated on
// Authenticate so a token issued before login is never promoted.
//
//	mgr := session.New(session.NewRedisStore(rdb, cfg.KeyPrefix), cookies, cfg)
//	defer mgr.Close()
//
//	r.Use(mgr.Middleware)
//	r.With(mgr.RequireAuth(redirectToLogin)).Get("/admin/dashboard", h)
package session
