package session

import "net/http"

// Middleware puts the request's session, if any, into the context.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := m.Get(r.Context(), r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		m.touch(w, s)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

// RequireAuth serves onAnonymous instead of next when the request has no authenticated session.
func (m *Manager) RequireAuth(onAnonymous http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := FromContext(r.Context())
			if !ok {
				var err error
				if s, err = m.Get(r.Context(), r); err != nil {
					onAnonymous.ServeHTTP(w, r)
					return
				}
			}
			if !s.IsAuthenticated() {
				onAnonymous.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}
