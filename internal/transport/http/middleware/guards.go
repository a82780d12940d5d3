package middleware

import (
	"net/http"

	"hrms/internal/domain/auth"
	"hrms/internal/transport/http/api"
)

func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func RequireSuperAdmin(next http.Handler) http.Handler {
	return requireRole(next, func(user auth.UserContext) bool {
		return user.IsSuperAdmin()
	})
}

func RequireCompanyAdmin(next http.Handler) http.Handler {
	return requireRole(next, func(user auth.UserContext) bool {
		return user.IsCompanyAdmin()
	})
}

func requireRole(next http.Handler, allowed func(auth.UserContext) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		if !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		if !allowed(user) {
			api.Fail(w, http.StatusForbidden, "forbidden", "insufficient role", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}
