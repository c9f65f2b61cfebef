package main

import (
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/meetings/libs/auth"
	"github.com/md-rashed-zaman/meetings/libs/httpx"
	"github.com/md-rashed-zaman/meetings/services/meetings-service/internal/handlers"
)

type tokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// requireOwner resolves the calendar owner and hands it to the handlers as
// headers. Caller-supplied owner headers are always dropped. With auth
// disabled the owner comes from the id and username query parameters.
func requireOwner(verifier tokenVerifier, disabled bool) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Del(handlers.OwnerIDHeader)
			r.Header.Del(handlers.OwnerUsernameHeader)

			var id, username string
			if disabled {
				q := r.URL.Query()
				id, username = strings.TrimSpace(q.Get("id")), strings.TrimSpace(q.Get("username"))
				if id == "" {
					http.Error(w, "missing id query parameter", http.StatusUnauthorized)
					return
				}
			} else {
				token, ok := bearerToken(r)
				if !ok {
					http.Error(w, "missing or invalid Authorization header", http.StatusUnauthorized)
					return
				}
				claims, err := verifier.Verify(token)
				if err != nil {
					http.Error(w, "invalid token", http.StatusUnauthorized)
					return
				}
				id, username = claims.Sub, claims.Username
			}

			r.Header.Set(handlers.OwnerIDHeader, id)
			r.Header.Set(handlers.OwnerUsernameHeader, username)
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>". The scheme is case-insensitive.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
