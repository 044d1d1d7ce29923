package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/lordvidex/errs"
	"github.com/lordvidex/x/auth"

	"github.com/kodekulture/tokenlink/login"
)

const (
	authHeaderKey = "Authorization"

	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
	corsAllowMethods = "GET, OPTIONS"

	msgUnauthenticated = "user is unauthenticated"
)

type contextKey struct {
	name string
}

// private vars
var (
	identityKey = &contextKey{"identity"}
)

// Errors
var (
	ErrUnauthenticated = errs.B().Code(errs.Unauthenticated).Msg(msgUnauthenticated).Err()
)

// Identity returns the identity injected by the session middleware.
func Identity(ctx context.Context) *login.Identity {
	v, _ := ctx.Value(identityKey).(*login.Identity)
	return v
}

// corsMiddleware sets the cross-origin headers browsers need to call the validate endpoint.
func (h *Handler) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("Access-Control-Allow-Origin", h.cfg.CORSOrigin)
		headers.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		headers.Set("Access-Control-Allow-Methods", corsAllowMethods)
		next.ServeHTTP(w, r)
	})
}

// issuerMiddleware only lets callers presenting the issuer key through.
// It is a no-op when no key hash is configured.
func (h *Handler) issuerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.cfg.IssuerKeyHash == "" {
			next.ServeHTTP(w, r)
			return
		}
		key, err := decodeHeader(r.Header.Get(authHeaderKey))
		if err == nil && key != "" {
			err = h.hasher.Compare(h.cfg.IssuerKeyHash, key)
		} else if err == nil {
			err = ErrUnauthenticated
		}
		if err != nil {
			issueCounter.WithLabelValues("unauthorized").Inc()
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// sessionMiddleware extracts the session token from the session cookie or
// the authorization header, validates it, and returns a new context that
// contains the identity.
//
// The injected identity can be gotten with the function Identity.
func (h *Handler) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var raw string
		if ck, err := r.Cookie(sessionCookieKey); err == nil {
			raw = ck.Value
		} else if raw, err = decodeHeader(r.Header.Get(authHeaderKey)); err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msgUnauthenticated})
			return
		}
		if raw == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msgUnauthenticated})
			return
		}
		id, err := h.token.Validate(ctx, auth.Token(raw))
		if err != nil {
			if ck, err := r.Cookie(sessionCookieKey); err == nil {
				deleteCookie(w, ck)
			}
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msgUnauthenticated})
			return
		}
		// replace the request context
		ctx = context.WithValue(ctx, identityKey, &id)
		r = r.WithContext(ctx)

		// pass to the next handler
		next.ServeHTTP(w, r)
	})
}

func decodeHeader(auth string) (string, error) {
	spl := strings.Split(auth, " ")
	switch len(spl) {
	case 1:
		return spl[0], nil
	case 2:
		if strings.ToLower(spl[0]) != "bearer" {
			return "", ErrUnauthenticated
		}
		return spl[1], nil
	default:
		return "", ErrUnauthenticated
	}
}
