package apifake

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/jrsteele09/go-employee-console/token"
	"github.com/rs/zerolog/log"
)

type contextKey string

const contextKeyClaims contextKey = "claims"

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

func (a *API) middleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chained := []func(http.HandlerFunc) http.HandlerFunc{
		a.LoggingMiddleware,
		a.RecoverMiddleware,
	}
	return append(chained, mw...)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (a *API) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		log.Debug().
			Str("component", "apifake").
			Str("request_id", r.Header.Get("X-Request-ID")).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(started)).
			Msg("request")
	}
}

func (a *API) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Bytes("stack", debug.Stack()).Msg("handler panic")
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next(w, r)
	}
}

// RequireAuth validates the Bearer token. Tokens that were logged out are
// rejected even when their signature and expiry are still good.
func (a *API) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			raw, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || raw == "" {
				writeError(w, http.StatusUnauthorized, "Missing bearer token")
				return
			}
			if a.isRevoked(raw) {
				writeError(w, http.StatusUnauthorized, "Token has been revoked")
				return
			}
			claims, err := a.minter.Verify(raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), contextKeyClaims, claims)
			next(w, r.WithContext(ctx))
		}
	}
}

func claimsFrom(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(contextKeyClaims).(*token.Claims)
	return claims
}
