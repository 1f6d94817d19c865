package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/garnizeh/frota/internal/apperr"
	"github.com/garnizeh/frota/internal/auth"
	"github.com/garnizeh/frota/internal/policy"
	"github.com/garnizeh/frota/internal/tokenstore"
)

type ctxKey string

const CtxClaims ctxKey = "claims"

// package-level logger used by middleware and helpers; can be set via SetLogger from caller
var logger = zap.NewNop()

// SetLogger installs a logger for the api package. Passing nil is a no-op.
func SetLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic", zap.Any("err", err), zap.String("path", r.URL.Path))
				writeJSON(w, errorBody{Error: "Internal Server Error"}, http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// JWTAuthMiddleware validates the bearer token, rejects revoked tokens and
// stores the claims in the request context.
func JWTAuthMiddleware(tokens *auth.TokenManager, revoker tokenstore.Revoker) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, apperr.Unauthorized("missing Authorization header"))
				return
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			tokenString = strings.TrimSpace(tokenString)
			if !ok || tokenString == "" {
				writeError(w, apperr.Unauthorized("invalid Authorization header"))
				return
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil {
				logger.Debug("token rejected", zap.Error(err))
				writeError(w, err)
				return
			}

			if revoker != nil {
				revoked, err := revoker.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					logger.Error("revocation lookup failed", zap.Error(err))
					writeError(w, err)
					return
				}
				if revoked {
					writeError(w, apperr.Unauthorized("token has been revoked"))
					return
				}
			}

			ctx := context.WithValue(r.Context(), CtxClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFrom returns the claims stored by JWTAuthMiddleware.
func ClaimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(CtxClaims).(*auth.Claims)
	return c, ok && c != nil
}

func actorFrom(r *http.Request) policy.Actor {
	if c, ok := ClaimsFrom(r.Context()); ok {
		return c.Actor()
	}
	return policy.Actor{}
}

// RequirePermission rejects callers whose role may not perform action on
// resource.
func RequirePermission(resource policy.Resource, action policy.Action) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			c, ok := ClaimsFrom(r.Context())
			if !ok {
				writeError(w, apperr.Unauthorized("missing credentials"))
				return
			}
			if err := policy.Authorize(c.Actor(), resource, action); err != nil {
				logger.Info("permission denied",
					zap.String("account_id", c.Subject),
					zap.String("role", string(c.Role)),
					zap.String("resource", string(resource)),
					zap.String("action", string(action)),
				)
				writeError(w, err)
				return
			}
			next(w, r)
		}
	}
}
