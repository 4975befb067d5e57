package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
	"github.com/humbertoamdc/torvek-sub000/pkg/auth"
	"github.com/humbertoamdc/torvek-sub000/pkg/common"
)

// Authenticate resolves the bearer token to a session through the identity
// manager and stores the caller's identity in the request context. IP rate
// limiting applies before token resolution, per-user limiting after. Limiter
// errors fail open.
func Authenticate(identity ports.IdentityManager, ipLimiter, userLimiter auth.RateLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := ipLimiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				logger.Warn("ip rate limiter error", zap.Error(err))
			}
			if !allowed {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			token := extractToken(r)
			if token == "" {
				common.RespondError(w, apperrors.NewUnauthorized("missing authentication token"))
				return
			}

			session, err := identity.GetSession(r.Context(), token)
			if err != nil {
				logger.Warn("session resolution failed",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				common.RespondError(w, apperrors.NewUnauthorized("invalid session"))
				return
			}

			allowed, err = userLimiter.Allow(r.Context(), session.IdentityID)
			if err != nil {
				logger.Warn("user rate limiter error", zap.Error(err))
			}
			if !allowed {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			ctx := common.WithIdentity(r.Context(), session.IdentityID, string(session.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated callers whose role is not in roles.
func RequireRole(roles ...ports.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := common.GetRole(r.Context())
			if !ok {
				common.RespondError(w, apperrors.NewUnauthorized(""))
				return
			}
			for _, required := range roles {
				if ports.Role(role) == required {
					next.ServeHTTP(w, r)
					return
				}
			}
			common.RespondError(w, apperrors.NewForbidden(""))
		})
	}
}

// extractToken pulls the session token from the Authorization header or the
// auth cookie.
func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return header
	}

	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// clientIP extracts the client IP address
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}
