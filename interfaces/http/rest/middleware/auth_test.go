package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/pkg/common"
)

type stubIdentity struct {
	session *ports.Session
	err     error
	token   string
}

func (s *stubIdentity) GetSession(_ context.Context, token string) (*ports.Session, error) {
	s.token = token
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func (s *stubIdentity) GetIdentity(_ context.Context, _ string) (*ports.Identity, error) {
	return nil, errors.New("not implemented")
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

func allowAll() *stubLimiter { return &stubLimiter{allowed: true} }

func clientSession() *ports.Session {
	return &ports.Session{Token: "tok", IdentityID: "client_1", Role: ports.RoleClient}
}

func captureIdentity(captured *struct {
	id, role string
	called   bool
}) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.called = true
		captured.id, _ = common.GetIdentityID(r.Context())
		captured.role, _ = common.GetRole(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateStoresIdentity(t *testing.T) {
	identity := &stubIdentity{session: clientSession()}
	ip, user := allowAll(), allowAll()
	var captured struct {
		id, role string
		called   bool
	}

	handler := Authenticate(identity, ip, user, zap.NewNop())(captureIdentity(&captured))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, captured.called)
	assert.Equal(t, "client_1", captured.id)
	assert.Equal(t, "CLIENT", captured.role)
	assert.Equal(t, "tok", identity.token)
	assert.Equal(t, []string{"client_1"}, user.keys)
}

func TestAuthenticateMissingToken(t *testing.T) {
	handler := Authenticate(&stubIdentity{}, allowAll(), allowAll(), zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateInvalidSession(t *testing.T) {
	identity := &stubIdentity{err: errors.New("token expired")}
	handler := Authenticate(identity, allowAll(), allowAll(), zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer bad")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateCookieToken(t *testing.T) {
	identity := &stubIdentity{session: clientSession()}
	var captured struct {
		id, role string
		called   bool
	}
	handler := Authenticate(identity, allowAll(), allowAll(), zap.NewNop())(captureIdentity(&captured))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "auth_token", Value: "cookie_tok"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cookie_tok", identity.token)
}

func TestAuthenticateIPRateLimited(t *testing.T) {
	ip := &stubLimiter{allowed: false}
	identity := &stubIdentity{session: clientSession()}
	handler := Authenticate(identity, ip, allowAll(), zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer tok")
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, []string{"203.0.113.9"}, ip.keys)
	assert.Empty(t, identity.token)
}

func TestAuthenticateUserRateLimited(t *testing.T) {
	user := &stubLimiter{allowed: false}
	handler := Authenticate(&stubIdentity{session: clientSession()}, allowAll(), user, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAuthenticateLimiterErrorFailsOpen(t *testing.T) {
	ip := &stubLimiter{allowed: true, err: errors.New("store unavailable")}
	var captured struct {
		id, role string
		called   bool
	}
	handler := Authenticate(&stubIdentity{session: clientSession()}, ip, allowAll(), zap.NewNop())(captureIdentity(&captured))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, captured.called)
}

func TestRequireRoleAllows(t *testing.T) {
	var called bool
	handler := RequireRole(ports.RoleOps, ports.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(common.WithIdentity(r.Context(), "ops_1", string(ports.RoleOps)))
	handler.ServeHTTP(httptest.NewRecorder(), r)

	assert.True(t, called)
}

func TestRequireRoleForbids(t *testing.T) {
	handler := RequireRole(ports.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(common.WithIdentity(r.Context(), "client_1", string(ports.RoleClient)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleUnauthenticated(t *testing.T) {
	handler := RequireRole(ports.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler must not run")
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestLoggerRecordsOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := RequestLogger(zap.New(core))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	r := httptest.NewRequest(http.MethodDelete, "/api/v1/customers/projects/proj_1", nil)
	handler.ServeHTTP(httptest.NewRecorder(), r)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "DELETE", fields["method"])
	assert.Equal(t, "/api/v1/customers/projects/proj_1", fields["path"])
	assert.Equal(t, int64(http.StatusNoContent), fields["status"])
}
