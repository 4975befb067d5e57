package identity

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/humbertoamdc/torvek-sub000/application/ports"
	"github.com/humbertoamdc/torvek-sub000/pkg/apperrors"
)

// sessionCacheTTL bounds how long a validated session is served from cache.
// Shorter than any token lifetime, so revocation lag stays small.
const sessionCacheTTL = 5 * time.Minute

// Claims is the JWT payload the portals issue at login.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWTIdentityManager implements ports.IdentityManager by validating HS256
// session tokens locally. No identity-provider round trip on the hot path;
// GetIdentity decodes the same token-backed session store.
type JWTIdentityManager struct {
	secret []byte
	issuer string
	cache  ports.Cache
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.IdentityManager = (*JWTIdentityManager)(nil)

func NewJWTIdentityManager(secret, issuer string, cache ports.Cache, logger *zap.Logger) *JWTIdentityManager {
	return &JWTIdentityManager{
		secret: []byte(secret),
		issuer: issuer,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

func (m *JWTIdentityManager) GetSession(ctx context.Context, token string) (*ports.Session, error) {
	if token == "" {
		return nil, apperrors.NewUnauthorized("missing session token")
	}

	if cached, ok := m.cache.Get(ctx, "session:"+token); ok {
		if session, ok := cached.(*ports.Session); ok {
			return session, nil
		}
	}

	claims, err := m.parse(token)
	if err != nil {
		return nil, err
	}

	session := &ports.Session{
		Token:      token,
		IdentityID: claims.Subject,
		Role:       roleFromClaim(claims.Role),
		ExpiresAt:  claims.ExpiresAt.Time.UTC(),
	}
	m.cache.Set(ctx, "session:"+token, session, sessionCacheTTL)
	// The token carries the identity too; prime it so GetIdentity answers
	// without another parse.
	m.cache.Set(ctx, "identity:"+claims.Subject, &ports.Identity{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  roleFromClaim(claims.Role),
	}, sessionCacheTTL)
	return session, nil
}

func (m *JWTIdentityManager) GetIdentity(ctx context.Context, id string) (*ports.Identity, error) {
	if id == "" {
		return nil, apperrors.NewMissingParameter("identity id is required")
	}

	if cached, ok := m.cache.Get(ctx, "identity:"+id); ok {
		if identity, ok := cached.(*ports.Identity); ok {
			return identity, nil
		}
	}
	return nil, apperrors.NewNotFound("identity", id)
}

func (m *JWTIdentityManager) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.NewUnauthorized("unexpected signing method")
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		m.logger.Debug("session token rejected", zap.Error(err))
		return nil, apperrors.NewUnauthorized("invalid session token")
	}
	if claims.Subject == "" {
		return nil, apperrors.NewUnauthorized("token missing subject")
	}
	return claims, nil
}

func roleFromClaim(role string) ports.Role {
	switch ports.Role(role) {
	case ports.RoleAdmin:
		return ports.RoleAdmin
	case ports.RoleOps:
		return ports.RoleOps
	default:
		return ports.RoleClient
	}
}
