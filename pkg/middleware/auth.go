package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"room-booking/internal/domain"
	"room-booking/pkg/utils"
)

// Claims carried by identity provider tokens. Subject is the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret []byte
	issuer string
	log    *zap.Logger
}

func NewAuthenticator(config utils.AuthConfig, log *zap.Logger) *Authenticator {
	return &Authenticator{
		secret: []byte(config.JWTSecret),
		issuer: config.Issuer,
		log:    log.With(zap.String("middleware", "auth")),
	}
}

// IssueToken signs a token for userID. Used by tooling and tests; production
// tokens come from the identity provider.
func (a *Authenticator) IssueToken(userID string, role domain.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse validates the token and resolves the actor it names.
func (a *Authenticator) Parse(tokenString string) (domain.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return domain.Actor{}, err
	}
	if !token.Valid {
		return domain.Actor{}, errors.New("invalid token")
	}
	if a.issuer != "" && !claims.VerifyIssuer(a.issuer, true) {
		return domain.Actor{}, errors.New("unexpected issuer")
	}
	if claims.Subject == "" {
		return domain.Actor{}, errors.New("missing subject")
	}

	role := domain.RoleCustomer
	if claims.Role == string(domain.RoleAdmin) {
		role = domain.RoleAdmin
	}
	return domain.Actor{UserID: claims.Subject, Role: role}, nil
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller in the request context.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.ResponseUnauthorized(w, "Missing authorization token")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
			return
		}

		actor, err := a.Parse(parts[1])
		if err != nil {
			a.log.Warn("Invalid token", zap.Error(err), zap.String("path", r.URL.Path))
			utils.ResponseUnauthorized(w, "Invalid or expired token")
			return
		}

		ctx := utils.SetActorContext(r.Context(), actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after RequireAuth.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := utils.GetActorFromContext(r.Context())
		if !ok {
			utils.ResponseUnauthorized(w, "Authentication required")
			return
		}
		if !actor.IsAdmin() {
			a.log.Warn("Non-admin access attempt",
				zap.String("user_id", actor.UserID),
				zap.String("path", r.URL.Path))
			utils.ResponseForbidden(w, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
