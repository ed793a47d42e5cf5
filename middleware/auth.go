package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"sitedata/config"
	"sitedata/pkg/logger"
)

type contextKey string

const AdminEmailKey contextKey = "adminEmail"

// ErrUnauthorized covers every token failure: missing, malformed,
// expired, or belonging to a non-admin account.
var ErrUnauthorized = errors.New("unauthorized")

// TokenFromRequest pulls the identity token from the request. Query
// string first: the browser's WebSocket API cannot set custom headers,
// so tokens for those connections ride the URL.
func TokenFromRequest(r *http.Request) string {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		authHeader := r.Header.Get("Authorization")
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	}
	return tokenString
}

// VerifyAdminToken validates the JWT and checks the email claim against
// the configured admin allowlist. Returns the verified email.
func VerifyAdminToken(cfg *config.Config, tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("%w: no token provided", ErrUnauthorized)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure the signing method is HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		if cfg.JWTSecret == "" {
			logger.Sugar.Error("FATAL: SITE_JWT_SECRET is not set.")
			return nil, fmt.Errorf("server is not configured to validate JWTs")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: invalid or expired token", ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: could not parse token claims", ErrUnauthorized)
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", fmt.Errorf("%w: email claim is missing or invalid", ErrUnauthorized)
	}
	if cfg.AdminEmail == "" || !strings.EqualFold(email, cfg.AdminEmail) {
		return "", fmt.Errorf("%w: %s is not an admin account", ErrUnauthorized, email)
	}
	return email, nil
}

// Auth gates a handler behind the admin allowlist. The verified email is
// added to the request context for the next handler.
func Auth(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, err := VerifyAdminToken(cfg, TokenFromRequest(r))
			if err != nil {
				logger.Sugar.Warnf("Rejected request to %s: %v", r.URL.Path, err)
				http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), AdminEmailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
