package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// authKey is a key in a request's context populated by requireAuth.
type authKey int

const authLoggedIn authKey = iota

const jwtIssuer = "taul-grammar-service"

// checkAdminPassword reports whether given matches the service's configured
// admin password, hashed with bcrypt the same way server.CreateUser hashes
// user passwords.
func checkAdminPassword(hash []byte, given string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(given)) == nil
}

// HashAdminPassword bcrypt-hashes the plaintext admin password from Config
// for use with New, the same way server.CreateUser hashes a user's password
// before it reaches storage.
func HashAdminPassword(plain string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
}

// signingKey derives the JWT signing key from the service secret and the
// admin password hash, so rotating the admin password (changing its bcrypt
// hash) invalidates every token issued under the old one — the same trick
// server/token.go uses by folding dao.User.Password into the sign key.
func signingKey(secret []byte, passwordHash []byte) []byte {
	key := append([]byte(nil), secret...)
	key = append(key, passwordHash...)
	return key
}

// issueToken returns a signed bearer token for the admin account, valid for
// ttl.
func issueToken(secret, passwordHash []byte, ttl time.Duration) (string, error) {
	claims := &jwt.MapClaims{
		"iss": jwtIssuer,
		"sub": "admin",
		"exp": time.Now().Add(ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return tok.SignedString(signingKey(secret, passwordHash))
}

func validateToken(tok string, secret, passwordHash []byte) error {
	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		return signingKey(secret, passwordHash), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(jwtIssuer), jwt.WithLeeway(time.Minute))
	return err
}

func getBearerToken(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))
	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	if strings.ToLower(strings.TrimSpace(parts[0])) != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return strings.TrimSpace(parts[1]), nil
}

// requireAuth is chi-compatible middleware gating write endpoints behind a
// valid bearer token, adapted from server/token.go's AuthHandler with the
// per-user lookup collapsed to the service's single admin account.
func (svc *Service) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		tok, err := getBearerToken(req)
		if err != nil {
			svc.unauthedDelay()
			Unauthorized("", err.Error()).WriteResponse(w)
			return
		}

		if err := validateToken(tok, svc.secret, svc.adminPasswordHash); err != nil {
			svc.unauthedDelay()
			Unauthorized("", "invalid or expired token: %v", err).WriteResponse(w)
			return
		}

		ctx := context.WithValue(req.Context(), authLoggedIn, true)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func (svc *Service) unauthedDelay() {
	if svc.UnauthDelay > 0 {
		time.Sleep(svc.UnauthDelay)
	}
}
