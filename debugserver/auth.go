package debugserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issuer is the fixed JWT issuer claim used for every token this
// package signs or validates, matching server/token.go's use of a
// fixed "tqs" issuer for its own tokens.
const issuer = "groupers"

// AuthKey is a context key populated by requireAdmin.
type AuthKey int

// AuthLoggedIn is set to true in a request's context once requireAdmin
// has validated its bearer token.
const AuthLoggedIn AuthKey = iota

// authHandler is middleware that requires a valid admin bearer token,
// matching server/token.go's AuthHandler shape but without a user
// repository: there is exactly one admin identity, so validation only
// needs the Config's secret and hashed admin secret rather than a DB
// lookup.
type authHandler struct {
	signKey       []byte
	unauthedDelay time.Duration
	next          http.Handler
}

func (ah *authHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	tok, err := getJWT(req)
	if err == nil {
		err = validateToken(tok, ah.signKey)
	}
	if err != nil {
		time.Sleep(ah.unauthedDelay)
		writeJSONError(w, req, http.StatusUnauthorized, err.Error())
		return
	}

	ctx := context.WithValue(req.Context(), AuthLoggedIn, true)
	ah.next.ServeHTTP(w, req.WithContext(ctx))
}

// requireAdmin returns middleware that rejects any request without a
// valid admin bearer token, pausing unauthDelay before responding in
// the rejected case to deprioritize naive brute-force clients, the same
// anti-flood measure server/middle.RequireAuth applies.
func requireAdmin(signKey []byte, unauthDelay time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return &authHandler{signKey: signKey, unauthedDelay: unauthDelay, next: next}
	}
}

func getJWT(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))
	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	scheme := strings.TrimSpace(strings.ToLower(parts[0]))
	tok := strings.TrimSpace(parts[1])
	if scheme != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return tok, nil
}

func validateToken(tok string, signKey []byte) error {
	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		return signKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(issuer), jwt.WithLeeway(time.Minute))
	return err
}

// generateAdminToken signs a one-hour bearer token for the admin
// identity, matching server/token.go's generateJWT shape.
func generateAdminToken(signKey []byte) (string, error) {
	claims := &jwt.MapClaims{
		"iss":        issuer,
		"exp":        time.Now().Add(time.Hour).Unix(),
		"sub":        "admin",
		"authorized": true,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	tokStr, err := tok.SignedString(signKey)
	if err != nil {
		return "", err
	}
	return tokStr, nil
}

// adminSignKey composes the JWT signing/verification key from the
// configured token secret and the bcrypt hash of the admin secret, the
// same "secret plus a property of the identity being authenticated"
// composition server/token.go uses (there: secret + password hash +
// logout time) so that rotating the admin secret invalidates every
// previously issued token.
func adminSignKey(tokenSecret, hashedAdminSecret []byte) []byte {
	key := make([]byte, 0, len(tokenSecret)+len(hashedAdminSecret))
	key = append(key, tokenSecret...)
	key = append(key, hashedAdminSecret...)
	return key
}
