// Package middle contains middleware for use with the liposerver HTTP API.
package middle

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type mwFunc http.HandlerFunc

func (sf mwFunc) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	sf(w, req)
}

// Middleware is a function that takes a handler and returns a new handler
// which wraps the given one and provides some additional functionality.
type Middleware func(next http.Handler) http.Handler

const jwtIssuer = "liposerver"

// RequireBearerAuth returns middleware that rejects any request without a
// valid "Authorization: Bearer <token>" header signed with secret. There is
// no user store behind this check: a valid signature and an unexpired exp
// claim is the entire authorization model, since liposerver has exactly one
// admin identity.
func RequireBearerAuth(secret []byte, unauthDelay time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return mwFunc(func(w http.ResponseWriter, req *http.Request) {
			tok, err := bearerToken(req.Header.Get("Authorization"))
			if err == nil {
				_, err = jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
					return secret, nil
				}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(jwtIssuer), jwt.WithLeeway(time.Minute))
			}
			if err != nil {
				time.Sleep(unauthDelay)
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid bearer token")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func bearerToken(authHeader string) (string, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	scheme := strings.TrimSpace(strings.ToLower(parts[0]))
	if scheme != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return strings.TrimSpace(parts[1]), nil
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}

// DontPanic returns a Middleware that performs a panic check as it exits. If
// the wrapped handler panics, it writes a generic HTTP-500 instead of letting
// the panic reach the server's default recovery (which would close the
// connection) and logs the stack trace.
func DontPanic() Middleware {
	return func(next http.Handler) http.Handler {
		return mwFunc(func(w http.ResponseWriter, r *http.Request) {
			defer panicTo500(w, r)
			next.ServeHTTP(w, r)
		})
	}
}

func panicTo500(w http.ResponseWriter, req *http.Request) (panicVal interface{}) {
	if panicErr := recover(); panicErr != nil {
		writeJSONError(w, http.StatusInternalServerError, "an internal server error occurred")
		fmt.Printf("ERROR panic in %s %s: %v\nSTACK TRACE: %s\n", req.Method, req.URL.Path, panicErr, string(debug.Stack()))
		return true
	}
	return false
}
