package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
)

// authenticate validates the Bearer token in the request against the
// endpoint's shared secret. The comparison is constant time so token
// probing does not leak prefix matches.
func authenticate(r *http.Request, sharedSecret string) error {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return fmt.Errorf("missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return fmt.Errorf("invalid authorization header format")
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return fmt.Errorf("empty bearer token")
	}

	if subtle.ConstantTimeCompare([]byte(token), []byte(sharedSecret)) != 1 {
		return fmt.Errorf("invalid bearer token")
	}
	return nil
}
