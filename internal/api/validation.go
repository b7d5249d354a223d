package api

import (
	"fmt"
	"net/http"
	"strconv"
	"unicode"

	"github.com/go-chi/chi/v5"
)

const maxPlayerIDLen = 64

// ValidatePlayerID accepts printable ids without whitespace.
func ValidatePlayerID(id string) error {
	if id == "" {
		return fmt.Errorf("player id is required")
	}
	if len(id) > maxPlayerIDLen {
		return fmt.Errorf("player id too long (max %d)", maxPlayerIDLen)
	}
	for _, r := range id {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return fmt.Errorf("player id contains invalid character %q", r)
		}
	}
	return nil
}

// ValidateVerifyRequest validates a verify request
func ValidateVerifyRequest(req *VerifyRequest) error {
	if (req.SecretSeed == "") == (req.Epoch == nil) {
		return fmt.Errorf("exactly one of secret_seed or epoch is required")
	}
	if req.ClientSeed == "" {
		return fmt.Errorf("client seed is required")
	}
	if req.Max < req.Min {
		return fmt.Errorf("max (%d) must be >= min (%d)", req.Max, req.Min)
	}
	return nil
}

func (s *Server) playerIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := ValidatePlayerID(chi.URLParam(r, "playerID")); err != nil {
			s.errorHandler.HandleValidationError(w, r, "player_id", err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, key string, def, max int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}
	if n > max {
		n = max
	}
	return n, nil
}
