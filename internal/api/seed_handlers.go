package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/pf-casino-engine/internal/engine"
	"github.com/MJE43/pf-casino-engine/internal/fair"
	"github.com/MJE43/pf-casino-engine/internal/seeds"
)

const (
	defaultSeedWindow = 24 * time.Hour
	maxSeedWindow     = 31 * 24 * time.Hour
)

func (s *Server) handleCurrentSeed(w http.ResponseWriter, r *http.Request) {
	cur := s.seeds.Current()
	if cur.IsZero() {
		s.errorHandler.HandleError(w, r, fair.ErrNoActiveSeed)
		return
	}
	s.writeJSON(w, http.StatusOK, SeedResponse{
		Seed:          cur.Public(),
		Disclosure:    string(s.seeds.Mode()),
		EngineVersion: EngineVersion,
	})
}

func (s *Server) handleSeedByEpoch(w http.ResponseWriter, r *http.Request) {
	epoch, err := strconv.ParseInt(chi.URLParam(r, "epoch"), 10, 64)
	if err != nil || epoch < 0 {
		s.errorHandler.HandleValidationError(w, r, "epoch", "epoch must be a non-negative integer")
		return
	}
	seed, err := s.seeds.SeedByEpoch(r.Context(), epoch)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SeedResponse{
		Seed:          seed,
		Disclosure:    string(s.seeds.Mode()),
		EngineVersion: EngineVersion,
	})
}

// handleSeedsBetween lists seeds posted in [from, to]. Both bounds are
// RFC 3339; the default window is the last 24 hours.
func (s *Server) handleSeedsBetween(w http.ResponseWriter, r *http.Request) {
	to := time.Now().UTC()
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			s.errorHandler.HandleValidationError(w, r, "to", "to must be RFC 3339")
			return
		}
		to = t
	}
	from := to.Add(-defaultSeedWindow)
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			s.errorHandler.HandleValidationError(w, r, "from", "from must be RFC 3339")
			return
		}
		from = t
	}
	if to.Before(from) {
		s.errorHandler.HandleValidationError(w, r, "from", "from must not be after to")
		return
	}
	if to.Sub(from) > maxSeedWindow {
		s.errorHandler.HandleValidationError(w, r, "from", fmt.Sprintf("window larger than %s", maxSeedWindow))
		return
	}

	list, err := s.seeds.SeedsBetween(r.Context(), from, to)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if list == nil {
		list = []seeds.Seed{}
	}
	s.writeJSON(w, http.StatusOK, SeedListResponse{Seeds: list, EngineVersion: EngineVersion})
}

// handleVerify recomputes a draw from a secret seed, or from a revealed
// epoch in the history.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := ValidateVerifyRequest(&req); err != nil {
		s.errorHandler.HandleValidationError(w, r, "request", err.Error())
		return
	}

	secret := req.SecretSeed
	if req.Epoch != nil {
		seed, err := s.seeds.SeedByEpoch(r.Context(), *req.Epoch)
		if err != nil {
			s.errorHandler.HandleError(w, r, err)
			return
		}
		if !seed.Revealed {
			s.errorHandler.HandleError(w, r, fmt.Errorf("epoch %d: %w", *req.Epoch, errSeedNotRevealed))
			return
		}
		secret = seed.SecretSeed
	}

	value := engine.FairInt(secret, req.ClientSeed, req.Nonce, req.Min, req.Max)
	s.securityLogger.LogVerifyOperation(middleware.GetReqID(r.Context()), secret, req.ClientSeed, req.Nonce, req.Min, req.Max, value)

	s.writeJSON(w, http.StatusOK, VerifyResponse{
		Value:         value,
		Digest:        engine.Digest(secret, req.ClientSeed, req.Nonce),
		PublicHash:    seeds.HashSeed(secret),
		EngineVersion: EngineVersion,
		Echo:          req,
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, GetVersionInfo())
}
