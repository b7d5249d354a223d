// Package api serves the casino over HTTP: seed audit, draw verification,
// game actions and a websocket stream of forfeitures.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/MJE43/pf-casino-engine/internal/casino"
	"github.com/MJE43/pf-casino-engine/internal/logging"
	"github.com/MJE43/pf-casino-engine/internal/seeds"
	"github.com/MJE43/pf-casino-engine/internal/store"
)

const (
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
)

// PlayerStore is the persistence the API reads player data from.
type PlayerStore interface {
	casino.Ledger
	PlayerProfile(ctx context.Context, playerID string) (store.Profile, error)
	Wagers(ctx context.Context, playerID string, limit int) ([]casino.Wager, error)
	Leaderboard(ctx context.Context, limit int) ([]store.LeaderboardEntry, error)
	Ping(ctx context.Context) error
}

// Deps are the collaborators of a Server. APIToken empty disables the
// admin routes.
type Deps struct {
	Casino   *casino.Service
	Seeds    *seeds.Store
	Players  PlayerStore
	Logger   *slog.Logger
	APIToken string
}

// Server handles HTTP requests
type Server struct {
	casino         *casino.Service
	seeds          *seeds.Store
	players        PlayerStore
	apiToken       string
	errorHandler   *ErrorHandler
	logger         *slog.Logger
	securityLogger *SecurityLogger
	upgrader       websocket.Upgrader
	startTime      time.Time
}

// NewServer creates a new API server
func NewServer(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api")
	security := NewSecurityLogger(logger)

	s := &Server{
		casino:         d.Casino,
		seeds:          d.Seeds,
		players:        d.Players,
		apiToken:       d.APIToken,
		errorHandler:   NewErrorHandler(logger, security),
		logger:         logger,
		securityLogger: security,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		startTime: time.Now(),
	}
	logger.Info("api server created",
		"version", EngineVersion,
		"admin_routes", s.apiToken != "",
	)
	return s
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RequestLogger)
	r.Use(s.errorHandler.RecoveryHandler)
	r.Use(s.CORS)

	r.Get("/health", s.handleHealthCheck)
	r.Get("/health/live", s.handleLiveness)

	r.Route("/api/v1", func(r chi.Router) {
		// Long-lived; outside the request timeout.
		r.Get("/events", s.handleEvents)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Get("/version", s.handleVersion)
			r.Get("/games", s.handleListGames)
			r.Get("/leaderboard", s.handleLeaderboard)

			r.Get("/seeds", s.handleSeedsBetween)
			r.Get("/seeds/current", s.handleCurrentSeed)
			r.Get("/seeds/{epoch}", s.handleSeedByEpoch)
			r.Post("/verify", s.handleVerify)

			r.Route("/players/{playerID}", func(r chi.Router) {
				r.Use(s.playerIDMiddleware)

				r.Get("/", s.handleProfile)
				r.Get("/session", s.handleSession)
				r.Get("/wagers", s.handleWagers)
				r.Put("/client-seed", s.handleClientSeed)

				r.Post("/blackjack", s.handleStartBlackjack)
				r.Post("/blackjack/hit", s.handleHit)
				r.Post("/blackjack/stand", s.handleStand)

				r.Post("/mines", s.handleStartMines)
				r.Post("/mines/reveal", s.handleReveal)
				r.Post("/mines/cashout", s.handleCashOut)

				r.Post("/roulette", s.handleStartRoulette)
				r.Post("/roulette/spin", s.handleSpin)

				r.Post("/coinflip", s.handleStartCoinflip)
				r.Post("/coinflip/flip", s.handleFlip)

				if s.apiToken != "" {
					r.With(s.RequireToken).Post("/credit", s.handleCredit)
					r.With(s.RequireToken).Post("/debit", s.handleDebit)
				}
			})
		})
	})

	return r
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", logging.Err(err))
	}
}

// decodeJSON reads a bounded JSON body into dst. It writes the validation
// error itself and reports whether decoding succeeded.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorHandler.HandleValidationError(w, r, "body", "invalid JSON: "+err.Error())
		return false
	}
	return true
}
