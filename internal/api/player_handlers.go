package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/pf-casino-engine/internal/casino"
	"github.com/MJE43/pf-casino-engine/internal/store"
	"github.com/shopspring/decimal"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.players.PlayerProfile(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleWagers(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultListLimit, maxListLimit)
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, "limit", err.Error())
		return
	}
	playerID := chi.URLParam(r, "playerID")
	list, err := s.players.Wagers(r.Context(), playerID, limit)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if list == nil {
		list = []casino.Wager{}
	}
	s.writeJSON(w, http.StatusOK, WagersResponse{PlayerID: playerID, Wagers: list})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10, maxListLimit)
	if err != nil {
		s.errorHandler.HandleValidationError(w, r, "limit", err.Error())
		return
	}
	entries, err := s.players.Leaderboard(r.Context(), limit)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if entries == nil {
		entries = []store.LeaderboardEntry{}
	}
	s.writeJSON(w, http.StatusOK, LeaderboardResponse{Entries: entries})
}

func (s *Server) handleClientSeed(w http.ResponseWriter, r *http.Request) {
	var req ClientSeedRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	playerID := chi.URLParam(r, "playerID")
	st, err := s.casino.SetClientSeed(r.Context(), playerID, req.ClientSeed)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.securityLogger.LogAuditEvent(middleware.GetReqID(r.Context()), "set_client_seed", playerID, "success",
		map[string]any{"client_seed": st.ClientSeed})
	s.writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleCredit(w http.ResponseWriter, r *http.Request) {
	s.adjustBalance(w, r, "credit", s.players.Credit)
}

func (s *Server) handleDebit(w http.ResponseWriter, r *http.Request) {
	s.adjustBalance(w, r, "debit", s.players.Debit)
}

// adjustBalance applies an admin ledger change and answers with the new
// balance.
func (s *Server) adjustBalance(w http.ResponseWriter, r *http.Request, action string, apply func(ctx context.Context, playerID string, amount decimal.Decimal) error) {
	var req AmountRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if !req.Amount.IsPositive() {
		s.errorHandler.HandleValidationError(w, r, "amount", "amount must be positive")
		return
	}
	playerID := chi.URLParam(r, "playerID")
	requestID := middleware.GetReqID(r.Context())
	if err := apply(r.Context(), playerID, req.Amount); err != nil {
		if errors.Is(err, casino.ErrInsufficientFunds) {
			s.securityLogger.LogAuditEvent(requestID, action, playerID, "rejected", map[string]any{"amount": req.Amount.String()})
		}
		s.errorHandler.HandleError(w, r, err)
		return
	}
	bal, err := s.players.Balance(r.Context(), playerID)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.securityLogger.LogAuditEvent(requestID, action, playerID, "success",
		map[string]any{"amount": req.Amount.String(), "balance": bal.String()})
	s.writeJSON(w, http.StatusOK, BalanceResponse{PlayerID: playerID, Balance: bal})
}
