package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MJE43/pf-casino-engine/internal/games"
)

var gameDescriptions = map[games.Variant]string{
	games.VariantBlackjack: "Six-deck blackjack, dealer stands on all 17s, natural pays 2.375x.",
	games.VariantMines:     "5x5 board with 1-24 mines; the multiplier grows with every safe reveal.",
	games.VariantRoulette:  "European single-zero roulette; numbers, colours, parity, halves, columns and dozens.",
	games.VariantCoinflip:  "Call heads or tails; a correct call pays 1.9x.",
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	list := make([]GameInfo, 0, len(games.Variants))
	for _, v := range games.Variants {
		list = append(list, GameInfo{
			Name:        string(v),
			Description: gameDescriptions[v],
			Timeout:     s.casino.Registry().Timeout(v).String(),
		})
	}
	s.writeJSON(w, http.StatusOK, GamesResponse{Games: list, EngineVersion: EngineVersion})
}

// respondGame writes the outcome of a game call together with the
// player's balance after it.
func (s *Server) respondGame(w http.ResponseWriter, r *http.Request, status int, game any, err error) {
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	playerID := chi.URLParam(r, "playerID")
	bal, err := s.casino.Balance(r.Context(), playerID)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, status, GameResponse{PlayerID: playerID, Game: game, Balance: bal})
}

func (s *Server) handleStartBlackjack(w http.ResponseWriter, r *http.Request) {
	var req BetRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	view, err := s.casino.StartBlackjack(r.Context(), chi.URLParam(r, "playerID"), req.Bet)
	s.respondGame(w, r, http.StatusCreated, view, err)
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	view, err := s.casino.Hit(r.Context(), chi.URLParam(r, "playerID"))
	s.respondGame(w, r, http.StatusOK, view, err)
}

func (s *Server) handleStand(w http.ResponseWriter, r *http.Request) {
	view, err := s.casino.Stand(r.Context(), chi.URLParam(r, "playerID"))
	s.respondGame(w, r, http.StatusOK, view, err)
}

func (s *Server) handleStartMines(w http.ResponseWriter, r *http.Request) {
	var req BetRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	view, err := s.casino.StartMines(r.Context(), chi.URLParam(r, "playerID"), req.Bet, req.Mines)
	s.respondGame(w, r, http.StatusCreated, view, err)
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	var req RevealRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Cell == nil {
		s.errorHandler.HandleValidationError(w, r, "cell", "cell is required")
		return
	}
	view, err := s.casino.Reveal(r.Context(), chi.URLParam(r, "playerID"), *req.Cell)
	s.respondGame(w, r, http.StatusOK, view, err)
}

func (s *Server) handleCashOut(w http.ResponseWriter, r *http.Request) {
	view, err := s.casino.CashOut(r.Context(), chi.URLParam(r, "playerID"))
	s.respondGame(w, r, http.StatusOK, view, err)
}

func (s *Server) handleStartRoulette(w http.ResponseWriter, r *http.Request) {
	var req BetRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	pending, err := s.casino.StartRoulette(r.Context(), chi.URLParam(r, "playerID"), req.Bet, req.BetType)
	s.respondGame(w, r, http.StatusCreated, pending, err)
}

func (s *Server) handleSpin(w http.ResponseWriter, r *http.Request) {
	out, err := s.casino.Spin(r.Context(), chi.URLParam(r, "playerID"))
	s.respondGame(w, r, http.StatusOK, out, err)
}

func (s *Server) handleStartCoinflip(w http.ResponseWriter, r *http.Request) {
	var req BetRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	pending, err := s.casino.StartCoinflip(r.Context(), chi.URLParam(r, "playerID"), req.Bet)
	s.respondGame(w, r, http.StatusCreated, pending, err)
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	var req FlipRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	out, err := s.casino.Flip(r.Context(), chi.URLParam(r, "playerID"), req.Side)
	s.respondGame(w, r, http.StatusOK, out, err)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")
	view, err := s.casino.ActiveSession(playerID)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse{PlayerID: playerID, Session: view})
}
