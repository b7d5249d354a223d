package api

import (
	"github.com/MJE43/pf-casino-engine/internal/casino"
	"github.com/MJE43/pf-casino-engine/internal/seeds"
	"github.com/MJE43/pf-casino-engine/internal/store"
	"github.com/shopspring/decimal"
)

// EngineError is the JSON body of every error response.
type EngineError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Timestamp string         `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

// Error types. Clients switch on these, keep them stable.
const (
	// Input validation errors
	ErrTypeInvalidBet    = "invalid_bet"
	ErrTypeInvalidParams = "invalid_params"
	ErrTypeValidation    = "validation_error"
	ErrTypeInsufficient  = "insufficient_funds"

	// Game flow errors
	ErrTypeInvalidTransition = "invalid_transition"
	ErrTypeAlreadyRevealed   = "already_revealed"
	ErrTypeSessionConflict   = "session_conflict"
	ErrTypeNoSession         = "no_session"
	ErrTypeSeedNotRevealed   = "seed_not_revealed"

	// Lookup and access errors
	ErrTypeNotFound     = "not_found"
	ErrTypeUnauthorized = "unauthorized"

	// System errors
	ErrTypeTimeout            = "timeout"
	ErrTypeInternal           = "internal_error"
	ErrTypeServiceUnavailable = "service_unavailable"
)

// ErrorCategory groups error types for logging.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryGame       ErrorCategory = "game"
	CategoryAccess     ErrorCategory = "access"
	CategorySystem     ErrorCategory = "system"
	CategoryTimeout    ErrorCategory = "timeout"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeInvalidBet, ErrTypeInvalidParams, ErrTypeValidation, ErrTypeInsufficient:
		return CategoryValidation
	case ErrTypeInvalidTransition, ErrTypeAlreadyRevealed, ErrTypeSessionConflict, ErrTypeNoSession, ErrTypeSeedNotRevealed:
		return CategoryGame
	case ErrTypeNotFound, ErrTypeUnauthorized:
		return CategoryAccess
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// VersionInfo contains engine version information
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}

// SeedResponse wraps one publishable seed.
type SeedResponse struct {
	Seed          seeds.Seed `json:"seed"`
	Disclosure    string     `json:"disclosure"`
	EngineVersion string     `json:"engine_version"`
}

// SeedListResponse is the answer to a time-range history query.
type SeedListResponse struct {
	Seeds         []seeds.Seed `json:"seeds"`
	EngineVersion string       `json:"engine_version"`
}

// VerifyRequest recomputes one draw. Either SecretSeed or Epoch selects the
// server seed; an epoch must already be revealed.
type VerifyRequest struct {
	SecretSeed string `json:"secret_seed,omitempty"`
	Epoch      *int64 `json:"epoch,omitempty"`
	ClientSeed string `json:"client_seed"`
	Nonce      uint64 `json:"nonce"`
	Min        int64  `json:"min"`
	Max        int64  `json:"max"`
}

// VerifyResponse carries the recomputed value and its HMAC digest.
type VerifyResponse struct {
	Value         int64         `json:"value"`
	Digest        string        `json:"digest"`
	PublicHash    string        `json:"public_hash"`
	EngineVersion string        `json:"engine_version"`
	Echo          VerifyRequest `json:"echo"`
}

// BetRequest starts a game. Mines and BetType apply to mines and roulette.
type BetRequest struct {
	Bet     decimal.Decimal `json:"bet"`
	Mines   int             `json:"mines,omitempty"`
	BetType string          `json:"bet_type,omitempty"`
}

// RevealRequest picks a mines cell.
type RevealRequest struct {
	Cell *int `json:"cell"`
}

// FlipRequest calls a side for a pending coinflip.
type FlipRequest struct {
	Side string `json:"side"`
}

// ClientSeedRequest sets a new client seed. Empty picks a random one.
type ClientSeedRequest struct {
	ClientSeed string `json:"client_seed"`
}

// AmountRequest is the body of admin credit and debit calls.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// GameResponse is returned by every game action.
type GameResponse struct {
	PlayerID string          `json:"player_id"`
	Game     any             `json:"game"`
	Balance  decimal.Decimal `json:"balance"`
}

// SessionResponse describes the player's live game.
type SessionResponse struct {
	PlayerID string             `json:"player_id"`
	Session  casino.SessionView `json:"session"`
}

// WagersResponse lists recent wagers.
type WagersResponse struct {
	PlayerID string         `json:"player_id"`
	Wagers   []casino.Wager `json:"wagers"`
}

// LeaderboardResponse ranks players by balance.
type LeaderboardResponse struct {
	Entries []store.LeaderboardEntry `json:"entries"`
}

// BalanceResponse is returned by admin ledger calls.
type BalanceResponse struct {
	PlayerID string          `json:"player_id"`
	Balance  decimal.Decimal `json:"balance"`
}

// GameInfo describes one playable variant.
type GameInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Timeout     string `json:"timeout"`
}

// GamesResponse represents the games metadata response
type GamesResponse struct {
	Games         []GameInfo `json:"games"`
	EngineVersion string     `json:"engine_version"`
}

// EventMessage is one websocket frame on the events stream.
type EventMessage struct {
	Channel string `json:"channel"`
	Event   string `json:"event"`
	Data    any    `json:"data"`
}
