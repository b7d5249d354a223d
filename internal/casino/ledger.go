package casino

import (
	"context"
	"errors"
	"time"

	"github.com/MJE43/pf-casino-engine/internal/games"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInsufficientFunds is returned by Ledger.Debit when the balance is short.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Ledger holds player balances.
type Ledger interface {
	Debit(ctx context.Context, playerID string, amount decimal.Decimal) error
	Credit(ctx context.Context, playerID string, amount decimal.Decimal) error
	Balance(ctx context.Context, playerID string) (decimal.Decimal, error)
}

// Wager is the audit row of one settled or forfeited game.
type Wager struct {
	ID          uuid.UUID       `json:"id"`
	SessionID   uuid.UUID       `json:"session_id"`
	PlayerID    string          `json:"player_id"`
	Variant     games.Variant   `json:"variant"`
	Bet         decimal.Decimal `json:"bet"`
	Multiplier  decimal.Decimal `json:"multiplier"`
	Payout      decimal.Decimal `json:"payout"`
	NetChange   decimal.Decimal `json:"net_change"`
	Description string          `json:"description"`
	ClientSeed  string          `json:"client_seed,omitempty"`
	Nonce       uint64          `json:"nonce"`
	Epoch       int64           `json:"epoch"`
	Forfeited   bool            `json:"forfeited"`
	CreatedAt   time.Time       `json:"created_at"`
}

// WagerRecorder persists wagers.
type WagerRecorder interface {
	RecordWager(ctx context.Context, w Wager) error
}
