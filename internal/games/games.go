// Package games holds the rule state machines for blackjack, mines,
// roulette and coinflip. Engines consume fair draws through Drawer and
// return PayoutRecords; they never touch balances or sessions.
package games

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MJE43/pf-casino-engine/internal/engine"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidBet        = errors.New("invalid bet")
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrAlreadyRevealed   = errors.New("cell already revealed")
)

// Drawer produces one fair integer in [min, max] for a player. Each call
// consumes one nonce.
type Drawer interface {
	Draw(ctx context.Context, playerID string, min, max int64) (engine.FairResult, error)
}

// Variant names a game kind.
type Variant string

const (
	VariantBlackjack Variant = "blackjack"
	VariantMines     Variant = "mines"
	VariantRoulette  Variant = "roulette"
	VariantCoinflip  Variant = "coinflip"
)

// Variants lists every supported game.
var Variants = []Variant{VariantBlackjack, VariantMines, VariantRoulette, VariantCoinflip}

// ParseVariant accepts a case-insensitive variant name.
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Variants {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: unknown game %q", ErrInvalidParameter, s)
}

// ValidateBet rejects zero and negative stakes.
func ValidateBet(bet decimal.Decimal) error {
	if !bet.IsPositive() {
		return fmt.Errorf("%w: bet must be positive, got %s", ErrInvalidBet, bet)
	}
	return nil
}
