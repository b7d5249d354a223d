package games

import (
	"context"
	"fmt"
	"strings"

	"github.com/MJE43/pf-casino-engine/internal/engine"
	"github.com/shopspring/decimal"
)

// Side is a coin face.
type Side string

const (
	Heads Side = "heads"
	Tails Side = "tails"
)

const (
	coinflipMax        = 9999
	coinflipHeadsBelow = 5000
)

var coinflipWinPays = decimal.RequireFromString("1.9")

// ParseSide accepts heads/tails and their initials.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "heads", "h":
		return Heads, nil
	case "tails", "t":
		return Tails, nil
	}
	return "", fmt.Errorf("%w: unknown coin side %q", ErrInvalidParameter, s)
}

// SideFor maps a draw in [0, 9999] to a face: below 5000 is heads.
func SideFor(value int64) Side {
	if value < coinflipHeadsBelow {
		return Heads
	}
	return Tails
}

// CoinflipOutcome is one settled flip.
type CoinflipOutcome struct {
	Chosen Side              `json:"chosen"`
	Landed Side              `json:"landed"`
	Win    bool              `json:"win"`
	Payout PayoutRecord      `json:"payout"`
	Draw   engine.FairResult `json:"draw"`
}

// FlipCoin consumes one draw in [0, 9999]. A match returns 1.9x.
func FlipCoin(ctx context.Context, d Drawer, playerID string, bet decimal.Decimal, side Side) (CoinflipOutcome, error) {
	if err := ValidateBet(bet); err != nil {
		return CoinflipOutcome{}, err
	}
	if side != Heads && side != Tails {
		return CoinflipOutcome{}, fmt.Errorf("%w: unknown coin side %q", ErrInvalidParameter, side)
	}
	res, err := d.Draw(ctx, playerID, 0, coinflipMax)
	if err != nil {
		return CoinflipOutcome{}, fmt.Errorf("coinflip draw: %w", err)
	}
	out := CoinflipOutcome{Chosen: side, Landed: SideFor(res.Value), Draw: res}
	out.Win = out.Landed == side
	mult := decimal.Zero
	if out.Win {
		mult = coinflipWinPays
	}
	out.Payout = Settle(bet, mult, fmt.Sprintf("Coin landed %s, called %s.", out.Landed, side))
	return out, nil
}

// CoinflipPending is a placed stake waiting for the player's call.
type CoinflipPending struct {
	Bet decimal.Decimal `json:"bet"`
}

// Flip resolves the pending stake on side.
func (p *CoinflipPending) Flip(ctx context.Context, d Drawer, playerID string, side Side) (CoinflipOutcome, error) {
	return FlipCoin(ctx, d, playerID, p.Bet, side)
}
