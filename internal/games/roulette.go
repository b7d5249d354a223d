package games

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MJE43/pf-casino-engine/internal/engine"
	"github.com/shopspring/decimal"
)

// RouletteMax is the highest pocket on the single-zero wheel.
const RouletteMax = 36

// Total return per unit bet on a win.
var (
	rouletteSinglePays      = decimal.NewFromInt(35)
	rouletteEvenMoneyPays   = decimal.NewFromInt(2)
	rouletteColumnDozenPays = decimal.NewFromInt(3)
)

var redPockets = map[int64]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
	19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// RouletteColor returns "green", "red" or "black" for a pocket.
func RouletteColor(n int64) string {
	switch {
	case n == 0:
		return "green"
	case redPockets[n]:
		return "red"
	default:
		return "black"
	}
}

// RouletteBet is a validated bet type: a pocket "0".."36", an even-money
// bet, a column col1..col3 or a dozen doz1..doz3.
type RouletteBet string

// ParseRouletteBet normalises and validates a bet type.
func ParseRouletteBet(s string) (RouletteBet, error) {
	b := strings.ToLower(strings.TrimSpace(s))
	switch b {
	case "red", "black", "odd", "even", "low", "high",
		"col1", "col2", "col3", "doz1", "doz2", "doz3":
		return RouletteBet(b), nil
	}
	if n, err := strconv.Atoi(b); err == nil && n >= 0 && n <= RouletteMax {
		return RouletteBet(strconv.Itoa(n)), nil
	}
	return "", fmt.Errorf("%w: unknown roulette bet %q", ErrInvalidParameter, s)
}

func (b RouletteBet) number() (int64, bool) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	return n, err == nil
}

// Multiplier is the total return on a winning bet of this type.
func (b RouletteBet) Multiplier() decimal.Decimal {
	if _, ok := b.number(); ok {
		return rouletteSinglePays
	}
	switch b {
	case "col1", "col2", "col3", "doz1", "doz2", "doz3":
		return rouletteColumnDozenPays
	case "red", "black", "odd", "even", "low", "high":
		return rouletteEvenMoneyPays
	}
	return decimal.Zero
}

// Wins reports whether the bet wins on pocket n. Zero loses every outside bet.
func (b RouletteBet) Wins(n int64) bool {
	if want, ok := b.number(); ok {
		return want == n
	}
	if n == 0 {
		return false
	}
	switch b {
	case "red", "black":
		return RouletteColor(n) == string(b)
	case "odd":
		return n%2 == 1
	case "even":
		return n%2 == 0
	case "low":
		return n <= 18
	case "high":
		return n >= 19
	case "col1":
		return n%3 == 1
	case "col2":
		return n%3 == 2
	case "col3":
		return n%3 == 0
	case "doz1":
		return n <= 12
	case "doz2":
		return n >= 13 && n <= 24
	case "doz3":
		return n >= 25
	}
	return false
}

// RouletteOutcome is one settled spin.
type RouletteOutcome struct {
	Number  int64             `json:"number"`
	Color   string            `json:"color"`
	BetType RouletteBet       `json:"bet_type"`
	Win     bool              `json:"win"`
	Payout  PayoutRecord      `json:"payout"`
	Draw    engine.FairResult `json:"draw"`
}

// SpinRoulette consumes one draw in [0, 36] and settles betType against it.
func SpinRoulette(ctx context.Context, d Drawer, playerID string, bet decimal.Decimal, betType RouletteBet) (RouletteOutcome, error) {
	if err := ValidateBet(bet); err != nil {
		return RouletteOutcome{}, err
	}
	if betType.Multiplier().IsZero() {
		return RouletteOutcome{}, fmt.Errorf("%w: unknown roulette bet %q", ErrInvalidParameter, betType)
	}
	res, err := d.Draw(ctx, playerID, 0, RouletteMax)
	if err != nil {
		return RouletteOutcome{}, fmt.Errorf("roulette draw: %w", err)
	}
	return settleRoulette(bet, betType, res), nil
}

func settleRoulette(bet decimal.Decimal, betType RouletteBet, res engine.FairResult) RouletteOutcome {
	out := RouletteOutcome{
		Number:  res.Value,
		Color:   RouletteColor(res.Value),
		BetType: betType,
		Win:     betType.Wins(res.Value),
		Draw:    res,
	}
	mult, verdict := decimal.Zero, "loses"
	if out.Win {
		mult, verdict = betType.Multiplier(), "wins"
	}
	out.Payout = Settle(bet, mult, fmt.Sprintf("Wheel lands on %d (%s), bet on %s %s.",
		out.Number, out.Color, betType, verdict))
	return out
}

// RoulettePending is a placed bet waiting for its spin.
type RoulettePending struct {
	Bet     decimal.Decimal `json:"bet"`
	BetType RouletteBet     `json:"bet_type"`
}

// Spin resolves the pending bet.
func (p *RoulettePending) Spin(ctx context.Context, d Drawer, playerID string) (RouletteOutcome, error) {
	return SpinRoulette(ctx, d, playerID, p.Bet, p.BetType)
}
