package games

import "github.com/shopspring/decimal"

// HouseEdge scales theoretically fair mines odds.
var HouseEdge = decimal.RequireFromString("0.95")

// PayoutRecord is the settlement of one terminal session.
type PayoutRecord struct {
	Multiplier  decimal.Decimal `json:"multiplier"`
	GrossPayout decimal.Decimal `json:"gross_payout"`
	NetChange   decimal.Decimal `json:"net_change"`
	Description string          `json:"description"`
}

// Won reports whether the player ended ahead.
func (p PayoutRecord) Won() bool { return p.NetChange.IsPositive() }

// Settle computes gross = bet*multiplier and net = gross - bet.
func Settle(bet, multiplier decimal.Decimal, description string) PayoutRecord {
	gross := bet.Mul(multiplier)
	return PayoutRecord{
		Multiplier:  multiplier,
		GrossPayout: gross,
		NetChange:   gross.Sub(bet),
		Description: description,
	}
}

// MinesMultiplier returns 0.95 * C(25,s)/C(25-m,s) rounded to two places,
// written as the product of (25-i)/(25-m-i) for i < s. Zero safe clicks pay 0.
// Arguments outside the playable domain also return 0. Rounding is exact
// decimal half away from zero, so a tie such as 2.375 pays 2.38.
func MinesMultiplier(mineCount, safeClicks int) decimal.Decimal {
	if safeClicks <= 0 || mineCount < MinMines || mineCount > MaxMines || safeClicks > MinesCells-mineCount {
		return decimal.Zero
	}
	num, den := decimal.NewFromInt(1), decimal.NewFromInt(1)
	for i := 0; i < safeClicks; i++ {
		num = num.Mul(decimal.NewFromInt(int64(MinesCells - i)))
		den = den.Mul(decimal.NewFromInt(int64(MinesCells - mineCount - i)))
	}
	return num.Mul(HouseEdge).DivRound(den, 8).Round(2)
}
