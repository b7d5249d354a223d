package casino

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PlayTimeWarningInterval is how long a player plays in a day before the
// first play-time warning, and the gap between repeats.
const PlayTimeWarningInterval = 30 * time.Minute

// WarningReason names the threshold a usage warning fired on.
type WarningReason string

const (
	WarnWagerHalf WarningReason = "wager_half"
	WarnWagerFull WarningReason = "wager_full"
	WarnPlayTime  WarningReason = "play_time"
)

// Level is the wager percentage a reason marks as warned; zero for
// play time.
func (r WarningReason) Level() int {
	switch r {
	case WarnWagerFull:
		return 100
	case WarnWagerHalf:
		return 50
	}
	return 0
}

// Usage is a player's tally for one UTC day.
type Usage struct {
	PlayerID string
	Day      string // 2006-01-02, UTC
	Wagered  decimal.Decimal
	// FirstPlayAt is the first settled game of the day.
	FirstPlayAt time.Time
	// WagerWarned is the highest wager level already warned: 0, 50 or 100.
	WagerWarned       int
	LastTimeWarningAt time.Time
}

// UsageWarning is published when a player crosses a usage threshold.
type UsageWarning struct {
	PlayerID    string          `json:"player_id"`
	Reason      WarningReason   `json:"reason"`
	Wagered     decimal.Decimal `json:"wagered"`
	Balance     decimal.Decimal `json:"reference_balance"`
	Percent     int64           `json:"percent"`
	PlayMinutes int64           `json:"play_minutes"`
	Message     string          `json:"message"`
	At          time.Time       `json:"at"`
}

// UsageTracker keeps the daily tallies behind usage warnings.
type UsageTracker interface {
	// AddUsage adds wager to the player's tally for at's UTC day. A new day
	// starts a fresh tally.
	AddUsage(ctx context.Context, playerID string, wager decimal.Decimal, at time.Time) (Usage, error)
	// MarkUsageWarned records that w was delivered.
	MarkUsageWarned(ctx context.Context, w UsageWarning) error
}

// UsageDay is the tally key for at.
func UsageDay(at time.Time) string { return at.UTC().Format(time.DateOnly) }

// EvaluateUsage reports the warning u calls for, if any. reference is the
// balance the player held before the game. Wager warnings outrank the
// play-time warning and fire once per level per day.
func EvaluateUsage(u Usage, reference decimal.Decimal, at time.Time) (UsageWarning, bool) {
	w := UsageWarning{
		PlayerID: u.PlayerID,
		Wagered:  u.Wagered,
		Balance:  reference,
		At:       at,
	}
	if !u.FirstPlayAt.IsZero() {
		w.PlayMinutes = int64(at.Sub(u.FirstPlayAt) / time.Minute)
	}
	if reference.IsPositive() {
		w.Percent = u.Wagered.Mul(decimal.NewFromInt(100)).Div(reference).IntPart()
	}

	switch {
	case reference.IsPositive() && w.Percent >= 100 && u.WagerWarned < 100:
		w.Reason = WarnWagerFull
		w.Message = "You have wagered your whole starting balance today. Consider taking a break."
		return w, true
	case reference.IsPositive() && w.Percent >= 50 && u.WagerWarned < 50:
		w.Reason = WarnWagerHalf
		w.Message = "You have wagered half of your starting balance today."
		return w, true
	}

	if u.FirstPlayAt.IsZero() || at.Sub(u.FirstPlayAt) < PlayTimeWarningInterval {
		return UsageWarning{}, false
	}
	if !u.LastTimeWarningAt.IsZero() && at.Sub(u.LastTimeWarningAt) < PlayTimeWarningInterval {
		return UsageWarning{}, false
	}
	w.Reason = WarnPlayTime
	w.Message = "You have been playing for a while. Remember to take breaks."
	return w, true
}
