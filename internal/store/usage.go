package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MJE43/pf-casino-engine/internal/casino"
	"github.com/shopspring/decimal"
)

// AddUsage implements casino.UsageTracker. A tally from an earlier day is
// replaced.
func (s *SQLiteDB) AddUsage(ctx context.Context, playerID string, wager decimal.Decimal, at time.Time) (casino.Usage, error) {
	var u casino.Usage
	err := s.write(ctx, func(tx *sql.Tx) error {
		cur, found, err := usageTx(ctx, tx, playerID)
		if err != nil {
			return err
		}
		u = cur
		if !found || u.Day != casino.UsageDay(at) {
			u = casino.Usage{PlayerID: playerID, Day: casino.UsageDay(at), FirstPlayAt: at}
		}
		u.Wagered = u.Wagered.Add(wager)

		var lastWarn int64
		if !u.LastTimeWarningAt.IsZero() {
			lastWarn = u.LastTimeWarningAt.UnixNano()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO daily_usage (player_id, day, wagered, first_play_at, wager_warned, last_time_warning_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(player_id) DO UPDATE SET
				day = excluded.day,
				wagered = excluded.wagered,
				first_play_at = excluded.first_play_at,
				wager_warned = excluded.wager_warned,
				last_time_warning_at = excluded.last_time_warning_at`,
			playerID, u.Day, u.Wagered.String(), u.FirstPlayAt.UnixNano(), u.WagerWarned, lastWarn)
		if err != nil {
			return fmt.Errorf("write usage: %w", err)
		}
		return nil
	})
	if err != nil {
		return casino.Usage{}, err
	}
	return u, nil
}

// MarkUsageWarned implements casino.UsageTracker. The wager level only
// moves up.
func (s *SQLiteDB) MarkUsageWarned(ctx context.Context, w casino.UsageWarning) error {
	return s.write(ctx, func(tx *sql.Tx) error {
		var err error
		switch w.Reason {
		case casino.WarnWagerHalf, casino.WarnWagerFull:
			_, err = tx.ExecContext(ctx, `
				UPDATE daily_usage SET wager_warned = MAX(wager_warned, ?)
				WHERE player_id = ? AND day = ?`, w.Reason.Level(), w.PlayerID, casino.UsageDay(w.At))
		case casino.WarnPlayTime:
			_, err = tx.ExecContext(ctx, `
				UPDATE daily_usage SET last_time_warning_at = ?
				WHERE player_id = ? AND day = ?`, w.At.UnixNano(), w.PlayerID, casino.UsageDay(w.At))
		default:
			return fmt.Errorf("unknown warning reason %q", w.Reason)
		}
		if err != nil {
			return fmt.Errorf("mark usage warned: %w", err)
		}
		return nil
	})
}

// Usage returns the player's stored tally, if any.
func (s *SQLiteDB) Usage(ctx context.Context, playerID string) (casino.Usage, bool, error) {
	var (
		u     casino.Usage
		found bool
	)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		u, found, err = usageTx(ctx, tx, playerID)
		return err
	})
	return u, found, err
}

func usageTx(ctx context.Context, tx *sql.Tx, playerID string) (casino.Usage, bool, error) {
	var (
		u                 = casino.Usage{PlayerID: playerID}
		firstAt, lastWarn int64
	)
	err := tx.QueryRowContext(ctx, `
		SELECT day, wagered, first_play_at, wager_warned, last_time_warning_at
		FROM daily_usage WHERE player_id = ?`, playerID).
		Scan(&u.Day, &u.Wagered, &firstAt, &u.WagerWarned, &lastWarn)
	if errors.Is(err, sql.ErrNoRows) {
		return casino.Usage{}, false, nil
	}
	if err != nil {
		return casino.Usage{}, false, fmt.Errorf("read usage: %w", err)
	}
	u.FirstPlayAt = fromUnixNano(firstAt)
	if lastWarn != 0 {
		u.LastTimeWarningAt = fromUnixNano(lastWarn)
	}
	return u, true, nil
}

var _ casino.UsageTracker = (*SQLiteDB)(nil)
