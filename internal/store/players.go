package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MJE43/pf-casino-engine/internal/casino"
	"github.com/MJE43/pf-casino-engine/internal/fair"
	"github.com/shopspring/decimal"
)

// balanceTx reads a balance inside tx; unknown players have zero.
func balanceTx(ctx context.Context, tx *sql.Tx, playerID string) (decimal.Decimal, bool, error) {
	var bal decimal.Decimal
	err := tx.QueryRowContext(ctx, `SELECT balance FROM players WHERE id = ?`, playerID).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("read balance: %w", err)
	}
	return bal, true, nil
}

func (s *SQLiteDB) setBalanceTx(ctx context.Context, tx *sql.Tx, playerID string, bal decimal.Decimal) error {
	now := s.now().UnixNano()
	_, err := tx.ExecContext(ctx, `
		INSERT INTO players (id, balance, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET balance = excluded.balance, updated_at = excluded.updated_at`,
		playerID, bal.String(), now, now)
	if err != nil {
		return fmt.Errorf("write balance: %w", err)
	}
	return nil
}

// Debit implements casino.Ledger.
func (s *SQLiteDB) Debit(ctx context.Context, playerID string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("debit of negative amount %s", amount)
	}
	return s.write(ctx, func(tx *sql.Tx) error {
		bal, _, err := balanceTx(ctx, tx, playerID)
		if err != nil {
			return err
		}
		if bal.LessThan(amount) {
			return fmt.Errorf("%w: balance %s, need %s", casino.ErrInsufficientFunds, bal, amount)
		}
		return s.setBalanceTx(ctx, tx, playerID, bal.Sub(amount))
	})
}

// Credit implements casino.Ledger. Unknown players are created.
func (s *SQLiteDB) Credit(ctx context.Context, playerID string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("credit of negative amount %s", amount)
	}
	return s.write(ctx, func(tx *sql.Tx) error {
		bal, _, err := balanceTx(ctx, tx, playerID)
		if err != nil {
			return err
		}
		return s.setBalanceTx(ctx, tx, playerID, bal.Add(amount))
	})
}

// Balance implements casino.Ledger.
func (s *SQLiteDB) Balance(ctx context.Context, playerID string) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := s.db.QueryRowContext(ctx, `SELECT balance FROM players WHERE id = ?`, playerID).Scan(&bal)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("read balance: %w", err)
	}
	return bal, nil
}

// SeedState implements fair.SeedStateProvider.
func (s *SQLiteDB) SeedState(ctx context.Context, playerID string) (fair.PlayerSeedState, error) {
	var (
		client sql.NullString
		nonce  int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT client_seed, nonce FROM players WHERE id = ?`, playerID).Scan(&client, &nonce)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !client.Valid) {
		return fair.PlayerSeedState{}, fair.ErrNoSeedState
	}
	if err != nil {
		return fair.PlayerSeedState{}, fmt.Errorf("read seed state: %w", err)
	}
	return fair.PlayerSeedState{PlayerID: playerID, ClientSeed: client.String, Nonce: uint64(nonce)}, nil
}

// CreateSeedState implements fair.SeedStateProvider. An existing client
// seed is kept.
func (s *SQLiteDB) CreateSeedState(ctx context.Context, playerID, clientSeed string) (fair.PlayerSeedState, error) {
	now := s.now().UnixNano()
	err := s.write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO players (id, client_seed, nonce, created_at, updated_at) VALUES (?, ?, 0, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				client_seed = COALESCE(players.client_seed, excluded.client_seed),
				updated_at = excluded.updated_at`,
			playerID, clientSeed, now, now)
		return err
	})
	if err != nil {
		return fair.PlayerSeedState{}, fmt.Errorf("create seed state: %w", err)
	}
	return s.SeedState(ctx, playerID)
}

// SetClientSeed replaces the player's client seed. The nonce is never
// rewound, so no (client seed, nonce) pair repeats within an epoch.
func (s *SQLiteDB) SetClientSeed(ctx context.Context, playerID, clientSeed string) (fair.PlayerSeedState, error) {
	now := s.now().UnixNano()
	err := s.write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO players (id, client_seed, nonce, created_at, updated_at) VALUES (?, ?, 0, ?, ?)
			ON CONFLICT(id) DO UPDATE SET client_seed = excluded.client_seed, updated_at = excluded.updated_at`,
			playerID, clientSeed, now, now)
		return err
	})
	if err != nil {
		return fair.PlayerSeedState{}, fmt.Errorf("set client seed: %w", err)
	}
	return s.SeedState(ctx, playerID)
}

// IncrementNonce implements fair.SeedStateProvider.
func (s *SQLiteDB) IncrementNonce(ctx context.Context, playerID string) error {
	return s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE players SET nonce = nonce + 1, updated_at = ?
			WHERE id = ? AND client_seed IS NOT NULL`, s.now().UnixNano(), playerID)
		if err != nil {
			return fmt.Errorf("increment nonce: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%s: %w", playerID, fair.ErrNoSeedState)
		}
		return nil
	})
}

// LeaderboardEntry is one ranked player.
type LeaderboardEntry struct {
	Rank     int             `json:"rank"`
	PlayerID string          `json:"player_id"`
	Balance  decimal.Decimal `json:"balance"`
}

// Leaderboard returns the top limit players by balance.
func (s *SQLiteDB) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, balance FROM players
		ORDER BY CAST(balance AS REAL) DESC, id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []LeaderboardEntry
	for rows.Next() {
		e := LeaderboardEntry{Rank: len(out) + 1}
		if err := rows.Scan(&e.PlayerID, &e.Balance); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
