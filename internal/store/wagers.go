package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MJE43/pf-casino-engine/internal/casino"
	"github.com/MJE43/pf-casino-engine/internal/fair"
	"github.com/MJE43/pf-casino-engine/internal/games"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordWager implements casino.WagerRecorder.
func (s *SQLiteDB) RecordWager(ctx context.Context, w casino.Wager) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = s.now()
	}
	return s.write(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO wagers (id, session_id, player_id, variant, bet, multiplier, payout, net_change,
				description, client_seed, nonce, epoch, forfeited, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			w.ID.String(), w.SessionID.String(), w.PlayerID, string(w.Variant),
			w.Bet.String(), w.Multiplier.String(), w.Payout.String(), w.NetChange.String(),
			w.Description, w.ClientSeed, int64(w.Nonce), w.Epoch, w.Forfeited, w.CreatedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("insert wager: %w", err)
		}
		return nil
	})
}

// Wagers returns the player's most recent wagers, newest first.
func (s *SQLiteDB) Wagers(ctx context.Context, playerID string, limit int) ([]casino.Wager, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, player_id, variant, bet, multiplier, payout, net_change,
			description, client_seed, nonce, epoch, forfeited, created_at
		FROM wagers WHERE player_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query wagers: %w", err)
	}
	defer rows.Close()

	var out []casino.Wager
	for rows.Next() {
		var (
			w                casino.Wager
			id, sessionID    string
			variant          string
			nonce, createdAt int64
		)
		if err := rows.Scan(&id, &sessionID, &w.PlayerID, &variant, &w.Bet, &w.Multiplier, &w.Payout, &w.NetChange,
			&w.Description, &w.ClientSeed, &nonce, &w.Epoch, &w.Forfeited, &createdAt); err != nil {
			return nil, fmt.Errorf("scan wager: %w", err)
		}
		if w.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("wager id %q: %w", id, err)
		}
		if w.SessionID, err = uuid.Parse(sessionID); err != nil {
			return nil, fmt.Errorf("wager session id %q: %w", sessionID, err)
		}
		w.Variant = games.Variant(variant)
		w.Nonce = uint64(nonce)
		w.CreatedAt = fromUnixNano(createdAt)
		out = append(out, w)
	}
	return out, rows.Err()
}

// Stats aggregates a player's wagers.
type Stats struct {
	GamesPlayed  int             `json:"games_played"`
	TotalWagered decimal.Decimal `json:"total_wagered"`
	TotalWon     decimal.Decimal `json:"total_won"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	Forfeits     int             `json:"forfeits"`
}

// PlayerStats sums every wager of the player. Amounts are added as
// decimals, not in SQL.
func (s *SQLiteDB) PlayerStats(ctx context.Context, playerID string) (Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bet, net_change, forfeited FROM wagers WHERE player_id = ?`, playerID)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	st := Stats{TotalWagered: decimal.Zero, TotalWon: decimal.Zero, NetProfit: decimal.Zero}
	for rows.Next() {
		var (
			bet, net  decimal.Decimal
			forfeited bool
		)
		if err := rows.Scan(&bet, &net, &forfeited); err != nil {
			return Stats{}, fmt.Errorf("scan stats: %w", err)
		}
		st.GamesPlayed++
		st.TotalWagered = st.TotalWagered.Add(bet)
		st.NetProfit = st.NetProfit.Add(net)
		if net.IsPositive() {
			st.TotalWon = st.TotalWon.Add(net)
		}
		if forfeited {
			st.Forfeits++
		}
	}
	return st, rows.Err()
}

// Profile is everything the API shows about a player.
type Profile struct {
	PlayerID   string          `json:"player_id"`
	Balance    decimal.Decimal `json:"balance"`
	ClientSeed string          `json:"client_seed,omitempty"`
	NextNonce  uint64          `json:"next_nonce"`
	Stats      Stats           `json:"stats"`
}

// PlayerProfile combines balance, seed state and stats. Unknown players
// yield ErrPlayerNotFound.
func (s *SQLiteDB) PlayerProfile(ctx context.Context, playerID string) (Profile, error) {
	var (
		bal    decimal.Decimal
		client sql.NullString
		nonce  int64
	)
	err := s.db.QueryRowContext(ctx, `SELECT balance, client_seed, nonce FROM players WHERE id = ?`, playerID).
		Scan(&bal, &client, &nonce)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, fmt.Errorf("%s: %w", playerID, ErrPlayerNotFound)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("read player: %w", err)
	}
	st, err := s.PlayerStats(ctx, playerID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		PlayerID:   playerID,
		Balance:    bal,
		ClientSeed: client.String,
		NextNonce:  uint64(nonce),
		Stats:      st,
	}, nil
}

var (
	_ casino.Ledger           = (*SQLiteDB)(nil)
	_ casino.WagerRecorder    = (*SQLiteDB)(nil)
	_ casino.ClientSeedSetter = (*SQLiteDB)(nil)
	_ fair.SeedStateProvider  = (*SQLiteDB)(nil)
)
