package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/MJE43/pf-casino-engine/internal/seeds"
)

// AppendSeed implements seeds.History. Existing epochs are left untouched.
func (s *SQLiteDB) AppendSeed(ctx context.Context, seed seeds.Seed) (bool, error) {
	var inserted bool
	err := s.write(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO seed_history (epoch, secret_seed, public_hash, posted_at, revealed)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(epoch) DO NOTHING`,
			seed.Epoch, seed.SecretSeed, seed.PublicHash, seed.PostedAt.UnixNano(), seed.Revealed)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		inserted = n == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("append seed %d: %w", seed.Epoch, err)
	}
	return inserted, nil
}

const seedColumns = `epoch, secret_seed, public_hash, posted_at, revealed`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeed(row rowScanner) (seeds.Seed, error) {
	var (
		seed   seeds.Seed
		posted int64
	)
	if err := row.Scan(&seed.Epoch, &seed.SecretSeed, &seed.PublicHash, &posted, &seed.Revealed); err != nil {
		return seeds.Seed{}, err
	}
	seed.PostedAt = fromUnixNano(posted)
	return seed, nil
}

// SeedByEpoch implements seeds.History.
func (s *SQLiteDB) SeedByEpoch(ctx context.Context, epoch int64) (seeds.Seed, error) {
	seed, err := scanSeed(s.db.QueryRowContext(ctx, `SELECT `+seedColumns+` FROM seed_history WHERE epoch = ?`, epoch))
	if errors.Is(err, sql.ErrNoRows) {
		return seeds.Seed{}, fmt.Errorf("epoch %d: %w", epoch, seeds.ErrSeedNotFound)
	}
	if err != nil {
		return seeds.Seed{}, fmt.Errorf("read seed %d: %w", epoch, err)
	}
	return seed, nil
}

// LatestSeed implements seeds.History.
func (s *SQLiteDB) LatestSeed(ctx context.Context) (seeds.Seed, error) {
	seed, err := scanSeed(s.db.QueryRowContext(ctx, `SELECT `+seedColumns+` FROM seed_history ORDER BY epoch DESC LIMIT 1`))
	if errors.Is(err, sql.ErrNoRows) {
		return seeds.Seed{}, seeds.ErrSeedNotFound
	}
	if err != nil {
		return seeds.Seed{}, fmt.Errorf("read latest seed: %w", err)
	}
	return seed, nil
}

// SeedsBetween implements seeds.History; both bounds are inclusive.
func (s *SQLiteDB) SeedsBetween(ctx context.Context, from, to time.Time) ([]seeds.Seed, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+seedColumns+` FROM seed_history
		WHERE posted_at >= ? AND posted_at <= ?
		ORDER BY epoch ASC`, from.UnixNano(), to.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("query seeds: %w", err)
	}
	defer rows.Close()

	var out []seeds.Seed
	for rows.Next() {
		seed, err := scanSeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seed: %w", err)
		}
		out = append(out, seed)
	}
	return out, rows.Err()
}

// RevealBefore implements seeds.History.
func (s *SQLiteDB) RevealBefore(ctx context.Context, epoch int64) ([]int64, error) {
	var revealed []int64
	err := s.write(ctx, func(tx *sql.Tx) error {
		revealed = revealed[:0]
		rows, err := tx.QueryContext(ctx, `
			SELECT epoch FROM seed_history WHERE epoch < ? AND revealed = 0 ORDER BY epoch ASC`, epoch)
		if err != nil {
			return fmt.Errorf("query unrevealed seeds: %w", err)
		}
		for rows.Next() {
			var e int64
			if err := rows.Scan(&e); err != nil {
				rows.Close()
				return err
			}
			revealed = append(revealed, e)
		}
		if err := multierr.Combine(rows.Err(), rows.Close()); err != nil {
			return err
		}
		if len(revealed) == 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `UPDATE seed_history SET revealed = 1 WHERE epoch < ? AND revealed = 0`, epoch); err != nil {
			return fmt.Errorf("reveal seeds before %d: %w", epoch, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return revealed, nil
}

var _ seeds.History = (*SQLiteDB)(nil)
