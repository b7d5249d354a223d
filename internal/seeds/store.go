package seeds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MJE43/pf-casino-engine/internal/logging"
)

// rotationGrace is added after an epoch boundary so the timer never
// observes the clock a hair before the new epoch.
const rotationGrace = 100 * time.Millisecond

// Store holds the current seed and rotates it once per epoch, appending
// every activated seed to its History.
type Store struct {
	mu      sync.RWMutex
	current Seed

	rotateMu sync.Mutex
	history  History
	period   time.Duration
	mode     DisclosureMode
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithPeriod sets the epoch length.
func WithPeriod(d time.Duration) Option {
	return func(s *Store) {
		if d >= time.Second {
			s.period = d
		}
	}
}

// WithDisclosure selects the commit/reveal protocol.
func WithDisclosure(m DisclosureMode) Option {
	return func(s *Store) { s.mode = m }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the rotation logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a store over history. No seed is active until the first
// Rotate.
func NewStore(history History, opts ...Option) *Store {
	s := &Store{
		history: history,
		period:  DefaultPeriod,
		mode:    DiscloseOnRotation,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns a snapshot of the active seed.
func (s *Store) Current() Seed {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Period returns the epoch length.
func (s *Store) Period() time.Duration { return s.period }

// Mode returns the disclosure protocol in use.
func (s *Store) Mode() DisclosureMode { return s.mode }

// History returns the backing audit history.
func (s *Store) History() History { return s.history }

// Rotate activates the seed for the current epoch. A second call within the
// same epoch is a no-op and reports false.
func (s *Store) Rotate(ctx context.Context) (Seed, bool, error) {
	s.rotateMu.Lock()
	defer s.rotateMu.Unlock()

	now := s.now().UTC()
	epoch := EpochAt(now, s.period)

	prev := s.Current()
	if !prev.IsZero() && prev.Epoch == epoch {
		return prev, false, nil
	}
	if prev.IsZero() {
		latest, err := s.history.LatestSeed(ctx)
		switch {
		case err == nil && latest.Epoch > epoch:
			s.logger.Warn("clock is behind the seed history",
				slog.Int64("epoch", epoch), slog.Int64("latest_epoch", latest.Epoch))
		case err != nil && !errors.Is(err, ErrSeedNotFound):
			return Seed{}, false, fmt.Errorf("load latest seed: %w", err)
		}
	}

	// Catch up every superseded epoch before the new one is committed, so
	// an interrupted rotation never strands a secret.
	revealed, err := s.history.RevealBefore(ctx, epoch)
	if err != nil {
		return Seed{}, false, fmt.Errorf("reveal seeds before epoch %d: %w", epoch, err)
	}
	for _, e := range revealed {
		s.logger.Info("seed revealed", slog.Int64("epoch", e))
	}

	secret, public := Derive(epoch)
	seed := Seed{
		Epoch:      epoch,
		SecretSeed: secret,
		PublicHash: public,
		PostedAt:   now,
		Revealed:   s.mode == DiscloseOnRotation,
	}

	inserted, err := s.history.AppendSeed(ctx, seed)
	if err != nil {
		return Seed{}, false, fmt.Errorf("append seed for epoch %d: %w", epoch, err)
	}
	if !inserted {
		stored, err := s.history.SeedByEpoch(ctx, epoch)
		if err != nil {
			return Seed{}, false, fmt.Errorf("load seed for epoch %d: %w", epoch, err)
		}
		seed = stored
	}

	s.mu.Lock()
	s.current = seed
	s.mu.Unlock()

	if inserted {
		s.logger.Info("seed rotated",
			slog.Int64("epoch", seed.Epoch),
			slog.String("public_hash", seed.PublicHash),
			slog.Bool("revealed", seed.Revealed),
		)
	}
	return seed, inserted, nil
}

// Run rotates immediately and then at every epoch boundary until ctx is
// done. Rotation failures are logged and retried on the next tick.
func (s *Store) Run(ctx context.Context) error {
	if _, _, err := s.Rotate(ctx); err != nil {
		s.logger.Error("seed rotation failed", logging.Err(err))
	}
	for {
		timer := time.NewTimer(s.untilNextEpoch())
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
		if _, _, err := s.Rotate(ctx); err != nil {
			s.logger.Error("seed rotation failed", logging.Err(err))
		}
	}
}

func (s *Store) untilNextEpoch() time.Duration {
	now := s.now()
	next := EpochStart(EpochAt(now, s.period)+1, s.period)
	return next.Sub(now) + rotationGrace
}

// SeedByEpoch returns the publishable view of an epoch's seed.
func (s *Store) SeedByEpoch(ctx context.Context, epoch int64) (Seed, error) {
	seed, err := s.history.SeedByEpoch(ctx, epoch)
	if err != nil {
		return Seed{}, err
	}
	return seed.Public(), nil
}

// SeedsBetween returns the publishable view of seeds posted in [from, to].
func (s *Store) SeedsBetween(ctx context.Context, from, to time.Time) ([]Seed, error) {
	list, err := s.history.SeedsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i] = list[i].Public()
	}
	return list, nil
}
