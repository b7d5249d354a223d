package casino

import (
	"context"
	"errors"
	"fmt"

	"github.com/MJE43/pf-casino-engine/internal/fair"
	"github.com/MJE43/pf-casino-engine/internal/games"
	"github.com/MJE43/pf-casino-engine/internal/session"
)

// MaxClientSeedLen bounds player-chosen client seeds.
const MaxClientSeedLen = 64

// ClientSeedSetter is implemented by seed-state providers that let a
// player pick a new client seed.
type ClientSeedSetter interface {
	SetClientSeed(ctx context.Context, playerID, clientSeed string) (fair.PlayerSeedState, error)
}

// ErrSeedChangeUnsupported is returned when the provider is read-only.
var ErrSeedChangeUnsupported = errors.New("client seed cannot be changed")

// SetClientSeed replaces the player's client seed. The nonce keeps counting
// so a (client seed, nonce) pair is never drawn twice in an epoch. An empty
// seed picks a random one. It is refused while a session is live so the
// draws of that game stay on one seed pair.
func (s *Service) SetClientSeed(ctx context.Context, playerID, clientSeed string) (fair.PlayerSeedState, error) {
	setter, ok := s.states.(ClientSeedSetter)
	if !ok {
		return fair.PlayerSeedState{}, ErrSeedChangeUnsupported
	}
	if len(clientSeed) > MaxClientSeedLen {
		return fair.PlayerSeedState{}, fmt.Errorf("%w: client seed longer than %d bytes", games.ErrInvalidParameter, MaxClientSeedLen)
	}
	if clientSeed == "" {
		var err error
		if clientSeed, err = fair.NewClientSeed(); err != nil {
			return fair.PlayerSeedState{}, err
		}
	}
	var st fair.PlayerSeedState
	err := s.registry.Hold(playerID, func() error {
		var err error
		st, err = setter.SetClientSeed(ctx, playerID, clientSeed)
		return err
	})
	if errors.Is(err, session.ErrSessionConflict) {
		return fair.PlayerSeedState{}, fmt.Errorf("%w: finish the active game first", err)
	}
	if err != nil {
		return fair.PlayerSeedState{}, err
	}
	s.logger.Info("client seed changed", "player", playerID)
	return st, nil
}

// SeedState returns the player's seed state, creating it on first use.
func (s *Service) SeedState(ctx context.Context, playerID string) (fair.PlayerSeedState, error) {
	return fair.Ensure(ctx, s.states, playerID)
}
