package fair

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/MJE43/pf-casino-engine/internal/engine"
	"github.com/MJE43/pf-casino-engine/internal/seeds"
)

var (
	// ErrNoSeedState means the player has no client seed yet. Callers must
	// materialise one (see Ensure) before drawing.
	ErrNoSeedState = errors.New("no seed state for player")
	// ErrNoActiveSeed means the seed store has not rotated yet.
	ErrNoActiveSeed = errors.New("no active server seed")
	// ErrInvalidRange is returned for max < min.
	ErrInvalidRange = errors.New("invalid draw range")
)

// PlayerSeedState is the per-player half of a draw's input.
type PlayerSeedState struct {
	PlayerID   string `json:"player_id"`
	ClientSeed string `json:"client_seed"`
	Nonce      uint64 `json:"nonce"`
}

// SeedStateProvider owns client seeds and nonces. The generator only reads
// it; the nonce moves when a caller signals IncrementNonce.
type SeedStateProvider interface {
	SeedState(ctx context.Context, playerID string) (PlayerSeedState, error)
	// CreateSeedState stores clientSeed for a player that has none and
	// returns the existing state otherwise.
	CreateSeedState(ctx context.Context, playerID, clientSeed string) (PlayerSeedState, error)
	IncrementNonce(ctx context.Context, playerID string) error
}

// SeedSource exposes the active server seed.
type SeedSource interface {
	Current() seeds.Seed
}

// Generator draws fair integers for players.
type Generator struct {
	seeds  SeedSource
	states SeedStateProvider
}

// NewGenerator wires a generator to its two inputs.
func NewGenerator(src SeedSource, states SeedStateProvider) *Generator {
	return &Generator{seeds: src, states: states}
}

// Draw returns a value in [min, max] derived from the active secret seed and
// the player's client seed and nonce. Player state is not modified.
func (g *Generator) Draw(ctx context.Context, playerID string, min, max int64) (engine.FairResult, error) {
	if max < min {
		return engine.FairResult{}, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, min, max)
	}
	seed := g.seeds.Current()
	if seed.IsZero() {
		return engine.FairResult{}, ErrNoActiveSeed
	}
	state, err := g.states.SeedState(ctx, playerID)
	if err != nil {
		return engine.FairResult{}, fmt.Errorf("seed state for %s: %w", playerID, err)
	}
	return engine.FairResult{
		Value:      engine.FairInt(seed.SecretSeed, state.ClientSeed, state.Nonce, min, max),
		ClientSeed: state.ClientSeed,
		Nonce:      state.Nonce,
		Epoch:      seed.Epoch,
		Min:        min,
		Max:        max,
	}, nil
}

// AdvancingDrawer consumes exactly one nonce per successful draw.
type AdvancingDrawer struct {
	gen    *Generator
	states SeedStateProvider
}

// NewAdvancingDrawer wraps gen so every draw is followed by IncrementNonce.
func NewAdvancingDrawer(gen *Generator) *AdvancingDrawer {
	return &AdvancingDrawer{gen: gen, states: gen.states}
}

// Draw implements games.Drawer.
func (d *AdvancingDrawer) Draw(ctx context.Context, playerID string, min, max int64) (engine.FairResult, error) {
	res, err := d.gen.Draw(ctx, playerID, min, max)
	if err != nil {
		return engine.FairResult{}, err
	}
	if err := d.states.IncrementNonce(ctx, playerID); err != nil {
		return engine.FairResult{}, fmt.Errorf("advance nonce for %s: %w", playerID, err)
	}
	return res, nil
}

// NewClientSeed returns a random 128-bit hex client seed.
func NewClientSeed() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("generate client seed: %w", err)
	}
	return hex.EncodeToString(b[:]), nil
}

// Ensure returns the player's seed state, creating a default one
// (random client seed, nonce 0) on first interaction.
func Ensure(ctx context.Context, states SeedStateProvider, playerID string) (PlayerSeedState, error) {
	state, err := states.SeedState(ctx, playerID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, ErrNoSeedState) {
		return PlayerSeedState{}, err
	}
	clientSeed, err := NewClientSeed()
	if err != nil {
		return PlayerSeedState{}, err
	}
	return states.CreateSeedState(ctx, playerID, clientSeed)
}

// Verify recomputes a draw once its epoch's secret is known.
func Verify(secretSeed string, res engine.FairResult) bool {
	return engine.FairInt(secretSeed, res.ClientSeed, res.Nonce, res.Min, res.Max) == res.Value
}
