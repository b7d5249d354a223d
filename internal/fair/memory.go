package fair

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStates is an in-process SeedStateProvider.
type MemoryStates struct {
	mu     sync.Mutex
	states map[string]PlayerSeedState
}

// NewMemoryStates returns an empty provider.
func NewMemoryStates() *MemoryStates {
	return &MemoryStates{states: make(map[string]PlayerSeedState)}
}

func (m *MemoryStates) SeedState(ctx context.Context, playerID string) (PlayerSeedState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[playerID]
	if !ok {
		return PlayerSeedState{}, ErrNoSeedState
	}
	return st, nil
}

func (m *MemoryStates) CreateSeedState(ctx context.Context, playerID, clientSeed string) (PlayerSeedState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.states[playerID]; ok {
		return st, nil
	}
	st := PlayerSeedState{PlayerID: playerID, ClientSeed: clientSeed}
	m.states[playerID] = st
	return st, nil
}

func (m *MemoryStates) IncrementNonce(ctx context.Context, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[playerID]
	if !ok {
		return fmt.Errorf("%s: %w", playerID, ErrNoSeedState)
	}
	st.Nonce++
	m.states[playerID] = st
	return nil
}

// SetClientSeed replaces the client seed. The nonce carries on.
func (m *MemoryStates) SetClientSeed(ctx context.Context, playerID, clientSeed string) (PlayerSeedState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.states[playerID]
	st.PlayerID = playerID
	st.ClientSeed = clientSeed
	m.states[playerID] = st
	return st, nil
}
