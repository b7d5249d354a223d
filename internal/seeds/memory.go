package seeds

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryHistory is an in-process History. It forgets everything on restart.
type MemoryHistory struct {
	mu    sync.RWMutex
	seeds map[int64]Seed
}

// NewMemoryHistory returns an empty history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{seeds: make(map[int64]Seed)}
}

func (h *MemoryHistory) AppendSeed(ctx context.Context, seed Seed) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.seeds[seed.Epoch]; ok {
		return false, nil
	}
	h.seeds[seed.Epoch] = seed
	return true, nil
}

func (h *MemoryHistory) SeedByEpoch(ctx context.Context, epoch int64) (Seed, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	seed, ok := h.seeds[epoch]
	if !ok {
		return Seed{}, fmt.Errorf("epoch %d: %w", epoch, ErrSeedNotFound)
	}
	return seed, nil
}

func (h *MemoryHistory) SeedsBetween(ctx context.Context, from, to time.Time) ([]Seed, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []Seed
	for _, seed := range h.seeds {
		if seed.PostedAt.Before(from) || seed.PostedAt.After(to) {
			continue
		}
		out = append(out, seed)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Epoch < out[j].Epoch })
	return out, nil
}

func (h *MemoryHistory) LatestSeed(ctx context.Context) (Seed, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var latest Seed
	for _, seed := range h.seeds {
		if latest.IsZero() || seed.Epoch > latest.Epoch {
			latest = seed
		}
	}
	if latest.IsZero() {
		return Seed{}, ErrSeedNotFound
	}
	return latest, nil
}

func (h *MemoryHistory) RevealBefore(ctx context.Context, epoch int64) ([]int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []int64
	for e, seed := range h.seeds {
		if e < epoch && !seed.Revealed {
			seed.Revealed = true
			h.seeds[e] = seed
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
