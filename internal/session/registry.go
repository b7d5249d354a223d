// Package session keeps at most one live game per player and forfeits
// sessions that sit idle past their variant's timeout.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MJE43/pf-casino-engine/internal/games"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrSessionConflict = errors.New("player already has an active session")
	ErrNoSession       = errors.New("no active session")
	ErrClosed          = errors.New("session registry closed")
)

// DefaultTimeouts are the idle limits per variant.
func DefaultTimeouts() map[games.Variant]time.Duration {
	return map[games.Variant]time.Duration{
		games.VariantBlackjack: 180 * time.Second,
		games.VariantMines:     180 * time.Second,
		games.VariantRoulette:  60 * time.Second,
		games.VariantCoinflip:  60 * time.Second,
	}
}

// Session is one player's live game. Game holds the engine state
// (*games.Blackjack, *games.Mines, *games.RoulettePending or
// *games.CoinflipPending) and is only touched inside Start, Do or Inspect.
type Session struct {
	ID        uuid.UUID
	PlayerID  string
	Variant   games.Variant
	Bet       decimal.Decimal
	CreatedAt time.Time
	Game      any

	mu       sync.Mutex
	gen      uint64
	timer    *time.Timer
	deadline time.Time
	ended    bool
}

// Deadline is when the session forfeits if no action arrives.
func (s *Session) Deadline() time.Time { return s.deadline }

// Forfeit reports a session evicted by timeout. The bet is not refunded.
type Forfeit struct {
	SessionID uuid.UUID       `json:"session_id"`
	PlayerID  string          `json:"player_id"`
	Variant   games.Variant   `json:"variant"`
	Bet       decimal.Decimal `json:"forfeited_bet"`
	At        time.Time       `json:"at"`
}

// Option configures a Registry.
type Option func(*Registry)

// WithTimeouts overrides the idle limit for the listed variants.
func WithTimeouts(t map[games.Variant]time.Duration) Option {
	return func(r *Registry) {
		for v, d := range t {
			if d > 0 {
				r.timeouts[v] = d
			}
		}
	}
}

// WithForfeitHandler sets the callback run once per timed-out session.
func WithForfeitHandler(fn func(Forfeit)) Option {
	return func(r *Registry) { r.onForfeit = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// Registry maps player → live session.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	closed    bool
	timeouts  map[games.Variant]time.Duration
	onForfeit func(Forfeit)
	logger    *slog.Logger
	now       func() time.Time
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		timeouts: DefaultTimeouts(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Timeout returns the idle limit for a variant.
func (r *Registry) Timeout(v games.Variant) time.Duration {
	return r.timeouts[v]
}

// Start reserves the player's slot and runs init under the new session's
// lock. A concurrent Start for the same player gets ErrSessionConflict.
// If init fails the reservation is released; if init reports done the
// game resolved immediately and the session is removed.
func (r *Registry) Start(playerID string, variant games.Variant, bet decimal.Decimal, init func(*Session) (done bool, err error)) (*Session, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	if cur, ok := r.sessions[playerID]; ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s game in progress", ErrSessionConflict, cur.Variant)
	}
	s := &Session{
		ID:        uuid.New(),
		PlayerID:  playerID,
		Variant:   variant,
		Bet:       bet,
		CreatedAt: r.now(),
	}
	s.mu.Lock()
	r.sessions[playerID] = s
	r.mu.Unlock()
	defer s.mu.Unlock()

	done, err := init(s)
	if err != nil || done {
		s.ended = true
		r.remove(s)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	r.arm(s)
	r.logger.Debug("session started", "player", playerID, "variant", variant, "session", s.ID)
	return s, nil
}

// holdVariant names the placeholder session a Hold puts in the slot.
const holdVariant games.Variant = "account-change"

// Hold runs fn with the player's slot reserved, so no game can start until
// it returns. It fails with ErrSessionConflict while a game is live.
func (r *Registry) Hold(playerID string, fn func() error) error {
	_, err := r.Start(playerID, holdVariant, decimal.Zero, func(*Session) (bool, error) {
		return true, fn()
	})
	return err
}

// Do runs one player action on the live session. The pending timeout is
// cancelled first and re-armed afterwards unless fn reports done, in which
// case the session is removed. A session already evicted yields ErrNoSession.
func (r *Registry) Do(playerID string, fn func(*Session) (done bool, err error)) error {
	s, ok := r.lookup(playerID)
	if !ok {
		return ErrNoSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return ErrNoSession
	}
	r.disarm(s)
	done, err := fn(s)
	if done {
		s.ended = true
		r.remove(s)
		return err
	}
	r.arm(s)
	return err
}

// Inspect runs fn against the live session without touching its timer.
func (r *Registry) Inspect(playerID string, fn func(*Session)) error {
	s, ok := r.lookup(playerID)
	if !ok {
		return ErrNoSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return ErrNoSession
	}
	fn(s)
	return nil
}

// Get returns the player's live session, if any. Game state must only be
// read through Inspect.
func (r *Registry) Get(playerID string) (*Session, bool) {
	return r.lookup(playerID)
}

// End removes the player's session without a forfeit notification.
func (r *Registry) End(playerID string) bool {
	s, ok := r.lookup(playerID)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return false
	}
	r.disarm(s)
	s.ended = true
	r.remove(s)
	return true
}

// Len is the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops every timer and drops all sessions. No forfeits fire afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	live := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		live = append(live, s)
	}
	r.sessions = make(map[string]*Session)
	r.closed = true
	r.mu.Unlock()

	for _, s := range live {
		s.mu.Lock()
		r.disarm(s)
		s.ended = true
		s.mu.Unlock()
	}
}

func (r *Registry) lookup(playerID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[playerID]
	return s, ok
}

func (r *Registry) remove(s *Session) {
	r.mu.Lock()
	if r.sessions[s.PlayerID] == s {
		delete(r.sessions, s.PlayerID)
	}
	r.mu.Unlock()
}

// arm and disarm require s.mu. Bumping gen turns an already-fired timer
// callback into a no-op.
func (r *Registry) arm(s *Session) {
	d := r.timeouts[s.Variant]
	if d <= 0 {
		return
	}
	s.gen++
	gen := s.gen
	s.deadline = r.now().Add(d)
	s.timer = time.AfterFunc(d, func() { r.expire(s, gen) })
}

func (r *Registry) disarm(s *Session) {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (r *Registry) expire(s *Session, gen uint64) {
	s.mu.Lock()
	if s.ended || s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.timer = nil
	r.remove(s)
	f := Forfeit{SessionID: s.ID, PlayerID: s.PlayerID, Variant: s.Variant, Bet: s.Bet, At: r.now()}
	s.mu.Unlock()

	r.logger.Info("session forfeited", "player", f.PlayerID, "variant", f.Variant, "bet", f.Bet.String(), "session", f.SessionID)
	if r.onForfeit != nil {
		r.onForfeit(f)
	}
}
