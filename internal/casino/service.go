// Package casino runs games end to end: it reserves the player's session,
// debits the stake, drives the engine and settles the result against the
// ledger.
package casino

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MJE43/pf-casino-engine/internal/engine"
	"github.com/MJE43/pf-casino-engine/internal/fair"
	"github.com/MJE43/pf-casino-engine/internal/games"
	"github.com/MJE43/pf-casino-engine/internal/logging"
	"github.com/MJE43/pf-casino-engine/internal/session"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// forfeitWriteTimeout bounds the wager write done from a timer goroutine.
const forfeitWriteTimeout = 5 * time.Second

// EventKind names what an Event carries.
type EventKind string

const (
	// EventForfeit carries a session.Forfeit.
	EventForfeit EventKind = "forfeit"
	// EventUsageWarning carries a UsageWarning.
	EventUsageWarning EventKind = "usage_warning"
)

// Event is a notification fanned out to subscribers.
type Event struct {
	Kind     EventKind
	PlayerID string
	Data     any
}

// Deps are the collaborators of a Service. Wagers, Usage, Shuffler,
// Logger and Now are optional.
type Deps struct {
	Ledger   Ledger
	Wagers   WagerRecorder
	Usage    UsageTracker
	States   fair.SeedStateProvider
	Drawer   games.Drawer
	Shuffler engine.Shuffler
	Timeouts map[games.Variant]time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

// Service is the entry point for every game action.
type Service struct {
	ledger   Ledger
	wagers   WagerRecorder
	usage    UsageTracker
	states   fair.SeedStateProvider
	drawer   games.Drawer
	shuffler engine.Shuffler
	registry *session.Registry
	logger   *slog.Logger
	now      func() time.Time

	subsMu  sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// NewService wires a service and its session registry.
func NewService(d Deps) *Service {
	s := &Service{
		ledger:   d.Ledger,
		wagers:   d.Wagers,
		usage:    d.Usage,
		states:   d.States,
		drawer:   d.Drawer,
		shuffler: d.Shuffler,
		logger:   d.Logger,
		now:      d.Now,
		subs:     make(map[int]chan Event),
	}
	if s.shuffler == nil {
		s.shuffler = engine.FisherYates{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.registry = session.NewRegistry(
		session.WithTimeouts(d.Timeouts),
		session.WithForfeitHandler(s.handleForfeit),
		session.WithLogger(s.logger),
		session.WithClock(s.now),
	)
	return s
}

// Registry exposes the live sessions.
func (s *Service) Registry() *session.Registry { return s.registry }

// Close stops every session timer.
func (s *Service) Close() {
	s.registry.Close()
	s.subsMu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.subsMu.Unlock()
}

// Balance reads the player's ledger balance.
func (s *Service) Balance(ctx context.Context, playerID string) (decimal.Decimal, error) {
	return s.ledger.Balance(ctx, playerID)
}

// start is the shared start path: it checks the stake, materialises the
// player's seed state, then reserves the session and debits inside it.
// build runs after the debit; if it fails before settling, the stake is
// refunded.
func (s *Service) start(ctx context.Context, playerID string, v games.Variant, bet decimal.Decimal, build func(*session.Session) (done bool, err error)) error {
	if err := games.ValidateBet(bet); err != nil {
		return err
	}
	if _, err := fair.Ensure(ctx, s.states, playerID); err != nil {
		return fmt.Errorf("seed state for %s: %w", playerID, err)
	}
	_, err := s.registry.Start(playerID, v, bet, func(sess *session.Session) (bool, error) {
		if err := s.ledger.Debit(ctx, playerID, bet); err != nil {
			if errors.Is(err, ErrInsufficientFunds) {
				return false, fmt.Errorf("%w: %w", games.ErrInvalidBet, err)
			}
			return false, fmt.Errorf("debit %s: %w", playerID, err)
		}
		done, err := build(sess)
		if err != nil && !done {
			if rerr := s.ledger.Credit(ctx, playerID, bet); rerr != nil {
				s.logger.Error("stake refund failed", "player", playerID, "bet", bet.String(), logging.Err(rerr))
			}
		}
		return done, err
	})
	return err
}

// settle credits the gross payout and records the wager. It runs inside
// the session's critical section.
func (s *Service) settle(ctx context.Context, sess *session.Session, rec games.PayoutRecord, draw engine.FairResult) error {
	var err error
	if rec.GrossPayout.IsPositive() {
		if cerr := s.ledger.Credit(ctx, sess.PlayerID, rec.GrossPayout); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("credit payout: %w", cerr))
		}
	}
	w := Wager{
		ID:          uuid.New(),
		SessionID:   sess.ID,
		PlayerID:    sess.PlayerID,
		Variant:     sess.Variant,
		Bet:         sess.Bet,
		Multiplier:  rec.Multiplier,
		Payout:      rec.GrossPayout,
		NetChange:   rec.NetChange,
		Description: rec.Description,
		ClientSeed:  draw.ClientSeed,
		Nonce:       draw.Nonce,
		Epoch:       draw.Epoch,
		CreatedAt:   s.now(),
	}
	if s.wagers != nil {
		if werr := s.wagers.RecordWager(ctx, w); werr != nil {
			err = multierr.Append(err, fmt.Errorf("record wager: %w", werr))
		}
	}
	s.logger.Info("game settled",
		"player", sess.PlayerID,
		"variant", sess.Variant,
		"bet", sess.Bet.String(),
		"net", rec.NetChange.String(),
		"nonce", draw.Nonce,
	)
	s.trackUsage(ctx, sess.PlayerID, sess.Bet, rec.NetChange)
	return err
}

func (s *Service) handleForfeit(f session.Forfeit) {
	if s.wagers != nil {
		ctx, cancel := context.WithTimeout(context.Background(), forfeitWriteTimeout)
		err := s.wagers.RecordWager(ctx, Wager{
			ID:          uuid.New(),
			SessionID:   f.SessionID,
			PlayerID:    f.PlayerID,
			Variant:     f.Variant,
			Bet:         f.Bet,
			Multiplier:  decimal.Zero,
			Payout:      decimal.Zero,
			NetChange:   f.Bet.Neg(),
			Description: "Forfeited after timeout.",
			Forfeited:   true,
			CreatedAt:   f.At,
		})
		cancel()
		if err != nil {
			s.logger.Error("record forfeit failed", "player", f.PlayerID, logging.Err(err))
		}
	}
	s.publish(Event{Kind: EventForfeit, PlayerID: f.PlayerID, Data: f})

	ctx, cancel := context.WithTimeout(context.Background(), forfeitWriteTimeout)
	defer cancel()
	s.trackUsage(ctx, f.PlayerID, f.Bet, f.Bet.Neg())
}

// trackUsage adds a settled stake to the player's daily tally and publishes
// a warning when a threshold is crossed. net is the game's effect on the
// balance, so the balance before the game is the current one minus net.
// Failures are logged; the game has already settled.
func (s *Service) trackUsage(ctx context.Context, playerID string, bet, net decimal.Decimal) {
	if s.usage == nil {
		return
	}
	at := s.now()
	u, err := s.usage.AddUsage(ctx, playerID, bet, at)
	if err != nil {
		s.logger.Error("usage tally failed", "player", playerID, logging.Err(err))
		return
	}
	bal, err := s.ledger.Balance(ctx, playerID)
	if err != nil {
		s.logger.Error("usage balance read failed", "player", playerID, logging.Err(err))
		return
	}
	w, ok := EvaluateUsage(u, bal.Sub(net), at)
	if !ok {
		return
	}
	if err := s.usage.MarkUsageWarned(ctx, w); err != nil {
		s.logger.Error("usage warning not recorded", "player", playerID, logging.Err(err))
		return
	}
	s.logger.Warn("usage warning",
		"player", playerID,
		"reason", string(w.Reason),
		"wagered", w.Wagered.String(),
		"percent", w.Percent,
		"play_minutes", w.PlayMinutes,
	)
	s.publish(Event{Kind: EventUsageWarning, PlayerID: playerID, Data: w})
}

// Subscribe returns a channel of forfeit and usage warning events and a
// cancel func. Slow subscribers miss events rather than block the sender.
func (s *Service) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
			s.subsMu.Unlock()
		})
	}
}

func (s *Service) publish(ev Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("event subscriber lagging, dropped notification", "player", ev.PlayerID, "kind", string(ev.Kind))
		}
	}
}

// gameAs extracts the engine state of the expected type.
func gameAs[T any](sess *session.Session, want games.Variant) (T, error) {
	g, ok := sess.Game.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: active game is %s, not %s", games.ErrInvalidTransition, sess.Variant, want)
	}
	return g, nil
}
