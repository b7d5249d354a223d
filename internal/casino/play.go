package casino

import (
	"context"
	"fmt"
	"time"

	"github.com/MJE43/pf-casino-engine/internal/games"
	"github.com/MJE43/pf-casino-engine/internal/session"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StartBlackjack debits bet and deals a hand. A natural settles at once.
func (s *Service) StartBlackjack(ctx context.Context, playerID string, bet decimal.Decimal) (games.BlackjackView, error) {
	var view games.BlackjackView
	err := s.start(ctx, playerID, games.VariantBlackjack, bet, func(sess *session.Session) (bool, error) {
		bj, err := games.NewBlackjack(ctx, s.drawer, playerID, bet, s.shuffler)
		if err != nil {
			return false, err
		}
		sess.Game = bj
		return s.blackjackStep(ctx, sess, bj, &view)
	})
	return view, err
}

// Hit draws a card for the player.
func (s *Service) Hit(ctx context.Context, playerID string) (games.BlackjackView, error) {
	return s.blackjackAction(ctx, playerID, (*games.Blackjack).Hit)
}

// Stand plays the dealer out and settles.
func (s *Service) Stand(ctx context.Context, playerID string) (games.BlackjackView, error) {
	return s.blackjackAction(ctx, playerID, (*games.Blackjack).Stand)
}

func (s *Service) blackjackAction(ctx context.Context, playerID string, act func(*games.Blackjack) (games.BlackjackState, error)) (games.BlackjackView, error) {
	var view games.BlackjackView
	err := s.registry.Do(playerID, func(sess *session.Session) (bool, error) {
		bj, err := gameAs[*games.Blackjack](sess, games.VariantBlackjack)
		if err != nil {
			return false, err
		}
		if _, err := act(bj); err != nil {
			return false, err
		}
		return s.blackjackStep(ctx, sess, bj, &view)
	})
	return view, err
}

func (s *Service) blackjackStep(ctx context.Context, sess *session.Session, bj *games.Blackjack, view *games.BlackjackView) (bool, error) {
	if bj.State() != games.BlackjackEnded {
		*view = bj.View()
		return false, nil
	}
	rec, err := bj.Result()
	if err != nil {
		return true, err
	}
	*view = bj.View()
	return true, s.settle(ctx, sess, rec, bj.ShuffleDraw())
}

// StartMines debits bet and lays a board with mineCount mines.
func (s *Service) StartMines(ctx context.Context, playerID string, bet decimal.Decimal, mineCount int) (games.MinesView, error) {
	if mineCount < games.MinMines || mineCount > games.MaxMines {
		return games.MinesView{}, fmt.Errorf("%w: mine count must be between %d and %d, got %d",
			games.ErrInvalidParameter, games.MinMines, games.MaxMines, mineCount)
	}
	var view games.MinesView
	err := s.start(ctx, playerID, games.VariantMines, bet, func(sess *session.Session) (bool, error) {
		m, err := games.NewMines(ctx, s.drawer, playerID, bet, mineCount, s.shuffler)
		if err != nil {
			return false, err
		}
		sess.Game = m
		view = m.View()
		return false, nil
	})
	return view, err
}

// Reveal opens a cell. Hitting a mine or clearing the board settles.
func (s *Service) Reveal(ctx context.Context, playerID string, cell int) (games.MinesView, error) {
	return s.minesAction(ctx, playerID, func(m *games.Mines) error {
		_, err := m.Reveal(cell)
		return err
	})
}

// CashOut settles the board at the current multiplier.
func (s *Service) CashOut(ctx context.Context, playerID string) (games.MinesView, error) {
	return s.minesAction(ctx, playerID, func(m *games.Mines) error {
		_, err := m.CashOut()
		return err
	})
}

func (s *Service) minesAction(ctx context.Context, playerID string, act func(*games.Mines) error) (games.MinesView, error) {
	var view games.MinesView
	err := s.registry.Do(playerID, func(sess *session.Session) (bool, error) {
		m, err := gameAs[*games.Mines](sess, games.VariantMines)
		if err != nil {
			return false, err
		}
		if err := act(m); err != nil {
			return false, err
		}
		view = m.View()
		if !m.Ended() {
			return false, nil
		}
		rec, err := m.Result()
		if err != nil {
			return true, err
		}
		return true, s.settle(ctx, sess, rec, m.ShuffleDraw())
	})
	return view, err
}

// StartRoulette debits bet and holds it on betType until Spin.
func (s *Service) StartRoulette(ctx context.Context, playerID string, bet decimal.Decimal, betType string) (games.RoulettePending, error) {
	bt, err := games.ParseRouletteBet(betType)
	if err != nil {
		return games.RoulettePending{}, err
	}
	pending := games.RoulettePending{Bet: bet, BetType: bt}
	err = s.start(ctx, playerID, games.VariantRoulette, bet, func(sess *session.Session) (bool, error) {
		p := pending
		sess.Game = &p
		return false, nil
	})
	return pending, err
}

// Spin resolves the pending roulette bet.
func (s *Service) Spin(ctx context.Context, playerID string) (games.RouletteOutcome, error) {
	var out games.RouletteOutcome
	err := s.registry.Do(playerID, func(sess *session.Session) (bool, error) {
		p, err := gameAs[*games.RoulettePending](sess, games.VariantRoulette)
		if err != nil {
			return false, err
		}
		out, err = p.Spin(ctx, s.drawer, playerID)
		if err != nil {
			return false, err
		}
		return true, s.settle(ctx, sess, out.Payout, out.Draw)
	})
	return out, err
}

// StartCoinflip debits bet and waits for the player's call.
func (s *Service) StartCoinflip(ctx context.Context, playerID string, bet decimal.Decimal) (games.CoinflipPending, error) {
	pending := games.CoinflipPending{Bet: bet}
	err := s.start(ctx, playerID, games.VariantCoinflip, bet, func(sess *session.Session) (bool, error) {
		p := pending
		sess.Game = &p
		return false, nil
	})
	return pending, err
}

// Flip resolves the pending coinflip on side.
func (s *Service) Flip(ctx context.Context, playerID, side string) (games.CoinflipOutcome, error) {
	sd, err := games.ParseSide(side)
	if err != nil {
		return games.CoinflipOutcome{}, err
	}
	var out games.CoinflipOutcome
	err = s.registry.Do(playerID, func(sess *session.Session) (bool, error) {
		p, err := gameAs[*games.CoinflipPending](sess, games.VariantCoinflip)
		if err != nil {
			return false, err
		}
		out, err = p.Flip(ctx, s.drawer, playerID, sd)
		if err != nil {
			return false, err
		}
		return true, s.settle(ctx, sess, out.Payout, out.Draw)
	})
	return out, err
}

// SessionView describes a player's live session.
type SessionView struct {
	ID        uuid.UUID       `json:"id"`
	Variant   games.Variant   `json:"variant"`
	Bet       decimal.Decimal `json:"bet"`
	CreatedAt time.Time       `json:"created_at"`
	Deadline  time.Time       `json:"deadline"`
	Game      any             `json:"game"`
}

// ActiveSession returns the player's live session, or session.ErrNoSession.
func (s *Service) ActiveSession(playerID string) (SessionView, error) {
	var v SessionView
	err := s.registry.Inspect(playerID, func(sess *session.Session) {
		v = SessionView{
			ID:        sess.ID,
			Variant:   sess.Variant,
			Bet:       sess.Bet,
			CreatedAt: sess.CreatedAt,
			Deadline:  sess.Deadline(),
		}
		switch g := sess.Game.(type) {
		case *games.Blackjack:
			v.Game = g.View()
		case *games.Mines:
			v.Game = g.View()
		case *games.RoulettePending:
			v.Game = *g
		case *games.CoinflipPending:
			v.Game = *g
		}
	})
	return v, err
}
