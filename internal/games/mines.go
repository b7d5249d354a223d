package games

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MJE43/pf-casino-engine/internal/engine"
	"github.com/shopspring/decimal"
)

const (
	MinesCells = 25
	MinMines   = 1
	MaxMines   = 24
)

// CellState is what a player sees on one tile.
type CellState int

const (
	CellHidden CellState = iota
	CellRevealed
	CellMine
)

func (c CellState) String() string {
	switch c {
	case CellRevealed:
		return "revealed"
	case CellMine:
		return "mine"
	default:
		return "hidden"
	}
}

func (c CellState) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// Mines is a 5x5 board with mineCount mines placed by a keyed shuffle.
type Mines struct {
	bet       decimal.Decimal
	mineCount int
	mines     [MinesCells]bool
	cells     [MinesCells]CellState
	safe      int
	ended     bool
	draw      engine.FairResult
	result    *PayoutRecord
}

// NewMines consumes one draw in [0, 1e9], shuffles 0..24 with it and mines
// the first mineCount positions of the permutation.
func NewMines(ctx context.Context, d Drawer, playerID string, bet decimal.Decimal, mineCount int, s engine.Shuffler) (*Mines, error) {
	if err := ValidateBet(bet); err != nil {
		return nil, err
	}
	if mineCount < MinMines || mineCount > MaxMines {
		return nil, fmt.Errorf("%w: mine count must be between %d and %d, got %d", ErrInvalidParameter, MinMines, MaxMines, mineCount)
	}
	res, err := d.Draw(ctx, playerID, 0, engine.ShuffleSeedMax)
	if err != nil {
		return nil, fmt.Errorf("mines shuffle draw: %w", err)
	}
	m := layMines(bet, mineCount, engine.Permutation(s, res.Value, MinesCells))
	m.draw = res
	return m, nil
}

func layMines(bet decimal.Decimal, mineCount int, perm []int) *Mines {
	m := &Mines{bet: bet, mineCount: mineCount}
	for _, pos := range perm[:mineCount] {
		m.mines[pos] = true
	}
	return m
}

// Reveal opens a cell. A mine ends the session as a total loss and shows
// every mine. The last safe cell cashes out automatically.
func (m *Mines) Reveal(cell int) (hitMine bool, err error) {
	if m.ended {
		return false, fmt.Errorf("%w: board already settled", ErrInvalidTransition)
	}
	if cell < 0 || cell >= MinesCells {
		return false, fmt.Errorf("%w: cell %d outside 0..%d", ErrInvalidParameter, cell, MinesCells-1)
	}
	if m.cells[cell] != CellHidden {
		return false, fmt.Errorf("%w: cell %d", ErrAlreadyRevealed, cell)
	}
	if m.mines[cell] {
		for i, mined := range m.mines {
			if mined {
				m.cells[i] = CellMine
			}
		}
		m.finish(Settle(m.bet, decimal.Zero, fmt.Sprintf("Hit a mine on cell %d after %d safe clicks.", cell, m.safe)))
		return true, nil
	}
	m.cells[cell] = CellRevealed
	m.safe++
	if m.safe == MinesCells-m.mineCount {
		m.cashOut("Board cleared, cashed out automatically.")
	}
	return false, nil
}

// CashOut settles at the current multiplier. At least one safe reveal is required.
func (m *Mines) CashOut() (PayoutRecord, error) {
	if m.ended {
		return PayoutRecord{}, fmt.Errorf("%w: board already settled", ErrInvalidTransition)
	}
	if m.safe < 1 {
		return PayoutRecord{}, fmt.Errorf("%w: reveal a cell before cashing out", ErrInvalidTransition)
	}
	m.cashOut("Cashed out.")
	return *m.result, nil
}

func (m *Mines) cashOut(msg string) {
	mult := m.CurrentMultiplier()
	m.finish(Settle(m.bet, mult, fmt.Sprintf("%s %d safe clicks with %d mines at %sx.", msg, m.safe, m.mineCount, mult.StringFixed(2))))
}

func (m *Mines) finish(rec PayoutRecord) {
	m.ended = true
	m.result = &rec
}

// Result returns the settlement once the board has ended.
func (m *Mines) Result() (PayoutRecord, error) {
	if !m.ended {
		return PayoutRecord{}, fmt.Errorf("%w: board still in play", ErrInvalidTransition)
	}
	return *m.result, nil
}

func (m *Mines) Ended() bool          { return m.ended }
func (m *Mines) MineCount() int       { return m.mineCount }
func (m *Mines) SafeClicks() int      { return m.safe }
func (m *Mines) Bet() decimal.Decimal { return m.bet }

// ShuffleDraw is the fair draw that placed the mines.
func (m *Mines) ShuffleDraw() engine.FairResult { return m.draw }

// CurrentMultiplier is the cash-out multiplier for the safe clicks so far.
func (m *Mines) CurrentMultiplier() decimal.Decimal {
	return MinesMultiplier(m.mineCount, m.safe)
}

// CurrentPayout is bet * CurrentMultiplier.
func (m *Mines) CurrentPayout() decimal.Decimal {
	return m.bet.Mul(m.CurrentMultiplier())
}

// MinePositions lists mined cells in ascending order.
func (m *Mines) MinePositions() []int {
	var out []int
	for i, mined := range m.mines {
		if mined {
			out = append(out, i)
		}
	}
	return out
}

// MinesView is the player's picture of the board. Mine positions are only
// included after the board has ended.
type MinesView struct {
	Bet               decimal.Decimal `json:"bet"`
	MineCount         int             `json:"mine_count"`
	SafeClicks        int             `json:"safe_clicks"`
	Cells             []CellState     `json:"cells"`
	CurrentMultiplier decimal.Decimal `json:"current_multiplier"`
	CurrentPayout     decimal.Decimal `json:"current_payout"`
	Ended             bool            `json:"ended"`
	MinePositions     []int           `json:"mine_positions,omitempty"`
	ClientSeed        string          `json:"client_seed"`
	Nonce             uint64          `json:"nonce"`
	Result            *PayoutRecord   `json:"result,omitempty"`
}

// View renders the board for the player.
func (m *Mines) View() MinesView {
	v := MinesView{
		Bet:               m.bet,
		MineCount:         m.mineCount,
		SafeClicks:        m.safe,
		Cells:             append([]CellState(nil), m.cells[:]...),
		CurrentMultiplier: m.CurrentMultiplier(),
		CurrentPayout:     m.CurrentPayout(),
		Ended:             m.ended,
		ClientSeed:        m.draw.ClientSeed,
		Nonce:             m.draw.Nonce,
	}
	if m.ended {
		v.MinePositions = m.MinePositions()
		v.Result = m.result
	}
	return v
}
