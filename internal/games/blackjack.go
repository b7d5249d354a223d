package games

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MJE43/pf-casino-engine/internal/engine"
	"github.com/shopspring/decimal"
)

// BlackjackState is a node of the linear Betting → PlayerTurn → DealerTurn → Ended machine.
type BlackjackState int

const (
	BlackjackBetting BlackjackState = iota
	BlackjackPlayerTurn
	BlackjackDealerTurn
	BlackjackEnded
)

func (s BlackjackState) String() string {
	switch s {
	case BlackjackBetting:
		return "betting"
	case BlackjackPlayerTurn:
		return "player_turn"
	case BlackjackDealerTurn:
		return "dealer_turn"
	case BlackjackEnded:
		return "ended"
	default:
		return fmt.Sprintf("BlackjackState(%d)", int(s))
	}
}

func (s BlackjackState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Blackjack outcome multipliers (total return per unit bet).
var (
	blackjackNaturalPays = decimal.RequireFromString("2.375")
	blackjackWinPays     = decimal.RequireFromString("1.9")
	blackjackPushPays    = decimal.NewFromInt(1)
)

// dealerStandsOn is the total at which the dealer stops drawing, soft or hard.
const dealerStandsOn = 17

// Blackjack is one hand against the dealer dealt from a fairly shuffled shoe.
type Blackjack struct {
	bet    decimal.Decimal
	player []Card
	dealer []Card
	shoe   []Card
	state  BlackjackState
	draw   engine.FairResult
	result *PayoutRecord
}

// NewBlackjack consumes one draw in [0, 1e9] to key the shoe shuffle and
// deals P/D/P/D. A two-card 21 ends the hand immediately.
func NewBlackjack(ctx context.Context, d Drawer, playerID string, bet decimal.Decimal, s engine.Shuffler) (*Blackjack, error) {
	if err := ValidateBet(bet); err != nil {
		return nil, err
	}
	res, err := d.Draw(ctx, playerID, 0, engine.ShuffleSeedMax)
	if err != nil {
		return nil, fmt.Errorf("blackjack shuffle draw: %w", err)
	}
	bj := dealBlackjack(bet, ShuffledShoe(s, res.Value, ShoeDecks))
	bj.draw = res
	return bj, nil
}

func dealBlackjack(bet decimal.Decimal, shoe []Card) *Blackjack {
	bj := &Blackjack{bet: bet, shoe: shoe, state: BlackjackBetting}
	bj.player = append(bj.player, bj.next())
	bj.dealer = append(bj.dealer, bj.next())
	bj.player = append(bj.player, bj.next())
	bj.dealer = append(bj.dealer, bj.next())
	if HandValue(bj.player) == 21 {
		bj.state = BlackjackEnded
	} else {
		bj.state = BlackjackPlayerTurn
	}
	return bj
}

func (bj *Blackjack) next() Card {
	c := bj.shoe[0]
	bj.shoe = bj.shoe[1:]
	return c
}

// Hit draws one card for the player. Over 21 ends the hand; exactly 21
// hands over to the dealer, who plays out.
func (bj *Blackjack) Hit() (BlackjackState, error) {
	if bj.state != BlackjackPlayerTurn {
		return bj.state, fmt.Errorf("%w: hit in state %s", ErrInvalidTransition, bj.state)
	}
	bj.player = append(bj.player, bj.next())
	switch v := HandValue(bj.player); {
	case v > 21:
		bj.state = BlackjackEnded
	case v == 21:
		bj.state = BlackjackDealerTurn
		bj.playDealer()
	}
	return bj.state, nil
}

// Stand ends the player's turn and plays the dealer out.
func (bj *Blackjack) Stand() (BlackjackState, error) {
	if bj.state != BlackjackPlayerTurn {
		return bj.state, fmt.Errorf("%w: stand in state %s", ErrInvalidTransition, bj.state)
	}
	bj.state = BlackjackDealerTurn
	bj.playDealer()
	return bj.state, nil
}

func (bj *Blackjack) playDealer() {
	for HandValue(bj.dealer) < dealerStandsOn {
		bj.dealer = append(bj.dealer, bj.next())
	}
	bj.state = BlackjackEnded
}

// Result settles an ended hand. It is computed once and then fixed.
func (bj *Blackjack) Result() (PayoutRecord, error) {
	if bj.state != BlackjackEnded {
		return PayoutRecord{}, fmt.Errorf("%w: hand still in state %s", ErrInvalidTransition, bj.state)
	}
	if bj.result == nil {
		mult, msg := bj.outcome()
		rec := Settle(bj.bet, mult, fmt.Sprintf("%s Player %s (%d) vs dealer %s (%d).",
			msg, formatHand(bj.player), HandValue(bj.player), formatHand(bj.dealer), HandValue(bj.dealer)))
		bj.result = &rec
	}
	return *bj.result, nil
}

func (bj *Blackjack) outcome() (decimal.Decimal, string) {
	pv, dv := HandValue(bj.player), HandValue(bj.dealer)
	switch {
	case pv > 21:
		return decimal.Zero, "Player busts, dealer wins."
	case dv > 21:
		return blackjackWinPays, "Dealer busts, player wins."
	case IsNatural(bj.player) && IsNatural(bj.dealer):
		return blackjackPushPays, "Push, both have blackjack."
	case IsNatural(bj.player):
		return blackjackNaturalPays, "Blackjack! Player wins 3:2."
	case pv > dv:
		return blackjackWinPays, "Player wins."
	case pv < dv:
		return decimal.Zero, "Dealer wins."
	default:
		return blackjackPushPays, "Push, bet returned."
	}
}

func (bj *Blackjack) State() BlackjackState { return bj.state }
func (bj *Blackjack) Bet() decimal.Decimal  { return bj.bet }

// ShuffleDraw is the fair draw that keyed the shoe.
func (bj *Blackjack) ShuffleDraw() engine.FairResult { return bj.draw }

// Player returns a copy of the player's hand.
func (bj *Blackjack) Player() []Card { return append([]Card(nil), bj.player...) }

// Dealer returns a copy of the dealer's hand.
func (bj *Blackjack) Dealer() []Card { return append([]Card(nil), bj.dealer...) }

// BlackjackView is what a player may see. The dealer's hole card stays
// hidden until the hand ends.
type BlackjackView struct {
	State       BlackjackState  `json:"state"`
	Bet         decimal.Decimal `json:"bet"`
	PlayerHand  []Card          `json:"player_hand"`
	PlayerValue int             `json:"player_value"`
	DealerHand  []Card          `json:"dealer_hand"`
	DealerValue int             `json:"dealer_value"`
	HoleHidden  bool            `json:"hole_hidden"`
	ClientSeed  string          `json:"client_seed"`
	Nonce       uint64          `json:"nonce"`
	Result      *PayoutRecord   `json:"result,omitempty"`
}

// View renders the hand for the player.
func (bj *Blackjack) View() BlackjackView {
	v := BlackjackView{
		State:       bj.state,
		Bet:         bj.bet,
		PlayerHand:  bj.Player(),
		PlayerValue: HandValue(bj.player),
		ClientSeed:  bj.draw.ClientSeed,
		Nonce:       bj.draw.Nonce,
	}
	if bj.state == BlackjackEnded {
		v.DealerHand = bj.Dealer()
		v.DealerValue = HandValue(bj.dealer)
		if rec, err := bj.Result(); err == nil {
			v.Result = &rec
		}
		return v
	}
	v.DealerHand = bj.Dealer()[:1]
	v.DealerValue = blackjackCardValue(bj.dealer[0].Rank)
	v.HoleHidden = true
	return v
}
