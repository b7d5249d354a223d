package games

import (
	"context"
	"errors"
	"testing"

	"github.com/MJE43/pf-casino-engine/internal/engine"
)

func cards(ranks ...string) []Card {
	out := make([]Card, len(ranks))
	for i, r := range ranks {
		out[i] = Card{Rank: r, Suit: "♠"}
	}
	return out
}

// shoeDealing arranges a shoe so that the P/D/P/D deal produces the given
// hands, followed by rest.
func shoeDealing(player, dealer []string, rest ...string) []Card {
	order := []string{player[0], dealer[0], player[1], dealer[1]}
	return cards(append(order, rest...)...)
}

func TestHandValue(t *testing.T) {
	tests := []struct {
		hand []string
		want int
	}{
		{[]string{"A", "10"}, 21},
		{[]string{"A", "A", "9"}, 21},
		{[]string{"K", "Q", "2"}, 22},
		{[]string{"A", "A"}, 12},
		{[]string{"A", "6"}, 17},
		{[]string{"A", "6", "10"}, 17},
		{[]string{"5", "J"}, 15},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := HandValue(cards(tt.hand...)); got != tt.want {
			t.Errorf("HandValue(%v) = %d, want %d", tt.hand, got, tt.want)
		}
	}
}

func TestNewShoe(t *testing.T) {
	shoe := NewShoe(ShoeDecks)
	if len(shoe) != 312 {
		t.Fatalf("shoe has %d cards, want 312", len(shoe))
	}
	if shoe[0] != (Card{Rank: "2", Suit: "♠"}) || shoe[12] != (Card{Rank: "A", Suit: "♠"}) || shoe[13] != (Card{Rank: "2", Suit: "♥"}) {
		t.Errorf("unexpected deck order: %v %v %v", shoe[0], shoe[12], shoe[13])
	}
	counts := make(map[Card]int)
	for _, c := range shoe {
		counts[c]++
	}
	if len(counts) != 52 {
		t.Errorf("expected 52 distinct cards, got %d", len(counts))
	}
	for c, n := range counts {
		if n != ShoeDecks {
			t.Errorf("%s appears %d times", c, n)
		}
	}
}

func TestNaturalScenario(t *testing.T) {
	bj := dealBlackjack(dec("10"), shoeDealing([]string{"A", "K"}, []string{"9", "7"}, "5", "5"))
	if bj.State() != BlackjackEnded {
		t.Fatalf("natural should end the hand, state %s", bj.State())
	}
	rec, err := bj.Result()
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if !rec.NetChange.Equal(dec("13.75")) {
		t.Errorf("net change = %s, want 13.75", rec.NetChange)
	}
	if !rec.Multiplier.Equal(dec("2.375")) {
		t.Errorf("multiplier = %s, want 2.375", rec.Multiplier)
	}
	if len(bj.Dealer()) != 2 {
		t.Errorf("dealer must not draw after a player natural, has %d cards", len(bj.Dealer()))
	}
	if _, err := bj.Hit(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Hit after end: expected ErrInvalidTransition, got %v", err)
	}
}

func TestBlackjackOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		player []string
		dealer []string
		rest   []string
		hits   int
		want   string
	}{
		{"both natural", []string{"A", "K"}, []string{"A", "Q"}, nil, 0, "1"},
		{"player bust", []string{"10", "6"}, []string{"10", "7"}, []string{"K"}, 1, "0"},
		{"dealer bust", []string{"10", "8"}, []string{"10", "6"}, []string{"9"}, 0, "1.9"},
		{"higher wins", []string{"10", "9"}, []string{"10", "7"}, nil, 0, "1.9"},
		{"push", []string{"10", "8"}, []string{"J", "8"}, nil, 0, "1"},
		{"lower loses", []string{"10", "7"}, []string{"10", "9"}, nil, 0, "0"},
		{"three-card 21 pushes against dealer natural", []string{"5", "6"}, []string{"A", "K"}, []string{"10"}, 1, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bj := dealBlackjack(dec("10"), shoeDealing(tt.player, tt.dealer, tt.rest...))
			for i := 0; i < tt.hits; i++ {
				if _, err := bj.Hit(); err != nil {
					t.Fatalf("Hit failed: %v", err)
				}
			}
			if bj.State() == BlackjackPlayerTurn {
				if _, err := bj.Stand(); err != nil {
					t.Fatalf("Stand failed: %v", err)
				}
			}
			rec, err := bj.Result()
			if err != nil {
				t.Fatalf("Result failed: %v", err)
			}
			if !rec.Multiplier.Equal(dec(tt.want)) {
				t.Errorf("multiplier = %s, want %s (%s)", rec.Multiplier, tt.want, rec.Description)
			}
			if want := dec("10").Mul(dec(tt.want)).Sub(dec("10")); !rec.NetChange.Equal(want) {
				t.Errorf("net change = %s, want %s", rec.NetChange, want)
			}
		})
	}
}

func TestDealerStandsOnSeventeen(t *testing.T) {
	// Soft 17 counts as 17: the dealer stops.
	for _, dealer := range [][]string{{"10", "7"}, {"A", "6"}} {
		bj := dealBlackjack(dec("1"), shoeDealing([]string{"10", "8"}, dealer, "2", "2"))
		if _, err := bj.Stand(); err != nil {
			t.Fatalf("Stand failed: %v", err)
		}
		if n := len(bj.Dealer()); n != 2 {
			t.Errorf("dealer %v drew to %d cards", dealer, n)
		}
	}

	bj := dealBlackjack(dec("1"), shoeDealing([]string{"10", "8"}, []string{"10", "2"}, "4", "3", "9"))
	if _, err := bj.Stand(); err != nil {
		t.Fatalf("Stand failed: %v", err)
	}
	if got := HandValue(bj.Dealer()); got != 19 {
		t.Errorf("dealer should draw 4 then 3 and stop at 19, got %d", got)
	}
}

func TestHitToTwentyOneRunsDealer(t *testing.T) {
	bj := dealBlackjack(dec("1"), shoeDealing([]string{"10", "5"}, []string{"10", "3"}, "6", "2", "2", "K"))
	state, err := bj.Hit()
	if err != nil {
		t.Fatalf("Hit failed: %v", err)
	}
	if state != BlackjackEnded {
		t.Fatalf("reaching 21 should auto-play the dealer, state %s", state)
	}
	if got := HandValue(bj.Dealer()); got != 17 {
		t.Errorf("dealer total = %d, want 17", got)
	}
	if _, err := bj.Stand(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Stand after end: expected ErrInvalidTransition, got %v", err)
	}
}

func TestResultBeforeEnd(t *testing.T) {
	bj := dealBlackjack(dec("1"), shoeDealing([]string{"10", "5"}, []string{"10", "3"}))
	if _, err := bj.Result(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	v := bj.View()
	if !v.HoleHidden || len(v.DealerHand) != 1 || v.DealerValue != 10 {
		t.Errorf("hole card leaked: %+v", v)
	}
}

func TestNewBlackjackFromDraw(t *testing.T) {
	d := &scriptedDrawer{values: []int64{42}}
	bj, err := NewBlackjack(context.Background(), d, "p1", dec("5"), engine.FisherYates{})
	if err != nil {
		t.Fatalf("NewBlackjack failed: %v", err)
	}
	if len(d.ranges) != 1 || d.ranges[0] != [2]int64{0, engine.ShuffleSeedMax} {
		t.Fatalf("expected a single [0, 1e9] draw, got %v", d.ranges)
	}
	wantPlayer := []Card{{"6", "♣"}, {"Q", "♥"}}
	wantDealer := []Card{{"7", "♠"}, {"5", "♦"}}
	for i := range wantPlayer {
		if bj.Player()[i] != wantPlayer[i] || bj.Dealer()[i] != wantDealer[i] {
			t.Fatalf("deal from seed 42: player %v dealer %v", bj.Player(), bj.Dealer())
		}
	}
	if bj.State() != BlackjackPlayerTurn {
		t.Fatalf("state = %s, want player_turn", bj.State())
	}
	if _, err := bj.Stand(); err != nil {
		t.Fatalf("Stand failed: %v", err)
	}
	if got := HandValue(bj.Dealer()); got != 19 {
		t.Errorf("dealer total = %d, want 19 after drawing 7♦", got)
	}
	rec, _ := bj.Result()
	if !rec.NetChange.Equal(dec("-5")) {
		t.Errorf("16 vs 19 should lose the bet, net %s", rec.NetChange)
	}
	if bj.ShuffleDraw().Value != 42 {
		t.Errorf("shuffle draw not retained: %+v", bj.ShuffleDraw())
	}
}

func TestNewBlackjackRejectsBadBet(t *testing.T) {
	d := &scriptedDrawer{values: []int64{1}}
	if _, err := NewBlackjack(context.Background(), d, "p1", dec("0"), engine.FisherYates{}); !errors.Is(err, ErrInvalidBet) {
		t.Errorf("expected ErrInvalidBet, got %v", err)
	}
	if len(d.ranges) != 0 {
		t.Error("a rejected bet must not consume a draw")
	}
}
