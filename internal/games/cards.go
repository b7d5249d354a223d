package games

import (
	"strings"

	"github.com/MJE43/pf-casino-engine/internal/engine"
)

// Card is a playing card.
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// String renders a card like "A♠" or "10♥".
func (c Card) String() string {
	return c.Rank + c.Suit
}

// ShoeDecks is the number of decks in a blackjack shoe.
const ShoeDecks = 6

// Shoe order before shuffling: deck, then suit, then rank.
var (
	cardSuits = []string{"♠", "♥", "♦", "♣"}
	cardRanks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
)

// NewShoe returns decks unshuffled decks concatenated.
func NewShoe(decks int) []Card {
	shoe := make([]Card, 0, decks*len(cardSuits)*len(cardRanks))
	for d := 0; d < decks; d++ {
		for _, suit := range cardSuits {
			for _, rank := range cardRanks {
				shoe = append(shoe, Card{Rank: rank, Suit: suit})
			}
		}
	}
	return shoe
}

// ShuffledShoe builds a shoe and permutes it in place with s keyed by seed.
func ShuffledShoe(s engine.Shuffler, seed int64, decks int) []Card {
	shoe := NewShoe(decks)
	s.Shuffle(seed, len(shoe), func(i, j int) { shoe[i], shoe[j] = shoe[j], shoe[i] })
	return shoe
}

// blackjackCardValue: 2-10 face value, J/Q/K 10, A 11 (soft).
func blackjackCardValue(rank string) int {
	switch rank {
	case "A":
		return 11
	case "J", "Q", "K", "10":
		return 10
	case "2", "3", "4", "5", "6", "7", "8", "9":
		return int(rank[0] - '0')
	default:
		return 0
	}
}

// HandValue returns the best blackjack total, demoting aces from 11 to 1
// one at a time while the hand is over 21.
func HandValue(cards []Card) int {
	total, aces := 0, 0
	for _, c := range cards {
		total += blackjackCardValue(c.Rank)
		if c.Rank == "A" {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsNatural reports 21 on exactly two cards.
func IsNatural(cards []Card) bool {
	return len(cards) == 2 && HandValue(cards) == 21
}

func formatHand(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
