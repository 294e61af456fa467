// Package card models the cards a hero carries through a match: the
// action cards in hand and the wound cards combat forces on them.
package card

// Kind distinguishes wound cards from playable action cards.
type Kind int

const (
	KindAction Kind = iota
	KindWound
)

// String returns a human-readable kind label.
func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindWound:
		return "wound"
	default:
		return "unknown"
	}
}

// WoundID is the definition id shared by every wound card.
const WoundID = "wound"

// Card is one card in a hand or pile.
type Card struct {
	// ID is the card's definition id.
	ID string `json:"id"`
	// Kind is the card category.
	Kind Kind `json:"kind"`
}

// Wound returns a new wound card.
func Wound() Card {
	return Card{ID: WoundID, Kind: KindWound}
}

// IsWound reports whether this card is a wound.
func (c Card) IsWound() bool { return c.Kind == KindWound }

// CountWounds returns the number of wound cards in cards.
func CountWounds(cards []Card) int {
	n := 0
	for _, c := range cards {
		if c.IsWound() {
			n++
		}
	}
	return n
}

// SplitWounds partitions cards into (wounds, nonWounds), preserving
// relative order within each partition.
//
// Postcondition: len(wounds)+len(nonWounds) == len(cards).
func SplitWounds(cards []Card) (wounds, nonWounds []Card) {
	for _, c := range cards {
		if c.IsWound() {
			wounds = append(wounds, c)
		} else {
			nonWounds = append(nonWounds, c)
		}
	}
	return wounds, nonWounds
}
