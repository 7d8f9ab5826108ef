package entities

import "strconv"

// Card represents a card rank with a fixed numeric identity. The values are a
// transport/storage contract shared with the stat producer and the collection
// server: Ace=1, ranks 2-10 map to their face value, Jack=11, Queen=12, King=13.
type Card int

const (
	Ace   Card = 1
	Two   Card = 2
	Three Card = 3
	Four  Card = 4
	Five  Card = 5
	Six   Card = 6
	Seven Card = 7
	Eight Card = 8
	Nine  Card = 9
	Ten   Card = 10
	Jack  Card = 11
	Queen Card = 12
	King  Card = 13
)

// String returns the display name of the card rank
func (c Card) String() string {
	switch c {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return strconv.Itoa(int(c))
	}
}

// Valid reports whether the card carries one of the declared rank values
func (c Card) Valid() bool {
	return c >= Ace && c <= King
}
