package entities

// Result represents the outcome of a single hand. The integer values are part
// of the wire contract with the stat producer and must not be renumbered.
type Result int

const (
	ResultBust      Result = 0
	ResultWin       Result = 1
	ResultDraw      Result = 2
	ResultLoss      Result = 3
	ResultWaiting   Result = 4
	ResultBlackjack Result = 5
	ResultSurrender Result = 6
)

var resultNames = map[Result]string{
	ResultBust:      "BUST",
	ResultWin:       "WIN",
	ResultDraw:      "DRAW",
	ResultLoss:      "LOSS",
	ResultWaiting:   "WAITING",
	ResultBlackjack: "BLACKJACK",
	ResultSurrender: "SURRENDER",
}

// String returns the string representation of the result
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsWin returns true if this result represents a win
func (r Result) IsWin() bool {
	return r == ResultWin || r == ResultBlackjack
}

// IsFinal returns false for hands captured before resolution
func (r Result) IsFinal() bool {
	return r != ResultWaiting
}
