package entities

import "github.com/google/uuid"

// SessionSentinel is the all-zero archive identifier meaning "not yet
// archived / current session". Records carrying it are the ones a query for
// the current session returns.
const SessionSentinel = "00000000-0000-0000-0000-000000000000"

// StatsRecording represents one completed round as recorded by the stat
// producer. The JSON field names mirror the producer's own serialization so
// records and the hands detail blob round-trip unchanged.
type StatsRecording struct {
	Time          int64       `json:"Time"` // milliseconds since epoch, UTC
	BetsCollected int         `json:"BetsCollected"`
	Payouts       int         `json:"Payouts"`
	Players       []string    `json:"Players"`
	Saved         bool        `json:"Saved"`
	ArchiveID     string      `json:"ArchiveID"`
	Hands         []*HandStat `json:"Hands"`
}

// HandStat represents one hand within a round. A player may own several hands
// in the same round due to splits; SplitNum tracks the split lineage.
type HandStat struct {
	PlayerName   string `json:"PlayerName"`
	Cards        []Card `json:"Cards"`
	SplitNum     int    `json:"SplitNum"`
	Bet          int    `json:"Bet"`
	Payout       int    `json:"Payout"`
	IsDoubleDown bool   `json:"IsDoubleDown"`
	Result       Result `json:"Result"`
	Dealer       bool   `json:"Dealer"`
}

// NewStatsRecording creates a recording tagged with the current-session sentinel
func NewStatsRecording(timeMs int64) *StatsRecording {
	return &StatsRecording{
		Time:      timeMs,
		ArchiveID: SessionSentinel,
	}
}

// IsArchived reports whether the record has been tagged with a real archive id
func (r *StatsRecording) IsArchived() bool {
	return r.ArchiveID != "" && r.ArchiveID != SessionSentinel
}

// Profit returns bets collected minus payouts; negative when the house lost
func (r *StatsRecording) Profit() int {
	return r.BetsCollected - r.Payouts
}

// NewArchiveID generates a fresh unique archive identifier
func NewArchiveID() string {
	return uuid.New().String()
}
