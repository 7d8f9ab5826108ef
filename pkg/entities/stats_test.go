package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardValues(t *testing.T) {
	// The numeric identities are a wire contract and must never drift.
	assert.Equal(t, 1, int(Ace))
	assert.Equal(t, 10, int(Ten))
	assert.Equal(t, 11, int(Jack))
	assert.Equal(t, 12, int(Queen))
	assert.Equal(t, 13, int(King))

	assert.Equal(t, "A", Ace.String())
	assert.Equal(t, "10", Ten.String())
	assert.Equal(t, "K", King.String())

	assert.True(t, Seven.Valid())
	assert.False(t, Card(0).Valid())
	assert.False(t, Card(14).Valid())
}

func TestResultValues(t *testing.T) {
	assert.Equal(t, 0, int(ResultBust))
	assert.Equal(t, 4, int(ResultWaiting))
	assert.Equal(t, 6, int(ResultSurrender))

	assert.True(t, ResultBlackjack.IsWin())
	assert.False(t, ResultLoss.IsWin())
	assert.False(t, ResultWaiting.IsFinal())
	assert.Equal(t, "UNKNOWN", Result(42).String())
}

func TestNewStatsRecording(t *testing.T) {
	r := NewStatsRecording(1700000000000)

	assert.Equal(t, int64(1700000000000), r.Time)
	assert.Equal(t, SessionSentinel, r.ArchiveID)
	assert.False(t, r.IsArchived())
	assert.False(t, r.Saved)
}

func TestArchiveID(t *testing.T) {
	r := NewStatsRecording(100)

	id := NewArchiveID()
	other := NewArchiveID()
	assert.NotEqual(t, id, other, "archive ids must be unique")
	assert.NotEqual(t, SessionSentinel, id)

	r.ArchiveID = id
	assert.True(t, r.IsArchived())
}

func TestProfit(t *testing.T) {
	r := &StatsRecording{BetsCollected: 500, Payouts: 700}
	assert.Equal(t, -200, r.Profit())

	r = &StatsRecording{BetsCollected: 1500, Payouts: 1000}
	assert.Equal(t, 500, r.Profit())
}

func TestHandStatSerialization(t *testing.T) {
	// Hands must serialize with the producer's field names and the declared
	// enum integers so the details blob round-trips losslessly.
	hand := &HandStat{
		PlayerName: "Alice",
		Cards:      []Card{Ace, King},
		Bet:        100,
		Payout:     250,
		Result:     ResultBlackjack,
	}

	data, err := json.Marshal(hand)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"PlayerName": "Alice",
		"Cards": [1, 13],
		"SplitNum": 0,
		"Bet": 100,
		"Payout": 250,
		"IsDoubleDown": false,
		"Result": 5,
		"Dealer": false
	}`, string(data))

	var decoded HandStat
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *hand, decoded)
}
