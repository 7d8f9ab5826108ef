package payload

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/RayaEspi/sbjstats/pkg/entities"
)

// Endpoint paths on the collection server. The batch path is distinct from the
// single-record path and accepts a JSON array body.
const (
	SinglePath = "/sbj/import"
	BatchPath  = "/sbj/import/mass"
)

const datetimeLayout = "02/01/2006 15:04:05"

// Payload is a transport-ready request body bound to its endpoint. The two
// implementations are distinct types so callers never inspect a generic blob
// to pick an endpoint or a log message.
type Payload interface {
	// Body returns the JSON request body
	Body() ([]byte, error)
	// Path returns the endpoint path the body must be POSTed to
	Path() string
	// Noun returns the payload description used in user-facing messages
	Noun() string
}

// SinglePayload is the wire form of one stat record. Every field is a
// pre-formatted display string; the remote API accepts exactly this shape.
type SinglePayload struct {
	Datetime  string `json:"datetime"`
	Players   string `json:"players"`
	Collected string `json:"collected"`
	Paid      string `json:"paid"`
	Profit    string `json:"profit"`
	Details   string `json:"details"`
}

func (p SinglePayload) Body() ([]byte, error) {
	return json.Marshal(p)
}

func (p SinglePayload) Path() string {
	return SinglePath
}

func (p SinglePayload) Noun() string {
	return "stat"
}

// BatchPayload is an ordered sequence of single payloads submitted as one
// request body to the batch endpoint.
type BatchPayload []SinglePayload

func (p BatchPayload) Body() ([]byte, error) {
	return json.Marshal([]SinglePayload(p))
}

func (p BatchPayload) Path() string {
	return BatchPath
}

func (p BatchPayload) Noun() string {
	return "mass stats"
}

// BuildSingle converts a stat record into its transport-ready payload.
// Deterministic: the datetime is a pure function of the record's Time field,
// no clock is consulted.
func BuildSingle(stat *entities.StatsRecording) (SinglePayload, error) {
	handsJSON, err := json.Marshal(stat.Hands)
	if err != nil {
		return SinglePayload{}, err
	}

	return SinglePayload{
		Datetime:  time.UnixMilli(stat.Time).UTC().Format(datetimeLayout),
		Players:   strings.Join(stat.Players, ", "),
		Collected: formatGrouped(stat.BetsCollected),
		Paid:      formatGrouped(stat.Payouts),
		Profit:    formatGrouped(stat.Profit()),
		Details:   base64.StdEncoding.EncodeToString(handsJSON),
	}, nil
}

// BuildBatch converts records into one batch payload, preserving input order.
func BuildBatch(stats []*entities.StatsRecording) (BatchPayload, error) {
	batch := make(BatchPayload, 0, len(stats))
	for _, stat := range stats {
		p, err := BuildSingle(stat)
		if err != nil {
			return nil, err
		}
		batch = append(batch, p)
	}
	return batch, nil
}

// DecodeDetails parses a details blob back into the hands it encodes
func DecodeDetails(details string) ([]*entities.HandStat, error) {
	raw, err := base64.StdEncoding.DecodeString(details)
	if err != nil {
		return nil, err
	}

	var hands []*entities.HandStat
	if err := json.Unmarshal(raw, &hands); err != nil {
		return nil, err
	}
	return hands, nil
}

// formatGrouped renders an integer with comma-grouped thousands, keeping the
// sign for negative values (1234 -> "1,234", -200 -> "-200")
func formatGrouped(n int) string {
	s := strconv.Itoa(n)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	return sign + b.String()
}
