package producer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RayaEspi/sbjstats/internal/logging"
	"github.com/RayaEspi/sbjstats/internal/types"
	"github.com/RayaEspi/sbjstats/pkg/entities"
)

var testUpgrader = websocket.Upgrader{}

// fakeProducerServer answers getStats/getArchives requests and can push
// events, standing in for the SimpleBlackjack plugin's IPC endpoint
type fakeProducerServer struct {
	t      *testing.T
	stats  []*entities.StatsRecording
	server *httptest.Server

	conns chan *websocket.Conn
}

func newFakeProducerServer(t *testing.T, stats []*entities.StatsRecording) *fakeProducerServer {
	f := &fakeProducerServer{t: t, stats: stats, conns: make(chan *websocket.Conn, 1)}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeProducerServer) url() string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http")
}

func (f *fakeProducerServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := testUpgrader.Upgrade(w, r, nil)
	require.NoError(f.t, err)
	f.conns <- conn

	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}

		switch env.Method {
		case methodGetStats:
			result, _ := json.Marshal(f.stats)
			conn.WriteJSON(envelope{ID: env.ID, Result: result})
		case methodGetArchives:
			result, _ := json.Marshal(map[string]string{"arch-1": "November"})
			conn.WriteJSON(envelope{ID: env.ID, Result: result})
		default:
			if env.Method != "" {
				conn.WriteJSON(envelope{ID: env.ID, Error: "unknown method"})
			}
		}
	}
}

func TestWSClientGetStats(t *testing.T) {
	seeded := []*entities.StatsRecording{
		{Time: 1700000000000, BetsCollected: 1000, Payouts: 500, ArchiveID: entities.SessionSentinel},
	}
	fake := newFakeProducerServer(t, seeded)

	client, err := Dial(context.Background(), fake.url(), logging.NewLogger(logging.ERROR))
	require.NoError(t, err)
	defer client.Close()

	stats, err := client.GetStats(context.Background(), entities.SessionSentinel)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, int64(1700000000000), stats[0].Time)
	assert.Equal(t, 1000, stats[0].BetsCollected)
}

func TestWSClientGetArchives(t *testing.T) {
	fake := newFakeProducerServer(t, nil)

	client, err := Dial(context.Background(), fake.url(), logging.NewLogger(logging.ERROR))
	require.NoError(t, err)
	defer client.Close()

	archives, err := client.GetArchives(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"arch-1": "November"}, archives)
}

func TestWSClientReceivesRoundFinished(t *testing.T) {
	fake := newFakeProducerServer(t, nil)

	client, err := Dial(context.Background(), fake.url(), logging.NewLogger(logging.ERROR))
	require.NoError(t, err)
	defer client.Close()

	conn := <-fake.conns
	require.NoError(t, conn.WriteJSON(envelope{Event: eventRoundFinish}))

	select {
	case _, ok := <-client.Events():
		assert.True(t, ok, "events channel should deliver, not close")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for round-finished event")
	}
}

func TestWSClientServerError(t *testing.T) {
	fake := newFakeProducerServer(t, nil)

	client, err := Dial(context.Background(), fake.url(), logging.NewLogger(logging.ERROR))
	require.NoError(t, err)
	defer client.Close()

	err = client.call(context.Background(), "bogusMethod", nil, nil)
	require.Error(t, err)
	assert.True(t, types.IsUploadError(err, types.ErrIPC))
}

func TestWSClientQueryAfterClose(t *testing.T) {
	fake := newFakeProducerServer(t, nil)

	client, err := Dial(context.Background(), fake.url(), logging.NewLogger(logging.ERROR))
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = client.GetStats(context.Background(), entities.SessionSentinel)
	require.Error(t, err)
	assert.True(t, types.IsUploadError(err, types.ErrIPC))
}

func TestWSClientEventsCloseOnDisconnect(t *testing.T) {
	fake := newFakeProducerServer(t, nil)

	client, err := Dial(context.Background(), fake.url(), logging.NewLogger(logging.ERROR))
	require.NoError(t, err)

	conn := <-fake.conns
	conn.Close()

	select {
	case _, ok := <-client.Events():
		assert.False(t, ok, "events channel should close when the connection drops")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for events channel to close")
	}
}

func TestDialFailure(t *testing.T) {
	_, err := Dial(context.Background(), "ws://127.0.0.1:1/ipc", logging.NewLogger(logging.ERROR))
	require.Error(t, err)
	assert.True(t, types.IsUploadError(err, types.ErrIPC))
}
