package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/RayaEspi/sbjstats/internal/logging"
	"github.com/RayaEspi/sbjstats/internal/types"
	"github.com/RayaEspi/sbjstats/pkg/entities"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10
)

// Wire method and event names on the producer channel
const (
	methodGetStats    = "getStats"
	methodGetArchives = "getArchives"
	eventRoundFinish  = "roundFinished"
	eventNotify       = "notify"
)

// envelope is the JSON frame exchanged on the producer channel. Requests carry
// id+method, responses echo the id with result or error, events carry only the
// event name and optional params.
type envelope struct {
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Event  string          `json:"event,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// WSClient speaks to the SimpleBlackjack producer plugin over its local
// WebSocket endpoint. It implements StatProducer and EventSource, and doubles
// as an upload notifier by pushing toast envelopes back to the host UI.
type WSClient struct {
	conn   *websocket.Conn
	logger *logging.Logger

	writeMu sync.Mutex

	pendingMu sync.Mutex
	pending   map[string]chan envelope

	events chan RoundFinished
	done   chan struct{}
	once   sync.Once
}

// Dial connects to the producer endpoint and starts the read loop
func Dial(ctx context.Context, url string, logger *logging.Logger) (*WSClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, types.WrapError(types.ErrIPC, fmt.Sprintf("failed to connect to producer at %s", url), err)
	}

	c := &WSClient{
		conn:    conn,
		logger:  logger,
		pending: make(map[string]chan envelope),
		events:  make(chan RoundFinished, 8),
		done:    make(chan struct{}),
	}

	go c.readPump()
	go c.pingLoop()

	logger.Info("Connected to stat producer at %s", url)
	return c, nil
}

// GetStats queries the producer for all records under the session identifier
func (c *WSClient) GetStats(ctx context.Context, sessionID string) ([]*entities.StatsRecording, error) {
	params := map[string]string{"archiveId": sessionID}

	var stats []*entities.StatsRecording
	if err := c.call(ctx, methodGetStats, params, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetArchives queries the producer for the archive-id to description mapping
func (c *WSClient) GetArchives(ctx context.Context) (map[string]string, error) {
	var archives map[string]string
	if err := c.call(ctx, methodGetArchives, nil, &archives); err != nil {
		return nil, err
	}
	return archives, nil
}

// Events returns the round-finished notification channel. The channel closes
// when the connection goes away.
func (c *WSClient) Events() <-chan RoundFinished {
	return c.events
}

// Success pushes a success toast to the host UI. Best effort: a failed write
// is logged and dropped, never surfaced to the caller.
func (c *WSClient) Success(message string) {
	c.notify("success", message)
}

// Failure pushes a failure toast to the host UI
func (c *WSClient) Failure(message string) {
	c.notify("failure", message)
}

// Close shuts the connection down
func (c *WSClient) Close() error {
	c.shutdown()
	return nil
}

func (c *WSClient) notify(level, message string) {
	params, _ := json.Marshal(map[string]string{"level": level, "message": message})
	if err := c.write(envelope{Event: eventNotify, Params: params}); err != nil {
		c.logger.Warn("Failed to push %s notification to host: %v", level, err)
	}
}

func (c *WSClient) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	select {
	case <-c.done:
		return types.NewUploadError(types.ErrIPC, "producer connection is closed")
	default:
	}

	env := envelope{ID: uuid.New().String(), Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return types.WrapError(types.ErrIPC, "failed to encode request params", err)
		}
		env.Params = raw
	}

	ch := make(chan envelope, 1)
	c.pendingMu.Lock()
	c.pending[env.ID] = ch
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, env.ID)
		c.pendingMu.Unlock()
	}()

	if err := c.write(env); err != nil {
		return types.WrapError(types.ErrIPC, fmt.Sprintf("failed to send %s request", method), err)
	}

	select {
	case <-ctx.Done():
		return types.WrapError(types.ErrIPC, fmt.Sprintf("%s request cancelled", method), ctx.Err())
	case <-c.done:
		return types.NewUploadError(types.ErrIPC, "producer connection closed while waiting for response")
	case resp := <-ch:
		if resp.Error != "" {
			return types.NewUploadError(types.ErrIPC, fmt.Sprintf("%s failed: %s", method, resp.Error))
		}
		if out != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, out); err != nil {
				return types.WrapError(types.ErrIPC, fmt.Sprintf("failed to decode %s response", method), err)
			}
		}
		return nil
	}
}

func (c *WSClient) write(env envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(env)
}

// readPump routes incoming frames: responses go to their pending call, round
// finished events fan into the events channel
func (c *WSClient) readPump() {
	defer func() {
		c.shutdown()
		close(c.events)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("Producer connection error: %v", err)
			}
			return
		}

		switch {
		case env.Event == eventRoundFinish:
			select {
			case c.events <- RoundFinished{}:
			default:
				c.logger.Warn("Round-finished event dropped: handler is behind")
			}
		case env.ID != "":
			c.pendingMu.Lock()
			ch, ok := c.pending[env.ID]
			c.pendingMu.Unlock()
			if ok {
				ch <- env
			}
		}
	}
}

func (c *WSClient) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				c.logger.Warn("Failed to ping producer: %v", err)
				return
			}
		}
	}
}

func (c *WSClient) shutdown() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}
