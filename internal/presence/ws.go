package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 3 * time.Second

// WSChannel is the websocket client transport for the presence channel.
type WSChannel struct {
	conn   *websocket.Conn
	events chan Event
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

// Dial connects to the relay server's /ws endpoint for a room and starts the
// read loop. Malformed frames are logged and skipped rather than tearing the
// channel down.
func Dial(ctx context.Context, url string, log *zap.Logger) (*WSChannel, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial presence channel: %w", err)
	}

	cctx, cancel := context.WithCancel(context.Background())
	c := &WSChannel{
		conn:   conn,
		events: make(chan Event, 16),
		log:    log,
		ctx:    cctx,
		cancel: cancel,
	}
	go c.readLoop()
	return c, nil
}

func (c *WSChannel) readLoop() {
	defer close(c.events)
	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if c.ctx.Err() == nil {
					c.log.Warn("presence channel read failed", zap.Error(err))
				}
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			c.log.Warn("dropping malformed presence event", zap.Error(err))
			continue
		}

		select {
		case c.events <- ev:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *WSChannel) Emit(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.Type, err)
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := c.conn.Write(wctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("emit %s: %w", ev.Type, err)
	}
	return nil
}

func (c *WSChannel) Events() <-chan Event { return c.events }

func (c *WSChannel) Close() error {
	c.cancel()
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}
