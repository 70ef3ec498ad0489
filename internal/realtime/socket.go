package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	reconnectDelay = 2 * time.Second
)

// voteFrame is the wire shape of a realtime event.
type voteFrame struct {
	Type string `json:"type"`
	VoteUpdated
}

// Feed reads vote_updated frames from the realtime websocket endpoint and
// publishes them on the bus. Malformed frames are dropped silently; the
// stream is not request/response, so there is nothing to answer.
type Feed struct {
	url    string
	bus    *Bus
	logger zerolog.Logger
}

func NewFeed(url string, bus *Bus, logger zerolog.Logger) *Feed {
	return &Feed{
		url:    url,
		bus:    bus,
		logger: logger.With().Str("component", "realtime-feed").Logger(),
	}
}

// Run connects, reads until the connection drops, and reconnects until
// ctx is cancelled.
func (f *Feed) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
		if err != nil {
			f.logger.Warn().Err(err).Str("url", f.url).Msg("dial failed, retrying")
		} else {
			f.logger.Info().Str("url", f.url).Msg("connected")
			f.readPump(ctx, conn)
			conn.Close()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (f *Feed) readPump(ctx context.Context, conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stop := make(chan struct{})
	defer close(stop)
	go f.pingLoop(ctx, conn, stop)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				f.logger.Warn().Err(err).Msg("connection closed unexpectedly")
			}
			return
		}

		var frame voteFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		if frame.Type != "vote_updated" {
			continue
		}
		if frame.RawUpvotes < 0 || frame.RawDownvotes < 0 {
			continue
		}
		f.bus.Publish(frame.VoteUpdated)
	}
}

func (f *Feed) pingLoop(ctx context.Context, conn *websocket.Conn, stop chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-stop:
			return
		case <-ctx.Done():
			conn.Close()
			return
		}
	}
}
