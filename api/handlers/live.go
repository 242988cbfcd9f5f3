package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pa-prabumulih/sicantik-api/archive"
)

// Live streams registry change events to list subscribers over a websocket,
// so open list views refresh without polling.
type Live struct {
	Registry *archive.Registry
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	livePingInterval = 30 * time.Second
	liveWriteWait    = 10 * time.Second
)

// FeedHandler upgrades the connection and forwards registry events until the
// client goes away. A slow client drops events rather than blocking the
// registry's mutation path.
func (l Live) FeedHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events := make(chan archive.Event, 16)
	unsubscribe := l.Registry.Subscribe(func(ev archive.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	defer unsubscribe()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(livePingInterval)
	defer ping.Stop()

	for {
		select {
		case ev := <-events:
			conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
