package skyengine

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// viewportMessage is what the host page sends whenever its window changes size.
//
//	{"type": "viewport", "data": {"width": 1280, "height": 720, "dpr": 2}}
type viewportMessage struct {
	Type string `json:"type"`
	Data struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
		DPR    float64 `json:"dpr"`
	} `json:"data"`
}

func parseViewportMessage(raw []byte) (Viewport, bool) {
	var msg viewportMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return Viewport{}, false
	}
	if msg.Type != "viewport" {
		return Viewport{}, false
	}
	return Viewport{Width: msg.Data.Width, Height: msg.Data.Height, DPR: msg.Data.DPR}, true
}

// ListenForViewport connects to a host page bridge and forwards every viewport it reports to
// out. It reconnects with exponential backoff until ctx is cancelled.
func ListenForViewport(ctx context.Context, url string, out chan<- Viewport) {
	backoff := 1 * time.Second
	for ctx.Err() == nil {
		log.Printf("[viewport] Connecting to host bridge: %s", url)
		c, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			log.Printf("[viewport] Dial error: %v. Retrying in %v...", err, backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > 60*time.Second {
				backoff = 60 * time.Second
			}
			continue
		}
		backoff = 1 * time.Second

		if err := c.WriteMessage(websocket.TextMessage, []byte(`{"type": "subscribe", "data": {"type": "viewport"}}`)); err != nil {
			log.Printf("[viewport] Subscribe error: %v", err)
			c.Close()
			continue
		}

		readViewports(ctx, c, out)
		c.Close()

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func readViewports(ctx context.Context, c *websocket.Conn, out chan<- Viewport) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("[viewport] Read error: %v. Reconnecting...", err)
			}
			return
		}
		v, ok := parseViewportMessage(message)
		if !ok {
			continue
		}
		select {
		case out <- v:
		case <-ctx.Done():
			return
		}
	}
}
