package caption

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WSCaptionMessage is one recognizer snapshot on the wire.
type WSCaptionMessage struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// WSErrorMessage reports recognizer errors.
type WSErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StreamSource consumes caption snapshots from the recognizer service
// over WebSocket and writes them into a Store. Reconnection with
// backoff is handled here; the pipeline never sees transport failures.
type StreamSource struct {
	baseURL string
	store   *Store
	logger  zerolog.Logger

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	cancel    context.CancelFunc

	reconnectDelay time.Duration
}

// NewStreamSource creates a caption stream source.
func NewStreamSource(baseURL string, store *Store, reconnectDelay time.Duration, logger zerolog.Logger) *StreamSource {
	if reconnectDelay <= 0 {
		reconnectDelay = 3 * time.Second
	}
	return &StreamSource{
		baseURL:        baseURL,
		store:          store,
		reconnectDelay: reconnectDelay,
		logger:         logger.With().Str("component", "caption-stream").Logger(),
	}
}

// Connect starts the connection loop.
func (c *StreamSource) Connect(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	go c.connectLoop(ctx)
	return nil
}

// Disconnect closes the connection and stops reconnecting.
func (c *StreamSource) Disconnect() {
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connected = false
	c.mu.Unlock()
}

// IsConnected returns connection status.
func (c *StreamSource) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *StreamSource) connectLoop(ctx context.Context) {
	backoff := c.reconnectDelay
	maxBackoff := 60 * time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := c.connectWS(ctx); err != nil {
				c.mu.Lock()
				c.connected = false
				c.mu.Unlock()

				c.logger.Warn().Err(err).Msg("Caption stream disconnected, reconnecting...")

				select {
				case <-ctx.Done():
					return
				case <-time.After(backoff):
				}

				if backoff < maxBackoff {
					backoff *= 2
					if backoff > maxBackoff {
						backoff = maxBackoff
					}
				}
			} else {
				backoff = c.reconnectDelay
			}
		}
	}
}

func (c *StreamSource) connectWS(ctx context.Context) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}

	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = "/api/v1/captions/ws"

	c.logger.Info().Str("url", u.String()).Msg("Connecting to caption stream")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	c.logger.Info().Msg("Connected to caption stream")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			var raw json.RawMessage
			if err := conn.ReadJSON(&raw); err != nil {
				return fmt.Errorf("read: %w", err)
			}
			c.handleMessage(raw)
		}
	}
}

func (c *StreamSource) handleMessage(raw json.RawMessage) {
	var typeMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &typeMsg); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to parse message type")
		return
	}

	switch typeMsg.Type {
	case "caption":
		var msg WSCaptionMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to parse caption message")
			return
		}
		c.store.Set(decodeCaption(msg))

	case "error":
		var msg WSErrorMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to parse error message")
			return
		}
		c.logger.Warn().Str("message", msg.Message).Msg("Recognizer error")

	default:
		c.logger.Debug().Str("type", typeMsg.Type).Msg("Unknown message type")
	}
}

// decodeCaption converts a wire message to a snapshot. A missing or
// malformed timestamp falls back to receipt time.
func decodeCaption(msg WSCaptionMessage) Caption {
	ts := time.Now()
	if msg.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, msg.Timestamp); err == nil {
			ts = parsed
		}
	}
	return Caption{Text: msg.Text, Timestamp: ts}
}
