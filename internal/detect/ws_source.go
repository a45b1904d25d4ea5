package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/normanking/captionmesh/internal/bus"
	"github.com/normanking/captionmesh/internal/landmark"
)

// WSFrameMessage is one detector callback on the wire. Landmarks holds
// zero or more faces, each an ordered array of 3-D points.
type WSFrameMessage struct {
	Type      string          `json:"type"`
	Landmarks json.RawMessage `json:"landmarks"`
	Timestamp string          `json:"timestamp,omitempty"`
}

// WSErrorMessage reports detector errors.
type WSErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StreamSource connects to the landmark detector service over
// WebSocket and delivers normalized frames. Reconnection with backoff
// is handled here; a dropped connection is indistinguishable from
// "zero faces detected" downstream.
type StreamSource struct {
	baseURL  string
	maxFaces int
	eventBus *bus.EventBus
	logger   zerolog.Logger

	mu        sync.RWMutex
	conn      *websocket.Conn
	connected bool
	cancel    context.CancelFunc
	handler   FrameHandler

	reconnectDelay time.Duration
}

// NewStreamSource creates a detector stream source. eventBus may be nil.
func NewStreamSource(baseURL string, maxFaces int, reconnectDelay time.Duration, eventBus *bus.EventBus, logger zerolog.Logger) *StreamSource {
	if reconnectDelay <= 0 {
		reconnectDelay = 3 * time.Second
	}
	return &StreamSource{
		baseURL:        baseURL,
		maxFaces:       maxFaces,
		reconnectDelay: reconnectDelay,
		eventBus:       eventBus,
		logger:         logger.With().Str("component", "detector-stream").Logger(),
	}
}

// Start begins the connection loop and frame delivery.
func (c *StreamSource) Start(ctx context.Context, handler FrameHandler) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.handler = handler

	go c.connectLoop(ctx)
	return nil
}

// Stop closes the connection and stops reconnecting.
func (c *StreamSource) Stop() {
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
				c.setConnected(false)

				c.logger.Warn().Err(err).Msg("Detector stream disconnected, reconnecting...")

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
	u.Path = "/api/v1/landmarks/ws"

	c.logger.Info().Str("url", u.String()).Msg("Connecting to detector stream")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	c.logger.Info().Msg("Connected to detector stream")
	c.publish(bus.EventTypeDetectorConnected, nil)

	defer c.publish(bus.EventTypeDetectorDisconnected, nil)

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
	case "frame":
		var msg WSFrameMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to parse frame message")
			return
		}

		ts := time.Now()
		if msg.Timestamp != "" {
			if parsed, err := time.Parse(time.RFC3339, msg.Timestamp); err == nil {
				ts = parsed
			}
		}

		frame, err := landmark.ParseFrame(msg.Landmarks, c.maxFaces, ts)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to parse landmarks")
			return
		}

		c.publish(bus.EventTypeFrameReceived, map[string]any{"faces": len(frame.Faces)})

		if c.handler != nil {
			c.handler(frame)
		}

	case "error":
		var msg WSErrorMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to parse error message")
			return
		}
		c.logger.Warn().Str("message", msg.Message).Msg("Detector error")

	default:
		c.logger.Debug().Str("type", typeMsg.Type).Msg("Unknown message type")
	}
}

func (c *StreamSource) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

func (c *StreamSource) publish(t bus.EventType, data map[string]any) {
	if c.eventBus != nil {
		c.eventBus.Publish(bus.Event{Type: t, Data: data})
	}
}
