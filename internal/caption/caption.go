// Package caption holds the latest speech-to-text caption snapshot and
// the sources that feed it.
package caption

import (
	"sync"
	"time"

	"github.com/normanking/captionmesh/internal/bus"
)

// Caption is an immutable snapshot of the recognizer output. The
// pipeline treats it as a snapshot, not a stream: no history is kept
// and no diffing is performed.
type Caption struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Store keeps the latest caption snapshot. Sources replace it as new
// text arrives; the pipeline reads it once per frame and passes the
// snapshot to the renderer explicitly.
type Store struct {
	mu       sync.RWMutex
	latest   Caption
	eventBus *bus.EventBus
}

// NewStore creates a store. eventBus may be nil.
func NewStore(eventBus *bus.EventBus) *Store {
	return &Store{eventBus: eventBus}
}

// Set replaces the latest snapshot.
func (s *Store) Set(c Caption) {
	s.mu.Lock()
	s.latest = c
	s.mu.Unlock()

	if s.eventBus != nil {
		s.eventBus.Publish(bus.Event{
			Type: bus.EventTypeCaptionUpdated,
			Data: map[string]any{"text": c.Text},
		})
	}
}

// Latest returns the current snapshot.
func (s *Store) Latest() Caption {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Clear empties the snapshot.
func (s *Store) Clear() {
	s.Set(Caption{})
}
