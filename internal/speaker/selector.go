// Package speaker selects the active speaker among tracked faces using
// mouth-motion heuristics.
package speaker

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/captionmesh/internal/bus"
	"github.com/normanking/captionmesh/internal/track"
)

// DefaultMovementTimeout retains recently updated faces as selection
// candidates even when their mouth is still.
const DefaultMovementTimeout = 1500 * time.Millisecond

// Selector picks the current active speaker from a frame's face
// records. It is stateless given its inputs except for the
// carried-forward previous selection.
type Selector struct {
	timeout  time.Duration
	eventBus *bus.EventBus
	logger   zerolog.Logger

	active    int
	hasActive bool

	now func() time.Time
}

// NewSelector creates a selector. A zero timeout falls back to the
// default. eventBus may be nil.
func NewSelector(timeout time.Duration, eventBus *bus.EventBus, logger zerolog.Logger) *Selector {
	if timeout <= 0 {
		timeout = DefaultMovementTimeout
	}
	return &Selector{
		timeout:  timeout,
		eventBus: eventBus,
		logger:   logger.With().Str("component", "speaker").Logger(),
		now:      time.Now,
	}
}

// Active returns the current selection.
func (s *Selector) Active() (int, bool) {
	return s.active, s.hasActive
}

// Select consumes the current frame's records and returns the next
// active face id. Candidates are records whose mouth is moving or
// whose LastUpdate is within the timeout. Records minted this frame
// always satisfy the freshness clause, so whenever the frame has any
// record every record is a candidate; the clause only filters when a
// caller retains records across frames. With no candidates the
// previous selection is kept, falling back to the first record in
// frame order. The largest mouth gap wins, ties broken by frame order.
//
// An active-speaker-changed event is emitted exactly when the result
// differs from the previous frame's result.
func (s *Selector) Select(records []track.FaceRecord) (int, bool) {
	now := s.now()

	candidates := make([]track.FaceRecord, 0, len(records))
	for _, r := range records {
		if r.IsMovingMouth || now.Sub(r.LastUpdate) < s.timeout {
			candidates = append(candidates, r)
		}
	}

	var next int
	var hasNext bool
	switch {
	case len(candidates) > 0:
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].MouthOpenDistance > candidates[j].MouthOpenDistance
		})
		next, hasNext = candidates[0].ID, true
	case s.hasActive:
		next, hasNext = s.active, true
	case len(records) > 0:
		next, hasNext = records[0].ID, true
	}

	if next != s.active || hasNext != s.hasActive {
		s.notifyChange(next, hasNext)
	}
	s.active, s.hasActive = next, hasNext
	return next, hasNext
}

func (s *Selector) notifyChange(id int, ok bool) {
	if ok {
		s.logger.Info().Int("id", id).Msg("Active speaker changed")
	} else {
		s.logger.Info().Msg("Active speaker cleared")
	}
	if s.eventBus == nil {
		return
	}
	var value any
	if ok {
		value = id
	}
	s.eventBus.Publish(bus.Event{
		Type: bus.EventTypeActiveSpeakerChanged,
		Data: map[string]any{"id": value},
	})
}

// Reset clears the carried selection without emitting an event.
func (s *Selector) Reset() {
	s.active, s.hasActive = 0, false
}
