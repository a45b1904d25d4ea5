package track

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/captionmesh/internal/landmark"
)

// FaceRecord is the per-face tracking state for one frame. The record
// list is fully rebuilt every frame; only the openness history (and,
// with stable ids, the association table) persists across frames.
type FaceRecord struct {
	// ID is the face's position in this frame's detection list unless
	// stable ids are enabled. Positional ids are not a cross-frame
	// identity: a face that shifts position in the detector output is
	// treated as a different id.
	ID                int
	Landmarks         landmark.Set
	MouthOpenDistance float64
	IsMovingMouth     bool
	LastUpdate        time.Time
}

// Config configures a Tracker.
type Config struct {
	MovementThreshold float64
	MaxFaces          int
	// StableIDs switches from positional ids to nearest-neighbor
	// centroid association with miss-based eviction.
	StableIDs    bool
	MissEviction int
}

// DefaultConfig returns the reference tracker configuration.
func DefaultConfig() Config {
	return Config{
		MovementThreshold: DefaultMovementThreshold,
		MaxFaces:          4,
		StableIDs:         false,
		MissEviction:      15,
	}
}

// Tracker combines mouth analysis into per-face records, one pass per
// detector callback. It is driven by a single processing goroutine and
// does no internal locking.
type Tracker struct {
	cfg      Config
	movement *MovementDetector
	assoc    *Associator
	logger   zerolog.Logger

	now func() time.Time
}

// NewTracker creates a tracker.
func NewTracker(cfg Config, logger zerolog.Logger) *Tracker {
	if cfg.MaxFaces <= 0 {
		cfg.MaxFaces = 4
	}
	t := &Tracker{
		cfg:      cfg,
		movement: NewMovementDetector(cfg.MovementThreshold),
		logger:   logger.With().Str("component", "tracker").Logger(),
		now:      time.Now,
	}
	if cfg.StableIDs {
		t.assoc = NewAssociator(cfg.MissEviction)
	}
	return t
}

// Update processes one frame of landmark sets and returns fresh face
// records in detection order.
func (t *Tracker) Update(frame *landmark.Frame) []FaceRecord {
	if frame == nil || len(frame.Faces) == 0 {
		if t.assoc != nil {
			t.assoc.Assign(nil)
		}
		return nil
	}

	faces := frame.Faces
	if len(faces) > t.cfg.MaxFaces {
		faces = faces[:t.cfg.MaxFaces]
	}

	var ids []int
	if t.assoc != nil {
		ids = t.assoc.Assign(faces)
	}

	now := t.now()
	records := make([]FaceRecord, 0, len(faces))
	for i, set := range faces {
		id := i
		if ids != nil {
			id = ids[i]
		}
		openness := Openness(set)
		moving := t.movement.Detect(id, openness)
		records = append(records, FaceRecord{
			ID:                id,
			Landmarks:         set,
			MouthOpenDistance: openness,
			IsMovingMouth:     moving,
			LastUpdate:        now,
		})
	}

	t.logger.Debug().Int("faces", len(records)).Msg("Frame tracked")
	return records
}

// Reset clears the openness history and any association state.
func (t *Tracker) Reset() {
	t.movement.Reset()
	if t.assoc != nil {
		t.assoc.Reset()
	}
}
