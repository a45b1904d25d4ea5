// Package pipeline runs the per-frame pass: face tracking, active
// speaker selection and overlay rendering.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/normanking/captionmesh/internal/bus"
	"github.com/normanking/captionmesh/internal/caption"
	"github.com/normanking/captionmesh/internal/landmark"
	"github.com/normanking/captionmesh/internal/overlay"
	"github.com/normanking/captionmesh/internal/speaker"
	"github.com/normanking/captionmesh/internal/track"
)

// Config configures pipeline extras beyond the component configs.
type Config struct {
	// SnapshotInterval saves a PNG of the rendered overlay at most this
	// often. Zero disables snapshots.
	SnapshotInterval time.Duration
	SnapshotDir      string
}

// Pipeline wires tracker, selector and renderer into one synchronous
// pass per detector callback. The only state shared across calls is
// the tracker's openness history and the selector's carried selection;
// the mutex only serializes callers, frames never overlap.
type Pipeline struct {
	cfg      Config
	tracker  *track.Tracker
	selector *speaker.Selector
	renderer *overlay.Renderer
	captions *caption.Store
	eventBus *bus.EventBus
	logger   zerolog.Logger

	mu           sync.Mutex
	frames       uint64
	lastSnapshot time.Time
}

// New creates a pipeline. eventBus may be nil.
func New(cfg Config, tracker *track.Tracker, selector *speaker.Selector, renderer *overlay.Renderer, captions *caption.Store, eventBus *bus.EventBus, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		tracker:  tracker,
		selector: selector,
		renderer: renderer,
		captions: captions,
		eventBus: eventBus,
		logger:   logger.With().Str("component", "pipeline").Logger(),
	}
}

// ProcessFrame runs one complete pass for a detector callback and
// returns the frame's face records. The caption snapshot is read once
// and passed to the renderer explicitly.
func (p *Pipeline) ProcessFrame(frame *landmark.Frame) []track.FaceRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	records := p.tracker.Update(frame)
	activeID, hasActive := p.selector.Select(records)
	snapshot := p.captions.Latest()
	p.renderer.Render(records, activeID, hasActive, snapshot)

	p.frames++
	if p.eventBus != nil {
		p.eventBus.Publish(bus.Event{
			Type: bus.EventTypeFrameTracked,
			Data: map[string]any{"faces": len(records), "frame": p.frames},
		})
	}

	p.maybeSnapshot()
	return records
}

// Frames returns the number of frames processed so far.
func (p *Pipeline) Frames() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frames
}

// Renderer exposes the overlay surface, e.g. for embedding layers that
// composite it over the video.
func (p *Pipeline) Renderer() *overlay.Renderer {
	return p.renderer
}

func (p *Pipeline) maybeSnapshot() {
	if p.cfg.SnapshotInterval <= 0 {
		return
	}
	now := time.Now()
	if now.Sub(p.lastSnapshot) < p.cfg.SnapshotInterval {
		return
	}
	p.lastSnapshot = now

	if err := os.MkdirAll(p.cfg.SnapshotDir, 0755); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to create snapshot directory")
		return
	}
	path := filepath.Join(p.cfg.SnapshotDir, fmt.Sprintf("overlay_%06d.png", p.frames))
	if err := p.renderer.SavePNG(path); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to save overlay snapshot")
		return
	}

	if p.eventBus != nil {
		p.eventBus.Publish(bus.Event{
			Type: bus.EventTypeSnapshotSaved,
			Data: map[string]any{"path": path},
		})
	}
}
