// Package detect is the boundary to the external landmark detector. It
// delivers normalized landmark frames to the pipeline; the detection
// model itself lives in an external service.
package detect

import (
	"context"

	"github.com/normanking/captionmesh/internal/landmark"
)

// FrameHandler receives one normalized frame per detector callback.
// Handlers run on the source's read goroutine; the pipeline processes
// each frame synchronously before the next is delivered.
type FrameHandler func(*landmark.Frame)

// Source delivers landmark frames from a detector.
type Source interface {
	// Start begins frame delivery to the handler.
	Start(ctx context.Context, handler FrameHandler) error

	// Stop ends frame delivery.
	Stop()
}
