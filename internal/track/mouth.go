// Package track turns per-frame landmark sets into persistent face
// records with mouth-movement state.
package track

import (
	"math"

	"github.com/normanking/captionmesh/internal/landmark"
)

// DefaultMovementThreshold is the openness delta, in normalized
// landmark units, above which a mouth counts as moving.
const DefaultMovementThreshold = 0.003

// Openness returns a non-negative scalar approximating the vertical
// mouth gap: the mean 3-D distance over the configured lip pairs.
// Pairs with a missing index are skipped; if no pair is valid the
// openness is 0.
func Openness(set landmark.Set) float64 {
	var sum float64
	var count int
	for _, pair := range landmark.LipPairs {
		upper, ok := set.At(pair.Upper)
		if !ok {
			continue
		}
		lower, ok := set.At(pair.Lower)
		if !ok {
			continue
		}
		sum += upper.Sub(lower).Len()
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// MovementDetector compares per-face openness across frames. It keeps
// the last-seen openness per face id; entries are overwritten every
// frame the id is present and never removed. Under positional ids the
// map is bounded by the maximum simultaneous face count.
type MovementDetector struct {
	threshold float64
	history   map[int]float64
}

// NewMovementDetector creates a detector with the given threshold.
// A zero or negative threshold falls back to the default.
func NewMovementDetector(threshold float64) *MovementDetector {
	if threshold <= 0 {
		threshold = DefaultMovementThreshold
	}
	return &MovementDetector{
		threshold: threshold,
		history:   make(map[int]float64),
	}
}

// Detect reports whether the mouth for id moved since its previous
// frame. A never-seen id uses the current openness as its baseline, so
// the first sighting never registers movement. The stored value is
// overwritten unconditionally. A delta of exactly the threshold does
// not count as movement.
func (d *MovementDetector) Detect(id int, openness float64) bool {
	prev, ok := d.history[id]
	if !ok {
		prev = openness
	}
	d.history[id] = openness
	return math.Abs(openness-prev) > d.threshold
}

// Reset clears all stored baselines.
func (d *MovementDetector) Reset() {
	d.history = make(map[int]float64)
}
