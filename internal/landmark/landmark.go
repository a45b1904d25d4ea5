// Package landmark defines facial landmark geometry and normalizes raw
// detector payloads into per-frame landmark sets.
package landmark

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Point is a single 3-D landmark in normalized [0,1] space.
type Point = mgl64.Vec3

// Set is the ordered landmark list for one detected face. Cardinality
// is fixed by the detector configuration (468 for the full face mesh).
type Set []Point

// At returns the landmark at index i, reporting whether it exists.
func (s Set) At(i int) (Point, bool) {
	if i < 0 || i >= len(s) {
		return Point{}, false
	}
	return s[i], true
}

// Centroid returns the mean position of all landmarks in the set.
func (s Set) Centroid() Point {
	if len(s) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range s {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(s)))
}

// Frame is one detector callback: zero or more faces in detection order.
type Frame struct {
	Faces     []Set
	Timestamp time.Time
}

// wirePoint accepts both detector payload shapes: {"x":..,"y":..,"z":..}
// and [x, y, z].
type wirePoint struct {
	X, Y, Z float64
}

func (p *wirePoint) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var arr []float64
		if err := json.Unmarshal(data, &arr); err != nil {
			return err
		}
		if len(arr) < 2 {
			return fmt.Errorf("landmark point needs at least x and y, got %d values", len(arr))
		}
		p.X, p.Y = arr[0], arr[1]
		if len(arr) > 2 {
			p.Z = arr[2]
		}
		return nil
	}
	var obj struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	p.X, p.Y, p.Z = obj.X, obj.Y, obj.Z
	return nil
}

// ParseFrame normalizes a raw detector payload (JSON array of faces,
// each an ordered array of points) into a Frame. Faces beyond maxFaces
// are dropped in detection order. A payload with zero faces is valid
// and yields an empty frame.
func ParseFrame(data []byte, maxFaces int, ts time.Time) (*Frame, error) {
	var raw [][]wirePoint
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse landmark frame: %w", err)
	}

	frame := &Frame{Timestamp: ts}
	for _, face := range raw {
		if maxFaces > 0 && len(frame.Faces) >= maxFaces {
			break
		}
		set := make(Set, len(face))
		for i, p := range face {
			set[i] = Point{p.X, p.Y, p.Z}
		}
		frame.Faces = append(frame.Faces, set)
	}
	return frame, nil
}
