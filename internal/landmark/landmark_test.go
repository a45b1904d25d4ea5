package landmark

import (
	"testing"
	"time"
)

func TestParseFrame_ObjectPoints(t *testing.T) {
	payload := []byte(`[[{"x":0.1,"y":0.2,"z":0.3},{"x":0.4,"y":0.5,"z":0.6}]]`)
	ts := time.Now()

	frame, err := ParseFrame(payload, 4, ts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frame.Faces) != 1 {
		t.Fatalf("expected 1 face, got %d", len(frame.Faces))
	}
	if got := frame.Faces[0][0]; got.X() != 0.1 || got.Y() != 0.2 || got.Z() != 0.3 {
		t.Errorf("unexpected first point: %v", got)
	}
	if !frame.Timestamp.Equal(ts) {
		t.Errorf("expected timestamp to be preserved")
	}
}

func TestParseFrame_ArrayPoints(t *testing.T) {
	payload := []byte(`[[[0.1,0.2,0.3],[0.4,0.5,0.6]],[[0.7,0.8,0.9]]]`)

	frame, err := ParseFrame(payload, 4, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frame.Faces) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(frame.Faces))
	}
	if got := frame.Faces[1][0]; got.X() != 0.7 || got.Z() != 0.9 {
		t.Errorf("unexpected point: %v", got)
	}
}

func TestParseFrame_ArrayPointWithoutZ(t *testing.T) {
	payload := []byte(`[[[0.1,0.2]]]`)

	frame, err := ParseFrame(payload, 4, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := frame.Faces[0][0]; got.Z() != 0 {
		t.Errorf("expected missing z to default to 0, got %f", got.Z())
	}
}

func TestParseFrame_MaxFacesCap(t *testing.T) {
	payload := []byte(`[[[0.1,0.1,0]],[[0.2,0.2,0]],[[0.3,0.3,0]]]`)

	frame, err := ParseFrame(payload, 2, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frame.Faces) != 2 {
		t.Errorf("expected cap at 2 faces, got %d", len(frame.Faces))
	}
}

func TestParseFrame_ZeroFaces(t *testing.T) {
	frame, err := ParseFrame([]byte(`[]`), 4, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(frame.Faces) != 0 {
		t.Errorf("expected empty frame, got %d faces", len(frame.Faces))
	}
}

func TestParseFrame_Malformed(t *testing.T) {
	if _, err := ParseFrame([]byte(`{"not":"an array"}`), 4, time.Now()); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestSet_At(t *testing.T) {
	set := Set{{0.1, 0.2, 0.3}}
	if _, ok := set.At(-1); ok {
		t.Error("expected miss for negative index")
	}
	if _, ok := set.At(1); ok {
		t.Error("expected miss for out-of-range index")
	}
	if p, ok := set.At(0); !ok || p.X() != 0.1 {
		t.Errorf("expected hit at index 0, got %v (ok=%v)", p, ok)
	}
}

func TestSet_Centroid(t *testing.T) {
	set := Set{{0, 0, 0}, {1, 1, 1}}
	c := set.Centroid()
	if c.X() != 0.5 || c.Y() != 0.5 || c.Z() != 0.5 {
		t.Errorf("unexpected centroid: %v", c)
	}
	if got := (Set{}).Centroid(); got != (Point{}) {
		t.Errorf("expected zero centroid for empty set, got %v", got)
	}
}

func TestLipPairsCount(t *testing.T) {
	if len(LipPairs) != 13 {
		t.Errorf("expected 13 lip pairs, got %d", len(LipPairs))
	}
	for _, p := range LipPairs {
		if p.Upper >= MeshPoints || p.Lower >= MeshPoints {
			t.Errorf("lip pair %+v outside mesh cardinality", p)
		}
	}
}

func TestContoursWithinMesh(t *testing.T) {
	for _, c := range Contours {
		for _, idx := range c.Indices {
			if idx < 0 || idx >= MeshPoints {
				t.Errorf("contour %s index %d outside mesh cardinality", c.Name, idx)
			}
		}
	}
}
