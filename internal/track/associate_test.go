package track

import (
	"testing"

	"github.com/normanking/captionmesh/internal/landmark"
)

// offsetFaceSet returns a small set centered near (cx, cy).
func offsetFaceSet(cx, cy float64) landmark.Set {
	return landmark.Set{
		{cx - 0.01, cy - 0.01, 0},
		{cx + 0.01, cy - 0.01, 0},
		{cx, cy + 0.01, 0},
	}
}

func TestAssociator_StableAcrossReorder(t *testing.T) {
	a := NewAssociator(3)

	left := offsetFaceSet(0.25, 0.5)
	right := offsetFaceSet(0.75, 0.5)

	ids := a.Assign([]landmark.Set{left, right})
	if ids[0] == ids[1] {
		t.Fatalf("expected distinct ids, got %v", ids)
	}
	leftID, rightID := ids[0], ids[1]

	// Detection order flips; ids must follow the centroids.
	ids = a.Assign([]landmark.Set{right, left})
	if ids[0] != rightID || ids[1] != leftID {
		t.Errorf("expected ids to follow centroids, got %v (want [%d %d])", ids, rightID, leftID)
	}
}

func TestAssociator_NewFaceGetsFreshID(t *testing.T) {
	a := NewAssociator(3)

	ids := a.Assign([]landmark.Set{offsetFaceSet(0.25, 0.5)})
	first := ids[0]

	ids = a.Assign([]landmark.Set{offsetFaceSet(0.25, 0.5), offsetFaceSet(0.8, 0.5)})
	if ids[0] != first {
		t.Errorf("expected existing face to keep id %d, got %d", first, ids[0])
	}
	if ids[1] == first {
		t.Error("expected new face to get a fresh id")
	}
}

func TestAssociator_EvictionAfterMisses(t *testing.T) {
	a := NewAssociator(1)

	ids := a.Assign([]landmark.Set{offsetFaceSet(0.25, 0.5)})
	first := ids[0]

	// Two consecutive missed frames exceed maxMisses=1.
	a.Assign(nil)
	a.Assign(nil)

	ids = a.Assign([]landmark.Set{offsetFaceSet(0.25, 0.5)})
	if ids[0] == first {
		t.Errorf("expected evicted id %d not to be reused for a reappearing face", first)
	}
}

func TestAssociator_SurvivesShortDropout(t *testing.T) {
	a := NewAssociator(2)

	ids := a.Assign([]landmark.Set{offsetFaceSet(0.5, 0.5)})
	first := ids[0]

	a.Assign(nil) // one missed frame, within tolerance

	ids = a.Assign([]landmark.Set{offsetFaceSet(0.52, 0.5)})
	if ids[0] != first {
		t.Errorf("expected id %d to survive a short dropout, got %d", first, ids[0])
	}
}
