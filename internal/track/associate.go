package track

import (
	"sort"

	"github.com/normanking/captionmesh/internal/landmark"
)

type trackEntry struct {
	centroid landmark.Point
	misses   int
}

// Associator assigns stable ids to faces across frames by matching
// face centroids to the previous frame's tracks by minimum
// displacement. Tracks unseen for maxMisses consecutive frames are
// evicted.
type Associator struct {
	nextID    int
	maxMisses int
	tracks    map[int]*trackEntry
}

// NewAssociator creates an associator. maxMisses <= 0 evicts a track
// on its first missed frame.
func NewAssociator(maxMisses int) *Associator {
	return &Associator{
		maxMisses: maxMisses,
		tracks:    make(map[int]*trackEntry),
	}
}

type candidate struct {
	faceIdx int
	trackID int
	dist    float64
}

// Assign matches this frame's faces to existing tracks and returns one
// id per face, in face order. Unmatched faces get fresh ids.
func (a *Associator) Assign(faces []landmark.Set) []int {
	centroids := make([]landmark.Point, len(faces))
	for i, f := range faces {
		centroids[i] = f.Centroid()
	}

	// All face/track pairings, cheapest displacement first.
	var cands []candidate
	for i, c := range centroids {
		for id, tr := range a.tracks {
			cands = append(cands, candidate{
				faceIdx: i,
				trackID: id,
				dist:    c.Sub(tr.centroid).Len(),
			})
		}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })

	ids := make([]int, len(faces))
	for i := range ids {
		ids[i] = -1
	}
	claimed := make(map[int]bool, len(a.tracks))
	for _, c := range cands {
		if ids[c.faceIdx] >= 0 || claimed[c.trackID] {
			continue
		}
		ids[c.faceIdx] = c.trackID
		claimed[c.trackID] = true
	}

	for i, id := range ids {
		if id < 0 {
			id = a.nextID
			a.nextID++
			ids[i] = id
			a.tracks[id] = &trackEntry{}
		}
		a.tracks[id].centroid = centroids[i]
		a.tracks[id].misses = 0
	}

	for id, tr := range a.tracks {
		if claimed[id] {
			continue
		}
		matchedNew := false
		for _, assigned := range ids {
			if assigned == id {
				matchedNew = true
				break
			}
		}
		if matchedNew {
			continue
		}
		tr.misses++
		if tr.misses > a.maxMisses {
			delete(a.tracks, id)
		}
	}

	return ids
}

// Reset drops all tracks and restarts id assignment.
func (a *Associator) Reset() {
	a.nextID = 0
	a.tracks = make(map[int]*trackEntry)
}
