package pipeline

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/captionmesh/internal/bus"
	"github.com/normanking/captionmesh/internal/caption"
	"github.com/normanking/captionmesh/internal/landmark"
	"github.com/normanking/captionmesh/internal/overlay"
	"github.com/normanking/captionmesh/internal/speaker"
	"github.com/normanking/captionmesh/internal/track"
)

func newTestPipeline(t *testing.T, eventBus *bus.EventBus) (*Pipeline, *caption.Store) {
	t.Helper()

	captions := caption.NewStore(eventBus)
	tracker := track.NewTracker(track.DefaultConfig(), zerolog.Nop())
	selector := speaker.NewSelector(speaker.DefaultMovementTimeout, eventBus, zerolog.Nop())

	rcfg := overlay.DefaultConfig()
	rcfg.Width = 160
	rcfg.Height = 120
	renderer, err := overlay.NewRenderer(rcfg, zerolog.Nop())
	require.NoError(t, err)

	return New(Config{}, tracker, selector, renderer, captions, eventBus, zerolog.Nop()), captions
}

// faceSet builds a full-cardinality set with the given mouth gap.
func faceSet(gap float64) landmark.Set {
	set := make(landmark.Set, landmark.MeshPoints)
	for i := range set {
		f := float64(i) / float64(landmark.MeshPoints)
		set[i] = landmark.Point{0.3 + 0.4*f, 0.3 + 0.4*f, 0}
	}
	for _, pair := range landmark.LipPairs {
		set[pair.Upper] = landmark.Point{0.5, 0.6, 0}
		set[pair.Lower] = landmark.Point{0.5, 0.6 + gap, 0}
	}
	return set
}

func frameOf(gaps ...float64) *landmark.Frame {
	f := &landmark.Frame{Timestamp: time.Now()}
	for _, g := range gaps {
		f.Faces = append(f.Faces, faceSet(g))
	}
	return f
}

func TestPipeline_ProcessFrame(t *testing.T) {
	pipe, _ := newTestPipeline(t, nil)

	records := pipe.ProcessFrame(frameOf(0.01, 0.05))
	require.Len(t, records, 2)
	assert.Equal(t, 0, records[0].ID)
	assert.Equal(t, 1, records[1].ID)
	assert.Equal(t, uint64(1), pipe.Frames())

	// The wider mouth wins among fresh records.
	id, ok := pipe.selector.Active()
	require.True(t, ok)
	assert.Equal(t, 1, id)
}

func TestPipeline_EmptyFrameKeepsSelection(t *testing.T) {
	pipe, _ := newTestPipeline(t, nil)

	pipe.ProcessFrame(frameOf(0.01, 0.05))
	records := pipe.ProcessFrame(frameOf())
	assert.Empty(t, records)

	id, ok := pipe.selector.Active()
	require.True(t, ok)
	assert.Equal(t, 1, id, "selection should carry across an empty frame")
}

func TestPipeline_CaptionSnapshotPassedToRenderer(t *testing.T) {
	pipe, captions := newTestPipeline(t, nil)
	captions.Set(caption.Caption{Text: "hello world", Timestamp: time.Now()})

	// A render pass with a caption must not panic and must count the frame.
	pipe.ProcessFrame(frameOf(0.02))
	assert.Equal(t, uint64(1), pipe.Frames())
}

func TestSessionLog_RecordsEntries(t *testing.T) {
	dir := t.TempDir()
	session, err := NewSessionLog(dir, zerolog.Nop())
	require.NoError(t, err)

	two := 2
	session.RecordSpeakerChange(&two)
	session.RecordSpeakerChange(nil)
	session.RecordCaption("hello")
	require.NoError(t, session.Close())

	file, err := os.Open(session.Path())
	require.NoError(t, err)
	defer file.Close()

	var entries []SessionEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var e SessionEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, entries, 3)

	assert.Equal(t, "speaker_changed", entries[0].Type)
	require.NotNil(t, entries[0].ActiveID)
	assert.Equal(t, 2, *entries[0].ActiveID)

	assert.Equal(t, "speaker_changed", entries[1].Type)
	assert.Nil(t, entries[1].ActiveID)

	assert.Equal(t, "caption", entries[2].Type)
	assert.Equal(t, "hello", entries[2].Text)
}

func TestSessionLog_CloseIsIdempotent(t *testing.T) {
	session, err := NewSessionLog(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, session.Close())
	require.NoError(t, session.Close())
}
