package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/normanking/captionmesh/internal/bus"
)

// SessionEntry is one line in the session log.
type SessionEntry struct {
	Time time.Time `json:"time"`
	Type string    `json:"type"`
	// ActiveID is set for speaker_changed entries; null means the
	// selection was cleared.
	ActiveID *int   `json:"active_id,omitempty"`
	Text     string `json:"text,omitempty"`
}

// SessionLog appends active-speaker changes and caption snapshots to a
// JSON-lines file, one session file per run.
type SessionLog struct {
	ID     string
	path   string
	logger zerolog.Logger

	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewSessionLog creates the outputs directory and opens a session file.
func NewSessionLog(outputsDir string, logger zerolog.Logger) (*SessionLog, error) {
	if err := os.MkdirAll(outputsDir, 0755); err != nil {
		return nil, fmt.Errorf("create outputs directory: %w", err)
	}

	id := uuid.NewString()
	name := fmt.Sprintf("session_%s_%s.jsonl", time.Now().Format("20060102-150405"), id[:8])
	path := filepath.Join(outputsDir, name)

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create session file: %w", err)
	}

	s := &SessionLog{
		ID:     id,
		path:   path,
		file:   file,
		enc:    json.NewEncoder(file),
		logger: logger.With().Str("component", "session").Logger(),
	}
	s.logger.Info().Str("path", path).Str("session", id).Msg("Session log opened")
	return s, nil
}

// Path returns the session file path.
func (s *SessionLog) Path() string {
	return s.path
}

// Attach subscribes the log to speaker and caption events.
func (s *SessionLog) Attach(eventBus *bus.EventBus) {
	eventBus.Subscribe(bus.EventTypeActiveSpeakerChanged, func(e bus.Event) {
		var id *int
		if v, ok := e.Data["id"].(int); ok {
			id = &v
		}
		s.RecordSpeakerChange(id)
	})
	eventBus.Subscribe(bus.EventTypeCaptionUpdated, func(e bus.Event) {
		text, _ := e.Data["text"].(string)
		s.RecordCaption(text)
	})
}

// RecordSpeakerChange appends a speaker_changed entry. A nil id means
// no face is selected.
func (s *SessionLog) RecordSpeakerChange(id *int) {
	s.append(SessionEntry{
		Time:     time.Now(),
		Type:     "speaker_changed",
		ActiveID: id,
	})
}

// RecordCaption appends a caption entry.
func (s *SessionLog) RecordCaption(text string) {
	s.append(SessionEntry{
		Time: time.Now(),
		Type: "caption",
		Text: text,
	})
}

func (s *SessionLog) append(entry SessionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return
	}
	if err := s.enc.Encode(entry); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write session entry")
	}
}

// Close flushes and closes the session file.
func (s *SessionLog) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
