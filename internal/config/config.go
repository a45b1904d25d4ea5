// Package config provides configuration management for CaptionMesh
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Tracking   TrackingConfig   `mapstructure:"tracking"`
	Caption    CaptionConfig    `mapstructure:"caption"`
	Overlay    OverlayConfig    `mapstructure:"overlay"`
	Detector   DetectorConfig   `mapstructure:"detector"`
	Recognizer RecognizerConfig `mapstructure:"recognizer"`
	Session    SessionConfig    `mapstructure:"session"`
}

// TrackingConfig configures mouth analysis and face tracking
type TrackingConfig struct {
	// MovementThreshold is the openness delta (normalized landmark
	// units) above which a mouth counts as moving.
	MovementThreshold float64 `mapstructure:"movement_threshold"`
	// MovementTimeout retains recently updated faces in the speaker
	// selection even when their mouth is still.
	MovementTimeout time.Duration `mapstructure:"movement_timeout"`
	// MaxFaces is the maximum number of simultaneously tracked faces.
	MaxFaces int `mapstructure:"max_faces"`
	// StableIDs enables nearest-neighbor face association across
	// frames instead of positional ids.
	StableIDs bool `mapstructure:"stable_ids"`
	// MissEviction is the number of consecutive missed frames before a
	// stable id is dropped. Only used when StableIDs is set.
	MissEviction int `mapstructure:"miss_eviction"`
}

// CaptionConfig configures caption bubble layout
type CaptionConfig struct {
	BubbleMaxWidth float64 `mapstructure:"bubble_max_width"` // px
	PaddingX       float64 `mapstructure:"padding_x"`        // horizontal interior padding, px
	PaddingY       float64 `mapstructure:"padding_y"`        // vertical interior padding, px
	LineHeight     float64 `mapstructure:"line_height"`      // px
	MinHeight      float64 `mapstructure:"min_height"`       // px
	FontPath       string  `mapstructure:"font_path"`        // TTF path; empty uses the built-in face
	FontSize       float64 `mapstructure:"font_size"`        // pt
}

// OverlayConfig configures the drawing surface
type OverlayConfig struct {
	Width            int           `mapstructure:"width"`  // px
	Height           int           `mapstructure:"height"` // px
	Mirror           bool          `mapstructure:"mirror"` // selfie view
	MeshOpacity      float64       `mapstructure:"mesh_opacity"`
	SnapshotDir      string        `mapstructure:"snapshot_dir"`
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"` // 0 disables PNG snapshots
}

// DetectorConfig configures the landmark detector stream
type DetectorConfig struct {
	URL            string        `mapstructure:"url"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	LandmarkCount  int           `mapstructure:"landmark_count"`
}

// RecognizerConfig configures the speech-to-text caption source
type RecognizerConfig struct {
	URL            string        `mapstructure:"url"`
	ReconnectDelay time.Duration `mapstructure:"reconnect_delay"`
	// TranscriptFile enables the file-based caption source; each write
	// to the file replaces the latest caption snapshot.
	TranscriptFile string `mapstructure:"transcript_file"`
}

// SessionConfig configures session logging
type SessionConfig struct {
	OutputsDir string `mapstructure:"outputs_dir"`
	Enabled    bool   `mapstructure:"enabled"`
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Tracking: TrackingConfig{
			MovementThreshold: 0.003,
			MovementTimeout:   1500 * time.Millisecond,
			MaxFaces:          4,
			StableIDs:         false,
			MissEviction:      15,
		},
		Caption: CaptionConfig{
			BubbleMaxWidth: 300,
			PaddingX:       12,
			PaddingY:       16,
			LineHeight:     18,
			MinHeight:      40,
			FontPath:       "",
			FontSize:       14,
		},
		Overlay: OverlayConfig{
			Width:            1280,
			Height:           720,
			Mirror:           true,
			MeshOpacity:      0.25,
			SnapshotDir:      filepath.Join(home, ".captionmesh", "snapshots"),
			SnapshotInterval: 0,
		},
		Detector: DetectorConfig{
			URL:            "http://localhost:8090",
			ReconnectDelay: 3 * time.Second,
			LandmarkCount:  468,
		},
		Recognizer: RecognizerConfig{
			URL:            "http://localhost:8091",
			ReconnectDelay: 3 * time.Second,
			TranscriptFile: "",
		},
		Session: SessionConfig{
			OutputsDir: filepath.Join(home, ".captionmesh", "sessions"),
			Enabled:    true,
		},
	}
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	cfg := DefaultConfig()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return cfg, err
	}

	configDir := filepath.Join(homeDir, ".captionmesh")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return cfg, err
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("CAPTIONMESH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, err
		}
		// Config file not found, use defaults and create one
		if err := Save(cfg); err != nil {
			return cfg, err
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save writes the configuration to file
func Save(cfg *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(homeDir, ".captionmesh")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	viper.Set("tracking", cfg.Tracking)
	viper.Set("caption", cfg.Caption)
	viper.Set("overlay", cfg.Overlay)
	viper.Set("detector", cfg.Detector)
	viper.Set("recognizer", cfg.Recognizer)
	viper.Set("session", cfg.Session)

	configPath := filepath.Join(configDir, "config.yaml")
	return viper.WriteConfigAs(configPath)
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".captionmesh"), nil
}
