// Command captionmesh runs the face-tracking caption overlay pipeline
// against external landmark-detector and speech-to-text services.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/normanking/captionmesh/internal/bus"
	"github.com/normanking/captionmesh/internal/caption"
	"github.com/normanking/captionmesh/internal/config"
	"github.com/normanking/captionmesh/internal/detect"
	"github.com/normanking/captionmesh/internal/landmark"
	"github.com/normanking/captionmesh/internal/logging"
	"github.com/normanking/captionmesh/internal/overlay"
	"github.com/normanking/captionmesh/internal/pipeline"
	"github.com/normanking/captionmesh/internal/speaker"
	"github.com/normanking/captionmesh/internal/track"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "captionmesh",
		Short: "Face-tracking caption overlay pipeline",
	}

	var logLevel string
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the detector and recognizer and run the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(logLevel)
		},
	}
	runCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("captionmesh", version)
		},
	}

	root.AddCommand(runCmd, versionCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(logLevel string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.LogLevel(logLevel)
	logger, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logger.Close()
	zlog := logger.Zerolog()

	eventBus := bus.NewEventBus()

	captions := caption.NewStore(eventBus)

	tracker := track.NewTracker(track.Config{
		MovementThreshold: cfg.Tracking.MovementThreshold,
		MaxFaces:          cfg.Tracking.MaxFaces,
		StableIDs:         cfg.Tracking.StableIDs,
		MissEviction:      cfg.Tracking.MissEviction,
	}, zlog)

	selector := speaker.NewSelector(cfg.Tracking.MovementTimeout, eventBus, zlog)

	renderer, err := overlay.NewRenderer(overlay.Config{
		Width:       cfg.Overlay.Width,
		Height:      cfg.Overlay.Height,
		Mirror:      cfg.Overlay.Mirror,
		MeshOpacity: cfg.Overlay.MeshOpacity,
		Bubble: overlay.BubbleStyle{
			MaxWidth:   cfg.Caption.BubbleMaxWidth,
			PaddingX:   cfg.Caption.PaddingX,
			PaddingY:   cfg.Caption.PaddingY,
			LineHeight: cfg.Caption.LineHeight,
			MinHeight:  cfg.Caption.MinHeight,
			CornerR:    10,
			TailWidth:  16,
			TailHeight: 10,
		},
		FontPath: cfg.Caption.FontPath,
		FontSize: cfg.Caption.FontSize,
	}, zlog)
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}

	pipe := pipeline.New(pipeline.Config{
		SnapshotInterval: cfg.Overlay.SnapshotInterval,
		SnapshotDir:      cfg.Overlay.SnapshotDir,
	}, tracker, selector, renderer, captions, eventBus, zlog)

	if cfg.Session.Enabled {
		session, err := pipeline.NewSessionLog(cfg.Session.OutputsDir, zlog)
		if err != nil {
			return fmt.Errorf("open session log: %w", err)
		}
		defer session.Close()
		session.Attach(eventBus)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	captionSource := caption.NewStreamSource(cfg.Recognizer.URL, captions, cfg.Recognizer.ReconnectDelay, zlog)
	if err := captionSource.Connect(ctx); err != nil {
		return fmt.Errorf("connect caption stream: %w", err)
	}
	defer captionSource.Disconnect()

	if cfg.Recognizer.TranscriptFile != "" {
		fileSource := caption.NewFileSource(cfg.Recognizer.TranscriptFile, captions, zlog)
		if err := fileSource.Start(ctx); err != nil {
			return fmt.Errorf("watch transcript file: %w", err)
		}
		defer fileSource.Stop()
	}

	detectorSource := detect.NewStreamSource(cfg.Detector.URL, cfg.Tracking.MaxFaces, cfg.Detector.ReconnectDelay, eventBus, zlog)
	if err := detectorSource.Start(ctx, func(frame *landmark.Frame) {
		pipe.ProcessFrame(frame)
	}); err != nil {
		return fmt.Errorf("start detector stream: %w", err)
	}
	defer detectorSource.Stop()

	zlog.Info().Str("version", version).Msg("CaptionMesh running, press Ctrl-C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	zlog.Info().Uint64("frames", pipe.Frames()).Msg("Shutting down")
	return nil
}
