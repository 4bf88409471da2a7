// Command generate renders one MusicGen prompt to output.wav.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/satindergrewal/musicbox/internal/config"
	"github.com/satindergrewal/musicbox/internal/generate"
	"github.com/satindergrewal/musicbox/internal/logging"
	"github.com/satindergrewal/musicbox/internal/musicgen"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "generate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("read .env: %w", err)
	}
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := musicgen.NewClient(cfg.MusicGenAPIURL, logger)
	path, err := generate.Run(ctx, client, generate.Options{
		ModelName: cfg.ModelName,
		Request: musicgen.Request{
			Description: cfg.Description,
			Duration:    cfg.Duration,
		},
		SampleRate: cfg.SampleRate,
		OutputPath: cfg.OutputPath,
	}, logger)
	if err != nil {
		return err
	}

	logger.Info("Music generated and saved", zap.String("path", path))
	return nil
}
