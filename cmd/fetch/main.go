// Command fetch downloads music from a remote generation server and writes
// it to received_music.wav.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/satindergrewal/musicbox/internal/config"
	"github.com/satindergrewal/musicbox/internal/logging"
	"github.com/satindergrewal/musicbox/internal/retrieve"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fetch: %v\n", err)
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

	client, err := retrieve.NewClient(cfg.RemoteURL, logger)
	if err != nil {
		return fmt.Errorf("%w (set MUSIC_ENDPOINT_URL)", err)
	}

	_, err = client.Save(ctx, cfg.ReceivedPath)
	return err
}
