// Command preview loops a WAV file to browsers over HTTP and WebRTC.
//
//	preview [file.wav]
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/satindergrewal/musicbox/internal/audio"
	"github.com/satindergrewal/musicbox/internal/config"
	"github.com/satindergrewal/musicbox/internal/logging"
	"github.com/satindergrewal/musicbox/internal/metrics"
	"github.com/satindergrewal/musicbox/internal/stream"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "preview: %v\n", err)
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

	path := cfg.OutputPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	track, err := audio.DecodeFile(path, uuid.NewString())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	pipeline := audio.NewPipeline(track, cfg.PreviewCrossfade, logger)
	go pipeline.Run(ctx)

	broadcaster := stream.NewBroadcaster(m)
	go broadcaster.Run(ctx, pipeline.Frames())

	webrtcHandler, err := stream.NewWebRTCHandler(broadcaster, track.Format, m, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/stream", stream.NewHTTPHandler(broadcaster, track.Format, m, logger))
	mux.Handle("/offer", webrtcHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		info, pos, dur := pipeline.Status()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		json.NewEncoder(w).Encode(map[string]any{
			"track_id":         info.ID,
			"track_name":       info.Name,
			"track_path":       info.Path,
			"position":         pos.Seconds(),
			"duration":         dur.Seconds(),
			"loops":            pipeline.Loops(),
			"sample_rate":      track.Format.SampleRate,
			"channels":         track.Format.Channels,
			"http_listeners":   broadcaster.ListenerCount(),
			"webrtc_listeners": webrtcHandler.PeerCount(),
		})
	})

	mux.HandleFunc("/api/restart", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		pipeline.Skip()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})

	mux.HandleFunc("/track.wav", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.wav"`, track.Info.Name))
		http.ServeFile(w, r, track.Info.Path)
	})

	addr := fmt.Sprintf(":%d", cfg.PreviewPort)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down...")
		server.Close()
	}()

	logger.Info("preview live", zap.String("addr", addr), zap.String("track", track.Info.Name))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}
