package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envVars = []string{
	"MUSICGEN_API_URL", "MUSICGEN_MODEL", "MUSICGEN_DESCRIPTION",
	"MUSICGEN_DURATION", "MUSICGEN_OUTPUT", "MUSICGEN_SAMPLE_RATE",
	"MUSIC_ENDPOINT_URL", "MUSIC_RECEIVED_PATH",
	"PREVIEW_PORT", "PREVIEW_CROSSFADE", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envVars {
		// register restore, then unset
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.MusicGenAPIURL != "http://musicgen:8000" {
		t.Errorf("MusicGenAPIURL = %q, want default", cfg.MusicGenAPIURL)
	}
	if cfg.ModelName != "facebook/musicgen-small" {
		t.Errorf("ModelName = %q, want facebook/musicgen-small", cfg.ModelName)
	}
	if cfg.Description != "A very mass bollywood style music for the entry of hero" {
		t.Errorf("Description = %q, want default", cfg.Description)
	}
	if cfg.Duration != 10 {
		t.Errorf("Duration = %v, want 10", cfg.Duration)
	}
	if cfg.OutputPath != "output.wav" {
		t.Errorf("OutputPath = %q, want output.wav", cfg.OutputPath)
	}
	if cfg.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", cfg.SampleRate)
	}
	if cfg.RemoteURL != "" {
		t.Errorf("RemoteURL = %q, want empty", cfg.RemoteURL)
	}
	if cfg.ReceivedPath != "received_music.wav" {
		t.Errorf("ReceivedPath = %q, want received_music.wav", cfg.ReceivedPath)
	}
	if cfg.PreviewPort != 8080 {
		t.Errorf("PreviewPort = %d, want 8080", cfg.PreviewPort)
	}
	if cfg.PreviewCrossfade != 2*time.Second {
		t.Errorf("PreviewCrossfade = %v, want 2s", cfg.PreviewCrossfade)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MUSICGEN_API_URL", "http://localhost:9000")
	t.Setenv("MUSICGEN_MODEL", "facebook/musicgen-medium")
	t.Setenv("MUSICGEN_DESCRIPTION", "lofi rain")
	t.Setenv("MUSICGEN_DURATION", "7.5")
	t.Setenv("MUSICGEN_OUTPUT", "/tmp/out.wav")
	t.Setenv("MUSICGEN_SAMPLE_RATE", "32000")
	t.Setenv("MUSIC_ENDPOINT_URL", "https://example.ngrok-free.app")
	t.Setenv("MUSIC_RECEIVED_PATH", "/tmp/got.wav")
	t.Setenv("PREVIEW_PORT", "3000")
	t.Setenv("PREVIEW_CROSSFADE", "4")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.MusicGenAPIURL != "http://localhost:9000" {
		t.Errorf("MusicGenAPIURL = %q, want env override", cfg.MusicGenAPIURL)
	}
	if cfg.ModelName != "facebook/musicgen-medium" {
		t.Errorf("ModelName = %q, want env override", cfg.ModelName)
	}
	if cfg.Description != "lofi rain" {
		t.Errorf("Description = %q, want env override", cfg.Description)
	}
	if cfg.Duration != 7.5 {
		t.Errorf("Duration = %v, want 7.5", cfg.Duration)
	}
	if cfg.OutputPath != "/tmp/out.wav" {
		t.Errorf("OutputPath = %q, want env override", cfg.OutputPath)
	}
	if cfg.SampleRate != 32000 {
		t.Errorf("SampleRate = %d, want 32000", cfg.SampleRate)
	}
	if cfg.RemoteURL != "https://example.ngrok-free.app" {
		t.Errorf("RemoteURL = %q, want env override", cfg.RemoteURL)
	}
	if cfg.ReceivedPath != "/tmp/got.wav" {
		t.Errorf("ReceivedPath = %q, want env override", cfg.ReceivedPath)
	}
	if cfg.PreviewPort != 3000 {
		t.Errorf("PreviewPort = %d, want 3000", cfg.PreviewPort)
	}
	if cfg.PreviewCrossfade != 4*time.Second {
		t.Errorf("PreviewCrossfade = %v, want 4s", cfg.PreviewCrossfade)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestEnvInvalidFallsBack(t *testing.T) {
	t.Setenv("PREVIEW_PORT", "not-a-number")
	t.Setenv("MUSICGEN_DURATION", "ten")
	cfg := Load()
	if cfg.PreviewPort != 8080 {
		t.Errorf("Invalid int env should fallback to default: got %d, want 8080", cfg.PreviewPort)
	}
	if cfg.Duration != 10 {
		t.Errorf("Invalid float env should fallback to default: got %v, want 10", cfg.Duration)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("MUSIC_ENDPOINT_URL=https://remote.test\nMUSICGEN_DURATION=5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MUSICGEN_DURATION", "12")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	cfg := Load()
	if cfg.RemoteURL != "https://remote.test" {
		t.Errorf("RemoteURL = %q, want value from .env", cfg.RemoteURL)
	}
	// existing env wins over .env
	if cfg.Duration != 12 {
		t.Errorf("Duration = %v, want 12", cfg.Duration)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestPreviewCrossfadeFormats(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"2s", 2 * time.Second},
		{"1500ms", 1500 * time.Millisecond},
		{"4", 4 * time.Second},
		{"0", 0},
		{"soon", 2 * time.Second},
		{"-3s", 2 * time.Second},
	}
	for _, tt := range tests {
		t.Setenv("PREVIEW_CROSSFADE", tt.value)
		if got := Load().PreviewCrossfade; got != tt.want {
			t.Errorf("PREVIEW_CROSSFADE=%q: got %v, want %v", tt.value, got, tt.want)
		}
	}
}
