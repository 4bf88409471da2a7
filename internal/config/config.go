package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// MusicGen inference server
	MusicGenAPIURL string
	ModelName      string

	// Generation
	Description string
	Duration    float64 // seconds
	OutputPath  string
	SampleRate  int

	// Retrieval
	RemoteURL    string // base URL serving GET /music, required by fetch
	ReceivedPath string

	// Preview server
	PreviewPort      int
	PreviewCrossfade time.Duration

	LogLevel string
}

// LoadDotEnv reads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		MusicGenAPIURL: envStr("MUSICGEN_API_URL", "http://musicgen:8000"),
		ModelName:      envStr("MUSICGEN_MODEL", "facebook/musicgen-small"),

		Description: envStr("MUSICGEN_DESCRIPTION", "A very mass bollywood style music for the entry of hero"),
		Duration:    envFloat("MUSICGEN_DURATION", 10),
		OutputPath:  envStr("MUSICGEN_OUTPUT", "output.wav"),
		SampleRate:  envInt("MUSICGEN_SAMPLE_RATE", 16000),

		RemoteURL:    envStr("MUSIC_ENDPOINT_URL", ""),
		ReceivedPath: envStr("MUSIC_RECEIVED_PATH", "received_music.wav"),

		PreviewPort:      envInt("PREVIEW_PORT", 8080),
		PreviewCrossfade: envDuration("PREVIEW_CROSSFADE", 2*time.Second),

		LogLevel: envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envDuration accepts Go durations ("2s", "1500ms") or bare whole seconds.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 0 {
		return time.Duration(n) * time.Second
	}
	return fallback
}
