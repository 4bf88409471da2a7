// Package retrieve downloads music rendered by a remote generation server.
package retrieve

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
)

// DefaultPath is where fetched music is written when no path is given.
const DefaultPath = "received_music.wav"

var (
	// ErrNetwork covers transport failures and non-200 responses.
	ErrNetwork = errors.New("fetch music")
	// ErrDecode covers malformed JSON, a missing music field and bad base64.
	ErrDecode = errors.New("decode music payload")
	// ErrIO is returned when the decoded audio cannot be written.
	ErrIO = errors.New("write music")
)

// Payload is the JSON body served by the music endpoint.
type Payload struct {
	Music *string `json:"music"`
}

// Client fetches base64 encoded audio from a remote endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

// NewClient creates a client for endpoint, the server's base URL.
func NewClient(endpoint string, logger *zap.Logger) (*Client, error) {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("music endpoint URL is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{},
		logger:   logger,
	}, nil
}

// Fetch issues GET {endpoint}/music and returns the decoded audio bytes.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	url := c.endpoint + "/music"
	c.logger.Info("Fetching music", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrNetwork, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrNetwork, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return DecodePayload(body)
}

// DecodePayload extracts and base64-decodes the music field of a JSON body.
func DecodePayload(body []byte) ([]byte, error) {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if p.Music == nil {
		return nil, fmt.Errorf("%w: missing \"music\" field", ErrDecode)
	}

	data, err := base64.StdEncoding.DecodeString(*p.Music)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return data, nil
}

// Save fetches the music and writes it verbatim to path. Nothing is written
// if the fetch or decode fails.
func (c *Client) Save(ctx context.Context, path string) (string, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := c.Fetch(ctx)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}

	c.logger.Info("Music saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}
