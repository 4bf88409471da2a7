package musicgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/satindergrewal/musicbox/internal/audio"
)

// Client loads models hosted by a MusicGen inference server over HTTP.
type Client struct {
	apiURL string
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a MusicGen API client. Requests carry no timeout;
// generation may take minutes and is bounded only by ctx.
func NewClient(apiURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiURL: strings.TrimRight(apiURL, "/"),
		http:   &http.Client{},
		logger: logger,
	}
}

var _ Loader = (*Client)(nil)

type loadRequest struct {
	Model string `json:"model"`
}

type generateRequest struct {
	Model        string   `json:"model"`
	Descriptions []string `json:"descriptions"`
	Params
	Progress     bool `json:"progress"`
	ReturnTokens bool `json:"return_tokens"`
}

type generateResponse struct {
	Outputs []audio.Tensor `json:"outputs"`
	Error   string         `json:"error"`
}

// GetPretrained asks the server to load name and returns a handle to it.
// The server may download weights on first use.
func (c *Client) GetPretrained(ctx context.Context, name string) (Model, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty model name", ErrLoad)
	}

	c.logger.Info("Loading model", zap.String("model", name))
	resp, err := c.post(ctx, "/models/load", loadRequest{Model: name})
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrLoad, name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w %s: status %d: %s", ErrLoad, name, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return &RemoteModel{client: c, name: name}, nil
}

// RemoteModel is a model loaded on the inference server.
type RemoteModel struct {
	client *Client
	name   string
	params Params
	set    bool
}

// Name returns the checkpoint identifier.
func (m *RemoteModel) Name() string {
	return m.name
}

// SetGenerationParams stores p for subsequent Generate calls.
func (m *RemoteModel) SetGenerationParams(p Params) error {
	if p.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", p.Duration)
	}
	if p.TopK < 0 {
		return fmt.Errorf("top_k must not be negative, got %d", p.TopK)
	}
	m.params = p
	m.set = true
	return nil
}

// Generate runs one generation request on the server.
func (m *RemoteModel) Generate(ctx context.Context, opts GenerateOptions) ([]audio.Tensor, error) {
	if !m.set {
		return nil, fmt.Errorf("generation params not set")
	}

	resp, err := m.client.post(ctx, "/generate", generateRequest{
		Model:        m.name,
		Descriptions: opts.Descriptions,
		Params:       m.params,
		Progress:     opts.Progress,
		ReturnTokens: opts.ReturnTokens,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("musicgen status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("musicgen: %s", result.Error)
	}
	return result.Outputs, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	return resp, nil
}
