// Package musicgen wraps a pretrained text-to-music model behind a small
// load/configure/generate contract.
package musicgen

import (
	"context"
	"errors"
	"fmt"

	"github.com/satindergrewal/musicbox/internal/audio"
)

// DefaultModel is the pretrained checkpoint used when none is configured.
const DefaultModel = "facebook/musicgen-small"

// DefaultTopK restricts sampling to the 250 most likely tokens per step.
const DefaultTopK = 250

var (
	// ErrLoad is returned when a model cannot be obtained.
	ErrLoad = errors.New("load model")
	// ErrGeneration matches every *GenerationError.
	ErrGeneration = errors.New("generate audio")
	// ErrInvalidRequest is returned for an empty description or non-positive duration.
	ErrInvalidRequest = errors.New("invalid generation request")
)

// Params configures sampling for subsequent Generate calls.
type Params struct {
	Duration    float64 `json:"duration"` // seconds
	UseSampling bool    `json:"use_sampling"`
	TopK        int     `json:"top_k"`
}

// DefaultParams returns sampling enabled with top-k 250 for the given duration.
func DefaultParams(duration float64) Params {
	return Params{Duration: duration, UseSampling: true, TopK: DefaultTopK}
}

// GenerateOptions selects what a Generate call produces.
type GenerateOptions struct {
	Descriptions []string
	Progress     bool
	ReturnTokens bool
}

// Model is a loaded generative model. Implementations are not required to
// be safe for concurrent use.
type Model interface {
	SetGenerationParams(p Params) error
	Generate(ctx context.Context, opts GenerateOptions) ([]audio.Tensor, error)
}

// Loader obtains pretrained models by name.
type Loader interface {
	GetPretrained(ctx context.Context, name string) (Model, error)
}

// Request is a single text-to-music prompt.
type Request struct {
	Description string
	Duration    float64 // seconds
}

// Validate checks the request is usable.
func (r Request) Validate() error {
	if r.Description == "" {
		return fmt.Errorf("%w: description is empty", ErrInvalidRequest)
	}
	if r.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidRequest, r.Duration)
	}
	return nil
}

// GenerationError carries a failure from the underlying model unchanged.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return e.Err.Error() }

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }
