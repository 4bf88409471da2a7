package musicgen

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/satindergrewal/musicbox/internal/audio"
)

// Generate configures m for req and synthesizes audio for its single
// description. The returned tensor is the first element of the batch,
// exactly as the model produced it.
func Generate(ctx context.Context, m Model, req Request, logger *zap.Logger) (audio.Tensor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := req.Validate(); err != nil {
		return audio.Tensor{}, err
	}

	if err := m.SetGenerationParams(DefaultParams(req.Duration)); err != nil {
		return audio.Tensor{}, &GenerationError{Err: err}
	}

	logger.Info("Generating music", zap.String("prompt", req.Description), zap.Float64("duration", req.Duration))
	outputs, err := m.Generate(ctx, GenerateOptions{
		Descriptions: []string{req.Description},
		Progress:     true,
		ReturnTokens: true,
	})
	if err != nil {
		return audio.Tensor{}, &GenerationError{Err: err}
	}
	if len(outputs) == 0 {
		return audio.Tensor{}, &GenerationError{Err: errors.New("model returned an empty batch")}
	}

	logger.Debug("model output", zap.String("shape", audio.FormatShape(outputs[0].Shape)))
	return outputs[0], nil
}
