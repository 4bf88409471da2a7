// Package generate runs the text-to-WAV flow: load a model, generate one
// prompt, normalize the output and save it.
package generate

import (
	"context"

	"go.uber.org/zap"

	"github.com/satindergrewal/musicbox/internal/audio"
	"github.com/satindergrewal/musicbox/internal/musicgen"
)

// Options selects the model, prompt and destination for one run.
type Options struct {
	ModelName  string
	Request    musicgen.Request
	SampleRate int
	OutputPath string
}

func (o Options) withDefaults() Options {
	if o.ModelName == "" {
		o.ModelName = musicgen.DefaultModel
	}
	if o.SampleRate == 0 {
		o.SampleRate = audio.SampleRate
	}
	if o.OutputPath == "" {
		o.OutputPath = audio.DefaultOutputPath
	}
	return o
}

// Run loads the model through loader and writes one generated track.
// It returns the path of the WAV file.
func Run(ctx context.Context, loader musicgen.Loader, opts Options, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()

	if err := opts.Request.Validate(); err != nil {
		return "", err
	}

	logger.Info("Loading model...", zap.String("model", opts.ModelName))
	model, err := loader.GetPretrained(ctx, opts.ModelName)
	if err != nil {
		return "", err
	}

	return Save(ctx, model, opts, logger)
}

// Save generates with an already loaded model and writes the result.
func Save(ctx context.Context, model musicgen.Model, opts Options, logger *zap.Logger) (string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()

	logger.Info("Generating music for prompt", zap.String("prompt", opts.Request.Description))
	tensor, err := musicgen.Generate(ctx, model, opts.Request, logger)
	if err != nil {
		return "", err
	}

	path, err := audio.SaveAudio(tensor, opts.SampleRate, opts.OutputPath)
	if err != nil {
		return "", err
	}

	logger.Info("Audio saved", zap.String("path", path))
	return path, nil
}
