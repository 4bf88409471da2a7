package musicgen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satindergrewal/musicbox/internal/audio"
)

// fakeModel records calls so tests can assert how the invoker drives it.
type fakeModel struct {
	params   []Params
	opts     []GenerateOptions
	outputs  []audio.Tensor
	err      error
	paramErr error
}

func (f *fakeModel) SetGenerationParams(p Params) error {
	f.params = append(f.params, p)
	return f.paramErr
}

func (f *fakeModel) Generate(_ context.Context, opts GenerateOptions) ([]audio.Tensor, error) {
	f.opts = append(f.opts, opts)
	return f.outputs, f.err
}

func TestGenerateConfiguresModel(t *testing.T) {
	want := audio.Tensor{Shape: []int{2}, Data: []float32{0.1, 0.2}}
	m := &fakeModel{outputs: []audio.Tensor{want, {Shape: []int{1}, Data: []float32{9}}}}

	got, err := Generate(context.Background(), m, Request{Description: "test prompt", Duration: 5}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.Len(t, m.params, 1)
	assert.Equal(t, Params{Duration: 5, UseSampling: true, TopK: 250}, m.params[0])
	require.Len(t, m.opts, 1)
	assert.Equal(t, GenerateOptions{Descriptions: []string{"test prompt"}, Progress: true, ReturnTokens: true}, m.opts[0])
}

func TestGeneratePropagatesModelError(t *testing.T) {
	cause := errors.New("sampler exploded")
	m := &fakeModel{err: cause}

	_, err := Generate(context.Background(), m, Request{Description: "x", Duration: 1}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "sampler exploded", err.Error())
}

func TestGenerateParamError(t *testing.T) {
	m := &fakeModel{paramErr: errors.New("bad params")}
	_, err := Generate(context.Background(), m, Request{Description: "x", Duration: 1}, nil)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Empty(t, m.opts)
}

func TestGenerateEmptyBatch(t *testing.T) {
	_, err := Generate(context.Background(), &fakeModel{}, Request{Description: "x", Duration: 1}, nil)
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestGenerateValidatesRequest(t *testing.T) {
	m := &fakeModel{}
	_, err := Generate(context.Background(), m, Request{Description: "", Duration: 1}, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = Generate(context.Background(), m, Request{Description: "x", Duration: 0}, nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, m.params)
}
