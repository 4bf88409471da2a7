package audio

import (
	"errors"
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

var (
	// ErrIO wraps failures to create, write or read an audio file.
	ErrIO = errors.New("audio file i/o")
	// ErrFormat is returned when a WAV file is not 16-bit PCM.
	ErrFormat = errors.New("unsupported WAV format")
)

const (
	wavFormatPCM = 1
	maxInt16     = 32767
)

// SaveAudio normalizes t and writes it as a PCM WAV file.
// It returns the path written.
func SaveAudio(t Tensor, sampleRate int, path string) (string, error) {
	norm, err := Normalize(t)
	if err != nil {
		return "", err
	}
	return WriteWAV(norm, sampleRate, path)
}

// WriteWAV writes a channels × samples tensor as 16-bit PCM WAV.
// Samples are clipped to [-1, 1]. A partially written file is left in place
// on failure.
func WriteWAV(t Tensor, sampleRate int, path string) (string, error) {
	if t.Rank() != 2 {
		return "", &ShapeError{Shape: cloneShape(t.Shape), Reason: "WAV needs channels × samples"}
	}
	if t.Channels() < 1 {
		return "", &ShapeError{Shape: cloneShape(t.Shape), Reason: "no channels"}
	}
	if err := checkSize(t.Shape, len(t.Data)); err != nil {
		return "", err
	}
	if sampleRate <= 0 {
		return "", fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if path == "" {
		path = DefaultOutputPath
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: create %s: %w", ErrIO, path, err)
	}

	channels := t.Channels()
	enc := wav.NewEncoder(f, sampleRate, BitDepth, channels, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           interleaveInts(t),
		SourceBitDepth: BitDepth,
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return "", fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return "", fmt.Errorf("%w: finalize %s: %w", ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: close %s: %w", ErrIO, path, err)
	}
	return path, nil
}

// ReadWAV loads a 16-bit PCM WAV file as a channels × samples tensor with
// values scaled to [-1, 1]. It also returns the file's sample rate.
func ReadWAV(path string) (Tensor, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tensor{}, 0, fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Tensor{}, 0, fmt.Errorf("%w: %s is not a valid WAV file", ErrFormat, path)
	}
	if dec.BitDepth != BitDepth {
		return Tensor{}, 0, fmt.Errorf("%w: bit depth %d, want %d", ErrFormat, dec.BitDepth, BitDepth)
	}
	if dec.NumChans == 0 {
		return Tensor{}, 0, fmt.Errorf("%w: no channels", ErrFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Tensor{}, 0, fmt.Errorf("%w: read PCM from %s: %w", ErrIO, path, err)
	}

	channels := int(dec.NumChans)
	n := len(buf.Data) / channels
	data := make([]float32, channels*n)
	for i := 0; i < n; i++ {
		for c := 0; c < channels; c++ {
			data[c*n+i] = float32(buf.Data[i*channels+c]) / maxInt16
		}
	}

	return Tensor{Shape: []int{channels, n}, Data: data}, int(dec.SampleRate), nil
}

// ToInterleavedInt16 converts a channels × samples tensor to interleaved
// int16 PCM.
func ToInterleavedInt16(t Tensor) []int16 {
	ints := interleaveInts(t)
	out := make([]int16, len(ints))
	for i, v := range ints {
		out[i] = int16(v)
	}
	return out
}

func interleaveInts(t Tensor) []int {
	channels, n := t.Channels(), t.Samples()
	out := make([]int, channels*n)
	for i := 0; i < n; i++ {
		for c := 0; c < channels; c++ {
			out[i*channels+c] = floatToPCM16(t.At(c, i))
		}
	}
	return out
}

func floatToPCM16(v float32) int {
	f := float64(v)
	if math.IsNaN(f) {
		return 0
	}
	if f > 1 {
		f = 1
	} else if f < -1 {
		f = -1
	}
	return int(math.Round(f * maxInt16))
}
