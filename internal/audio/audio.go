package audio

import "time"

const (
	SampleRate    = 16000 // MusicGen output rate
	BitDepth      = 16
	FrameDuration = 20 * time.Millisecond

	// DefaultOutputPath is where generated audio lands when no path is given.
	DefaultOutputPath = "output.wav"
)

// Format describes interleaved PCM audio.
type Format struct {
	SampleRate int
	Channels   int
}

// FrameSize returns samples per channel in one 20ms frame.
func (f Format) FrameSize() int {
	return f.SampleRate * int(FrameDuration/time.Millisecond) / 1000
}

// FrameSamples returns total interleaved samples per frame.
func (f Format) FrameSamples() int {
	return f.FrameSize() * f.Channels
}

// FrameBytes returns bytes per frame (int16 = 2 bytes).
func (f Format) FrameBytes() int {
	return f.FrameSamples() * 2
}

// TrackInfo identifies a track loaded for preview playback.
type TrackInfo struct {
	ID   string
	Path string
	Name string
}
