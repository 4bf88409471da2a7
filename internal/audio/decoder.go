package audio

import (
	"encoding/binary"
	"path/filepath"
	"strings"
)

// Track is a decoded WAV file ready for real-time playback.
type Track struct {
	Info    TrackInfo
	Format  Format
	Samples []int16 // interleaved
}

// Frames returns the playable length in whole 20ms frames.
func (t Track) Frames() int {
	fs := t.Format.FrameSamples()
	if fs == 0 {
		return 0
	}
	return len(t.Samples) / fs
}

// DecodeFile loads a WAV file into interleaved int16 samples.
func DecodeFile(path, id string) (Track, error) {
	tensor, rate, err := ReadWAV(path)
	if err != nil {
		return Track{}, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Track{
		Info:    TrackInfo{ID: id, Path: path, Name: name},
		Format:  Format{SampleRate: rate, Channels: tensor.Channels()},
		Samples: ToInterleavedInt16(tensor),
	}, nil
}

// SamplesToBytes converts int16 samples to little-endian bytes.
func SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}
