package stream

import (
	"encoding/binary"
	"net/http"

	"go.uber.org/zap"

	"github.com/satindergrewal/musicbox/internal/audio"
	"github.com/satindergrewal/musicbox/internal/metrics"
)

// streamingDataSize marks RIFF and data chunks of unknown length.
const streamingDataSize = 0xFFFFFFFF

// HTTPHandler serves the live preview as an open-ended 16-bit PCM WAV stream.
type HTTPHandler struct {
	broadcaster *Broadcaster
	format      audio.Format
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewHTTPHandler creates an HTTP stream handler for frames in format.
func NewHTTPHandler(b *Broadcaster, format audio.Format, m *metrics.Metrics, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{broadcaster: b, format: format, metrics: m, logger: logger}
}

// WAVStreamHeader returns a 44-byte PCM WAV header whose sizes are left
// open so players keep reading until the connection closes.
func WAVStreamHeader(f audio.Format) []byte {
	byteRate := f.SampleRate * f.Channels * audio.BitDepth / 8
	blockAlign := f.Channels * audio.BitDepth / 8

	h := make([]byte, 44)
	copy(h[0:4], "RIFF")
	binary.LittleEndian.PutUint32(h[4:8], streamingDataSize)
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	binary.LittleEndian.PutUint32(h[16:20], 16)
	binary.LittleEndian.PutUint16(h[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(h[22:24], uint16(f.Channels))
	binary.LittleEndian.PutUint32(h[24:28], uint32(f.SampleRate))
	binary.LittleEndian.PutUint32(h[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(h[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(h[34:36], audio.BitDepth)
	copy(h[36:40], "data")
	binary.LittleEndian.PutUint32(h[40:44], streamingDataSize)
	return h
}

func (h *HTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.Header().Set("Connection", "close")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	listener := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(listener)

	if h.metrics != nil {
		h.metrics.HTTPListeners.Inc()
		defer h.metrics.HTTPListeners.Dec()
	}

	log := h.logger.With(zap.String("listener", listener.ID))
	log.Info("HTTP listener connected", zap.Int("total", h.broadcaster.ListenerCount()))
	defer log.Info("HTTP listener disconnected")

	if _, err := w.Write(WAVStreamHeader(h.format)); err != nil {
		return
	}
	flusher.Flush()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-listener.done:
			return
		case frame, ok := <-listener.C:
			if !ok {
				return
			}
			if _, err := w.Write(audio.SamplesToBytes(frame)); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
