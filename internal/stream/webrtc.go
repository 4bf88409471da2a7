package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"
	"go.uber.org/zap"
	"gopkg.in/hraban/opus.v2"

	"github.com/satindergrewal/musicbox/internal/audio"
	"github.com/satindergrewal/musicbox/internal/metrics"
)

const opusBitrate = 96000

// OpusSupportsRate reports whether Opus can encode at rate without resampling.
func OpusSupportsRate(rate int) bool {
	switch rate {
	case 8000, 12000, 16000, 24000, 48000:
		return true
	}
	return false
}

// WebRTCHandler serves WebRTC SDP negotiation for low-latency Opus playback.
type WebRTCHandler struct {
	broadcaster *Broadcaster
	format      audio.Format
	metrics     *metrics.Metrics
	logger      *zap.Logger

	mu    sync.Mutex
	peers []*webrtc.PeerConnection
}

// NewWebRTCHandler creates a WebRTC stream handler for frames in format.
func NewWebRTCHandler(b *Broadcaster, format audio.Format, m *metrics.Metrics, logger *zap.Logger) (*WebRTCHandler, error) {
	if !OpusSupportsRate(format.SampleRate) {
		return nil, fmt.Errorf("opus cannot encode %d Hz audio", format.SampleRate)
	}
	if format.Channels < 1 || format.Channels > 2 {
		return nil, fmt.Errorf("opus supports 1 or 2 channels, got %d", format.Channels)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebRTCHandler{
		broadcaster: b,
		format:      format,
		metrics:     m,
		logger:      logger,
	}, nil
}

// PeerCount returns the number of active WebRTC peers.
func (h *WebRTCHandler) PeerCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

func (h *WebRTCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var offer webrtc.SessionDescription
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil {
		http.Error(w, "invalid SDP offer", http.StatusBadRequest)
		return
	}

	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		http.Error(w, "create peer connection failed", http.StatusInternalServerError)
		return
	}

	audioTrack, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus},
		"audio",
		"musicbox-preview",
	)
	if err != nil {
		pc.Close()
		http.Error(w, "create audio track failed", http.StatusInternalServerError)
		return
	}

	if _, err := pc.AddTrack(audioTrack); err != nil {
		pc.Close()
		http.Error(w, "add track failed", http.StatusInternalServerError)
		return
	}

	if err := pc.SetRemoteDescription(offer); err != nil {
		pc.Close()
		http.Error(w, "set remote description failed", http.StatusBadRequest)
		return
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		pc.Close()
		http.Error(w, "create answer failed", http.StatusInternalServerError)
		return
	}

	if err := pc.SetLocalDescription(answer); err != nil {
		pc.Close()
		http.Error(w, "set local description failed", http.StatusInternalServerError)
		return
	}

	// Wait for ICE gathering to complete
	<-webrtc.GatheringCompletePromise(pc)

	h.addPeer(pc)
	h.logger.Info("WebRTC peer connected", zap.Int("total", h.PeerCount()))

	go h.streamToPeer(pc, audioTrack)

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		if s == webrtc.PeerConnectionStateFailed ||
			s == webrtc.PeerConnectionStateClosed ||
			s == webrtc.PeerConnectionStateDisconnected {
			if h.removePeer(pc) {
				pc.Close()
				h.logger.Info("WebRTC peer disconnected", zap.Int("remaining", h.PeerCount()))
			}
		}
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	json.NewEncoder(w).Encode(pc.LocalDescription())
}

func (h *WebRTCHandler) streamToPeer(pc *webrtc.PeerConnection, track *webrtc.TrackLocalStaticSample) {
	listener := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(listener)

	log := h.logger.With(zap.String("listener", listener.ID))

	enc, err := opus.NewEncoder(h.format.SampleRate, h.format.Channels, opus.AppAudio)
	if err != nil {
		log.Error("opus encoder init failed", zap.Error(err))
		return
	}
	if err := enc.SetBitrate(opusBitrate); err != nil {
		log.Warn("opus bitrate not applied", zap.Error(err))
	}

	opusBuf := make([]byte, 4000)

	for {
		select {
		case <-listener.done:
			return
		case frame, ok := <-listener.C:
			if !ok {
				return
			}
			n, err := enc.Encode(frame, opusBuf)
			if err != nil {
				log.Warn("opus encode failed", zap.Error(err))
				if h.metrics != nil {
					h.metrics.EncodeErrors.Inc()
				}
				continue
			}
			if err := track.WriteSample(media.Sample{
				Data:     opusBuf[:n],
				Duration: audio.FrameDuration,
			}); err != nil {
				return
			}
		}
	}
}

func (h *WebRTCHandler) addPeer(pc *webrtc.PeerConnection) {
	h.mu.Lock()
	h.peers = append(h.peers, pc)
	n := len(h.peers)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.WebRTCPeers.Set(float64(n))
	}
}

func (h *WebRTCHandler) removePeer(pc *webrtc.PeerConnection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, p := range h.peers {
		if p == pc {
			h.peers = append(h.peers[:i], h.peers[i+1:]...)
			if h.metrics != nil {
				h.metrics.WebRTCPeers.Set(float64(len(h.peers)))
			}
			return true
		}
	}
	return false
}
