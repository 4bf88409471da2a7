package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satindergrewal/musicbox/internal/audio"
)

func TestOpusSupportsRate(t *testing.T) {
	assert.True(t, OpusSupportsRate(16000))
	assert.True(t, OpusSupportsRate(48000))
	assert.False(t, OpusSupportsRate(44100))
	assert.False(t, OpusSupportsRate(32000))
}

func TestNewWebRTCHandlerValidatesFormat(t *testing.T) {
	b := NewBroadcaster(nil)

	_, err := NewWebRTCHandler(b, audio.Format{SampleRate: 44100, Channels: 2}, nil, nil)
	assert.Error(t, err)
	_, err = NewWebRTCHandler(b, audio.Format{SampleRate: 16000, Channels: 6}, nil, nil)
	assert.Error(t, err)

	h, err := NewWebRTCHandler(b, audio.Format{SampleRate: 16000, Channels: 1}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, h.PeerCount())
}

func TestWebRTCHandlerRejectsBadRequests(t *testing.T) {
	h, err := NewWebRTCHandler(NewBroadcaster(nil), audio.Format{SampleRate: 16000, Channels: 2}, nil, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/offer", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/offer", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/offer", strings.NewReader("{not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
