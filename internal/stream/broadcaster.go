package stream

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/satindergrewal/musicbox/internal/metrics"
)

// Broadcaster fans out PCM frames from one source to N listeners.
type Broadcaster struct {
	metrics *metrics.Metrics

	mu        sync.RWMutex
	listeners map[*Listener]struct{}
}

// Listener receives PCM frames from the broadcaster.
type Listener struct {
	ID   string
	C    chan []int16 // buffered channel of 20ms PCM frames
	done chan struct{}
}

// NewBroadcaster creates a new broadcaster. m may be nil.
func NewBroadcaster(m *metrics.Metrics) *Broadcaster {
	return &Broadcaster{
		metrics:   m,
		listeners: make(map[*Listener]struct{}),
	}
}

// Subscribe registers a new listener. Returns a Listener that receives frames.
func (b *Broadcaster) Subscribe() *Listener {
	l := &Listener{
		ID:   uuid.NewString(),
		C:    make(chan []int16, 150), // ~3 seconds of buffer at 20ms/frame
		done: make(chan struct{}),
	}
	b.mu.Lock()
	b.listeners[l] = struct{}{}
	b.mu.Unlock()
	return l
}

// Unsubscribe removes a listener and signals it to stop.
func (b *Broadcaster) Unsubscribe(l *Listener) {
	b.mu.Lock()
	_, ok := b.listeners[l]
	delete(b.listeners, l)
	b.mu.Unlock()
	if ok {
		close(l.done)
	}
}

// ListenerCount returns the number of active listeners.
func (b *Broadcaster) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// closeAll drops every listener and closes its done channel.
func (b *Broadcaster) closeAll() {
	b.mu.Lock()
	ls := b.listeners
	b.listeners = make(map[*Listener]struct{})
	b.mu.Unlock()
	for l := range ls {
		close(l.done)
	}
}

// Run reads frames from source and fans out to all listeners.
// Slow listeners get frames dropped rather than blocking the broadcast.
// When source closes, every listener is released so streams end.
func (b *Broadcaster) Run(ctx context.Context, source <-chan []int16) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-source:
			if !ok {
				b.closeAll()
				return
			}
			dropped := 0
			b.mu.RLock()
			for l := range b.listeners {
				select {
				case l.C <- frame:
				default:
					dropped++
				}
			}
			b.mu.RUnlock()

			if b.metrics != nil {
				b.metrics.FramesBroadcast.Inc()
				b.metrics.FramesDropped.Add(float64(dropped))
			}
		}
	}
}
