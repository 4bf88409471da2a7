package audio

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pipeline plays one track on a loop at real-time rate, blending the end of
// each pass into the start of the next.
type Pipeline struct {
	track        Track
	frameCh      chan []int16
	skipCh       chan struct{}
	crossfadeDur time.Duration
	logger       *zap.Logger

	mu       sync.RWMutex
	position time.Duration
	loops    int
}

// NewPipeline creates a looping pipeline for track.
func NewPipeline(track Track, crossfadeDuration time.Duration, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		track:        track,
		frameCh:      make(chan []int16, 100),
		skipCh:       make(chan struct{}, 1),
		crossfadeDur: crossfadeDuration,
		logger:       logger,
	}
}

// Frames returns the channel of outgoing PCM frames (20ms each).
func (p *Pipeline) Frames() <-chan []int16 {
	return p.frameCh
}

// Format returns the PCM format of emitted frames.
func (p *Pipeline) Format() Format {
	return p.track.Format
}

// Skip restarts the track from the top.
func (p *Pipeline) Skip() {
	select {
	case p.skipCh <- struct{}{}:
	default:
	}
}

// Status returns current playback info.
func (p *Pipeline) Status() (track TrackInfo, position, duration time.Duration) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.track.Info, p.position, time.Duration(p.track.Frames()) * FrameDuration
}

// Loops returns how many full passes have completed.
func (p *Pipeline) Loops() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loops
}

// Run starts playback. Blocks until ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) {
	defer close(p.frameCh)

	total := p.track.Frames()
	if total == 0 {
		p.logger.Warn("track has no full frames, nothing to play", zap.String("path", p.track.Info.Path))
		return
	}

	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()

	cfFrames := p.crossfadeFrames(total)
	fs := p.track.Format.FrameSamples()
	seam := LoopSeam(p.track.Samples[:total*fs], cfFrames*fs, p.track.Format.Channels)
	p.logger.Info("now playing",
		zap.String("track", p.track.Info.Name),
		zap.Int("frames", total),
		zap.Int("crossfade_frames", cfFrames))

	start := 0
	for {
		next, completed := p.playPass(ctx, ticker, start, total, seam)
		if ctx.Err() != nil {
			return
		}
		if completed {
			p.mu.Lock()
			p.loops++
			p.mu.Unlock()
		}
		start = next
	}
}

func (p *Pipeline) crossfadeFrames(total int) int {
	cf := int(p.crossfadeDur / FrameDuration)
	if cf > total/2 {
		cf = total / 2 // don't crossfade more than half the track
	}
	if cf < 0 {
		cf = 0
	}
	return cf
}

// playPass plays frames [start, total) with the final frames replaced by
// the precomputed loop seam. It returns the frame the next pass should start
// at and whether the pass reached the end.
func (p *Pipeline) playPass(ctx context.Context, ticker *time.Ticker, start, total int, seam []int16) (int, bool) {
	fs := p.track.Format.FrameSamples()
	samples := p.track.Samples
	cfFrames := len(seam) / fs
	cfStart := total - cfFrames

	for i := start; i < cfStart; i++ {
		if !p.sendFrame(ctx, ticker, samples[i*fs:(i+1)*fs]) {
			return 0, false
		}
		p.updatePosition(i)
	}

	for i := 0; i < cfFrames; i++ {
		if !p.sendFrame(ctx, ticker, seam[i*fs:(i+1)*fs]) {
			return 0, false
		}
		p.updatePosition(cfStart + i)
	}

	return cfFrames, true
}

// sendFrame waits for the ticker then sends a frame. Returns false on skip or cancel.
func (p *Pipeline) sendFrame(ctx context.Context, ticker *time.Ticker, frame []int16) bool {
	select {
	case <-ctx.Done():
		return false
	case <-p.skipCh:
		p.logger.Info("track restarted")
		return false
	case <-ticker.C:
	}

	select {
	case p.frameCh <- frame:
		return true
	case <-ctx.Done():
		return false
	}
}

func (p *Pipeline) updatePosition(frameIdx int) {
	p.mu.Lock()
	p.position = time.Duration(frameIdx) * FrameDuration
	p.mu.Unlock()
}
