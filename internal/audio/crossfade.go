package audio

// Smoothstep returns 3t^2 - 2t^3 for t clamped to [0,1].
func Smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// LoopSeam renders the region played at a loop boundary: the last n
// interleaved samples of the track faded out over the first n faded in.
// The gain advances once per sample frame so channels of one instant share
// a gain. n is clamped to half the track and rounded down to whole frames.
func LoopSeam(samples []int16, n, channels int) []int16 {
	if channels < 1 {
		channels = 1
	}
	if n > len(samples)/2 {
		n = len(samples) / 2
	}
	n -= n % channels
	if n <= 0 {
		return nil
	}

	tail := samples[len(samples)-n:]
	seam := make([]int16, n)
	steps := float64(n / channels)
	for i := 0; i < n; i += channels {
		gain := Smoothstep(float64(i/channels) / steps)
		for c := i; c < i+channels; c++ {
			seam[c] = mix(tail[c], samples[c], gain)
		}
	}
	return seam
}

func mix(out, in int16, gain float64) int16 {
	v := float64(out)*(1-gain) + float64(in)*gain
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
