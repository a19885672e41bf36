package audio

import "time"

// TargetSampleRate is the canonical rate every backend receives.
const TargetSampleRate = 16000

// Resampling allocates in proportion to TargetSampleRate/rate, so declared
// rates outside this range are rejected before any samples are produced.
const (
	MinSampleRate = 4000
	MaxSampleRate = 384000
)

// ValidSampleRate reports whether rate lies within the supported range.
func ValidSampleRate(rate int) bool {
	return rate >= MinSampleRate && rate <= MaxSampleRate
}

// Buffer holds decoded PCM as floats in [-1, 1]. Multi-channel audio is
// interleaved frame by frame.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames reports the number of sample frames (samples per channel).
func (b *Buffer) Frames() int {
	if b == nil || b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(b.Frames()) / float64(b.SampleRate) * float64(time.Second))
}

// IsCanonical reports whether the buffer is mono at the target rate.
func (b *Buffer) IsCanonical(targetRate int) bool {
	return b != nil && b.Channels == 1 && b.SampleRate == targetRate
}

func (b *Buffer) valid() bool {
	return b != nil && b.SampleRate > 0 && b.Channels > 0
}
