// Package dsp provides digital signal processing utilities for audio
package dsp

import "math"

// Buffer is a multi-channel, non-interleaved block of float32 audio.
// All per-block operations are allocation-free; channel storage is
// created once at construction and reused for the buffer's lifetime.
type Buffer struct {
	channels [][]float32
}

// NewBuffer allocates a buffer of numChannels channels and numFrames
// frames, zero-initialised.
func NewBuffer(numChannels, numFrames int) *Buffer {
	if numChannels < 0 {
		numChannels = 0
	}
	if numFrames < 0 {
		numFrames = 0
	}
	channels := make([][]float32, numChannels)
	for ch := range channels {
		channels[ch] = make([]float32, numFrames)
	}
	return &Buffer{channels: channels}
}

// Wrap creates a buffer view over existing channel slices without
// copying. All channels must have the same length.
func Wrap(channels ...[]float32) *Buffer {
	return &Buffer{channels: channels}
}

// NumChannels returns the channel count.
func (b *Buffer) NumChannels() int {
	return len(b.channels)
}

// NumFrames returns the per-channel frame count.
func (b *Buffer) NumFrames() int {
	if len(b.channels) == 0 {
		return 0
	}
	return len(b.channels[0])
}

// Channel returns the samples of one channel.
func (b *Buffer) Channel(ch int) []float32 {
	return b.channels[ch]
}

// ChannelFrom returns the samples of one channel starting at the given
// frame, the write-pointer form used by block renderers.
func (b *Buffer) ChannelFrom(ch, start int) []float32 {
	return b.channels[ch][start:]
}

// Clear zeroes every channel.
func (b *Buffer) Clear() {
	for ch := range b.channels {
		Clear(b.channels[ch])
	}
}

// ClearRegion zeroes numFrames frames of every channel beginning at
// start.
func (b *Buffer) ClearRegion(start, numFrames int) {
	if numFrames <= 0 {
		return
	}
	for ch := range b.channels {
		Clear(b.channels[ch][start : start+numFrames])
	}
}

// CopyFrom overwrites a region of one channel with src, starting at
// destStart.
func (b *Buffer) CopyFrom(ch, destStart int, src []float32) {
	copy(b.channels[ch][destStart:], src)
}

// AddFrom accumulates src into one channel starting at destStart.
func (b *Buffer) AddFrom(ch, destStart int, src []float32) {
	Add(b.channels[ch][destStart:], src)
}

// ApplyGainRamp multiplies numFrames frames of one channel by a gain
// that moves linearly from startGain to endGain.
func (b *Buffer) ApplyGainRamp(ch, start, numFrames int, startGain, endGain float32) {
	if numFrames <= 0 {
		return
	}
	inc := (endGain - startGain) / float32(numFrames)
	gain := startGain
	data := b.channels[ch][start : start+numFrames]
	for i := range data {
		data[i] *= gain
		gain += inc
	}
}

// Clear zeroes a slice - no allocations
func Clear(buffer []float32) {
	for i := range buffer {
		buffer[i] = 0
	}
}

// Add accumulates src into dst - no allocations
func Add(dst, src []float32) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i] += src[i]
	}
}

// AddScaled accumulates scaled src into dst - no allocations
func AddScaled(dst, src []float32, scale float32) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		dst[i] += src[i] * scale
	}
}

// Scale multiplies a slice by a constant - no allocations
func Scale(buffer []float32, scale float32) {
	for i := range buffer {
		buffer[i] *= scale
	}
}

// Peak finds the maximum absolute value in a slice
func Peak(buffer []float32) float32 {
	peak := float32(0)
	for _, sample := range buffer {
		abs := sample
		if abs < 0 {
			abs = -abs
		}
		if abs > peak {
			peak = abs
		}
	}
	return peak
}

// RMS calculates the root mean square of a slice
func RMS(buffer []float32) float32 {
	if len(buffer) == 0 {
		return 0
	}
	sum := float32(0)
	for _, sample := range buffer {
		sum += sample * sample
	}
	return float32(math.Sqrt(float64(sum / float32(len(buffer)))))
}
