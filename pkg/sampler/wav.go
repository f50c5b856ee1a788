package sampler

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"

	"github.com/justyntemme/samplergo/pkg/dsp"
	"github.com/justyntemme/samplergo/pkg/framework/debug"
	"github.com/justyntemme/samplergo/pkg/midi"
)

// wavSource holds a fully decoded, de-interleaved WAV file and serves
// it through the PCMSource interface.
type wavSource struct {
	sampleRate  float64
	numChannels int
	length      int64
	channels    [][]float32
}

// NewWAVSource decodes a whole WAV stream into memory and returns it as
// a PCMSource. Integer PCM is normalised to [-1, 1] by its source bit
// depth.
func NewWAVSource(r io.ReadSeeker) (PCMSource, error) {
	decoder := wav.NewDecoder(r)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("sampler: decoding wav: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, fmt.Errorf("sampler: wav stream has no format")
	}

	numChannels := buf.Format.NumChannels
	numFrames := len(buf.Data) / numChannels

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := 1.0 / float32(int64(1)<<uint(bitDepth-1))

	channels := make([][]float32, numChannels)
	for ch := range channels {
		channels[ch] = make([]float32, numFrames)
	}
	for i := 0; i < numFrames; i++ {
		for ch := 0; ch < numChannels; ch++ {
			channels[ch][i] = float32(buf.Data[i*numChannels+ch]) * scale
		}
	}

	return &wavSource{
		sampleRate:  float64(buf.Format.SampleRate),
		numChannels: numChannels,
		length:      int64(numFrames),
		channels:    channels,
	}, nil
}

func (w *wavSource) SampleRate() float64 {
	return w.sampleRate
}

func (w *wavSource) LengthInSamples() int64 {
	return w.length
}

func (w *wavSource) NumChannels() int {
	return w.numChannels
}

func (w *wavSource) Read(dest *dsp.Buffer, destOffset, numFrames int, sourceOffset int64, needLeft, needRight bool) error {
	if destOffset < 0 || numFrames < 0 || destOffset+numFrames > dest.NumFrames() {
		return fmt.Errorf("sampler: read of %d frames at %d exceeds destination of %d frames",
			numFrames, destOffset, dest.NumFrames())
	}

	for ch := 0; ch < dest.NumChannels(); ch++ {
		if ch == 0 && !needLeft {
			continue
		}
		if ch == 1 && !needRight {
			continue
		}
		dst := dest.Channel(ch)[destOffset : destOffset+numFrames]
		if ch >= w.numChannels {
			dsp.Clear(dst)
			continue
		}
		src := w.channels[ch]
		for i := range dst {
			if pos := sourceOffset + int64(i); pos < w.length {
				dst[i] = src[pos]
			} else {
				dst[i] = 0
			}
		}
	}
	return nil
}

// LoadWAVSound opens a WAV file and builds a SamplerSound from it.
func LoadWAVSound(path, name string, notes midi.NoteSet, midiNoteForNormalPitch int,
	attackTimeSecs, releaseTimeSecs, maxSampleLengthSeconds float64) (*SamplerSound, error) {

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sampler: opening %q: %w", path, err)
	}
	defer f.Close()

	source, err := NewWAVSource(f)
	if err != nil {
		return nil, fmt.Errorf("sampler: loading %q: %w", path, err)
	}

	sound, err := NewSound(name, source, notes, midiNoteForNormalPitch,
		attackTimeSecs, releaseTimeSecs, maxSampleLengthSeconds)
	if err != nil {
		return nil, err
	}

	debug.Info("loaded %q: %.0f Hz, %d channels, %d frames",
		path, source.SampleRate(), source.NumChannels(), sound.Length())
	return sound, nil
}
