package sampler

import (
	"testing"

	"github.com/justyntemme/samplergo/pkg/dsp"
	"github.com/justyntemme/samplergo/pkg/midi"
)

// memSource is an in-memory PCMSource for testing.
type memSource struct {
	rate     float64
	channels [][]float32
}

func (m *memSource) SampleRate() float64 {
	return m.rate
}

func (m *memSource) LengthInSamples() int64 {
	if len(m.channels) == 0 {
		return 0
	}
	return int64(len(m.channels[0]))
}

func (m *memSource) NumChannels() int {
	return len(m.channels)
}

func (m *memSource) Read(dest *dsp.Buffer, destOffset, numFrames int, sourceOffset int64, needLeft, needRight bool) error {
	for ch := 0; ch < dest.NumChannels(); ch++ {
		if ch == 0 && !needLeft {
			continue
		}
		if ch == 1 && !needRight {
			continue
		}
		dst := dest.Channel(ch)[destOffset : destOffset+numFrames]
		if ch >= len(m.channels) {
			dsp.Clear(dst)
			continue
		}
		src := m.channels[ch]
		for i := range dst {
			if pos := sourceOffset + int64(i); pos < int64(len(src)) {
				dst[i] = src[pos]
			} else {
				dst[i] = 0
			}
		}
	}
	return nil
}

// rampSource returns a mono source whose sample i has value i.
func rampSource(frames int, rate float64) *memSource {
	data := make([]float32, frames)
	for i := range data {
		data[i] = float32(i)
	}
	return &memSource{rate: rate, channels: [][]float32{data}}
}

// constSource returns a source with one constant-valued channel per
// level given.
func constSource(frames int, rate float64, levels ...float32) *memSource {
	channels := make([][]float32, len(levels))
	for ch, level := range levels {
		channels[ch] = make([]float32, frames)
		for i := range channels[ch] {
			channels[ch][i] = level
		}
	}
	return &memSource{rate: rate, channels: channels}
}

func mustNewSound(t *testing.T, name string, src PCMSource, root int, attack, release float64) *SamplerSound {
	t.Helper()
	sound, err := NewSound(name, src, midi.AllNotes(), root, attack, release, 10.0)
	if err != nil {
		t.Fatalf("NewSound: %v", err)
	}
	return sound
}

func TestSoundDataHasZeroPaddedTail(t *testing.T) {
	sound := mustNewSound(t, "ramp", rampSource(1000, 48000), 60, 0, 0)

	if sound.Length() != 1000 {
		t.Fatalf("expected length 1000, got %d", sound.Length())
	}
	if got := sound.data.NumFrames(); got < sound.Length()+4 {
		t.Fatalf("expected at least %d frames, got %d", sound.Length()+4, got)
	}
	for i := sound.Length(); i < sound.Length()+4; i++ {
		if v := sound.data.Channel(0)[i]; v != 0 {
			t.Errorf("expected zero padding at frame %d, got %f", i, v)
		}
	}
}

func TestSoundLengthCappedByMaxSeconds(t *testing.T) {
	src := rampSource(48000, 48000) // one second of audio
	sound, err := NewSound("capped", src, midi.AllNotes(), 60, 0, 0, 0.5)
	if err != nil {
		t.Fatalf("NewSound: %v", err)
	}
	if sound.Length() != 24000 {
		t.Errorf("expected capped length 24000, got %d", sound.Length())
	}
}

func TestSoundChannelCountClamped(t *testing.T) {
	src := &memSource{rate: 44100, channels: [][]float32{
		make([]float32, 64), make([]float32, 64), make([]float32, 64),
	}}
	sound := mustNewSound(t, "multi", src, 60, 0, 0)
	if got := sound.data.NumChannels(); got != 2 {
		t.Errorf("expected 2 channels, got %d", got)
	}
}

func TestEmptySound(t *testing.T) {
	for name, src := range map[string]*memSource{
		"zero rate":   {rate: 0, channels: [][]float32{make([]float32, 64)}},
		"zero length": {rate: 44100},
	} {
		sound, err := NewSound(name, src, midi.AllNotes(), 60, 0.1, 0.1, 10.0)
		if err != nil {
			t.Fatalf("%s: NewSound: %v", name, err)
		}
		if !sound.IsEmpty() {
			t.Errorf("%s: expected empty sound", name)
		}
		if sound.Length() != 0 {
			t.Errorf("%s: expected zero length, got %d", name, sound.Length())
		}
	}
}

func TestSoundAppliesToNote(t *testing.T) {
	notes := midi.NewNoteSet(60, 62, 64)
	sound, err := NewSound("notes", rampSource(100, 44100), notes, 60, 0, 0, 10.0)
	if err != nil {
		t.Fatalf("NewSound: %v", err)
	}

	for _, n := range []int{60, 62, 64} {
		if !sound.AppliesToNote(n) {
			t.Errorf("expected sound to apply to note %d", n)
		}
	}
	for _, n := range []int{59, 61, 72} {
		if sound.AppliesToNote(n) {
			t.Errorf("expected sound not to apply to note %d", n)
		}
	}
}

func TestSoundAppliesToAllChannels(t *testing.T) {
	sound := mustNewSound(t, "channels", rampSource(100, 44100), 60, 0, 0)
	for ch := 1; ch <= 16; ch++ {
		if !sound.AppliesToChannel(ch) {
			t.Errorf("expected sound to apply to channel %d", ch)
		}
	}
}

func TestSoundEnvelopeParameters(t *testing.T) {
	sound := mustNewSound(t, "env", rampSource(100, 44100), 60, 0.02, 0.3)
	p := sound.EnvelopeParameters()
	if p.Attack != 0.02 || p.Release != 0.3 {
		t.Errorf("expected attack 0.02 / release 0.3, got %f / %f", p.Attack, p.Release)
	}
	if p.Sustain != 1.0 {
		t.Errorf("expected sustain 1.0, got %f", p.Sustain)
	}
}
