// Package sampler implements a polyphonic sample-playback engine:
// preloaded sounds, pitch-shifting voices with click-free note
// termination, and a synthesiser that routes MIDI to voices.
package sampler

import (
	"fmt"

	"github.com/justyntemme/samplergo/pkg/dsp"
	"github.com/justyntemme/samplergo/pkg/dsp/envelope"
	"github.com/justyntemme/samplergo/pkg/midi"
)

// Sound is the capability every playable asset exposes to the engine.
type Sound interface {
	// AppliesToNote reports whether the sound should respond to the
	// given MIDI note number.
	AppliesToNote(midiNote int) bool
	// AppliesToChannel reports whether the sound should respond to
	// events on the given MIDI channel.
	AppliesToChannel(midiChannel int) bool
}

// PCMSource supplies decoded PCM frames to a sound at load time.
type PCMSource interface {
	SampleRate() float64
	LengthInSamples() int64
	NumChannels() int
	// Read copies numFrames frames beginning at sourceOffset into dest
	// starting at destOffset, zero-filling past the end of the source.
	// needLeft/needRight select which channels the caller wants.
	Read(dest *dsp.Buffer, destOffset, numFrames int, sourceOffset int64, needLeft, needRight bool) error
}

// SamplerSound is an immutable, fully preloaded sample. It may be
// shared by any number of concurrently rendering voices; nothing is
// mutated after construction.
type SamplerSound struct {
	name             string
	sourceSampleRate float64
	midiNotes        midi.NoteSet
	midiRootNote     int

	// data holds at most two channels and length+4 frames; the trailing
	// frames are zero so the interpolator may read pos+1 at pos==length.
	data   *dsp.Buffer
	length int

	params envelope.Parameters
}

// NewSound builds a sound by reading the whole source into memory,
// capped at maxSampleLengthSeconds. A source with a non-positive rate
// or no frames yields an empty sound that is never selected for
// playback.
func NewSound(name string, source PCMSource, notes midi.NoteSet, midiNoteForNormalPitch int,
	attackTimeSecs, releaseTimeSecs, maxSampleLengthSeconds float64) (*SamplerSound, error) {

	s := &SamplerSound{
		name:             name,
		sourceSampleRate: source.SampleRate(),
		midiNotes:        notes,
		midiRootNote:     midiNoteForNormalPitch,
	}

	if s.sourceSampleRate > 0 && source.LengthInSamples() > 0 {
		s.length = int(source.LengthInSamples())
		if capped := int(maxSampleLengthSeconds * s.sourceSampleRate); s.length > capped {
			s.length = capped
		}

		numChannels := source.NumChannels()
		if numChannels > 2 {
			numChannels = 2
		}

		s.data = dsp.NewBuffer(numChannels, s.length+4)
		if err := source.Read(s.data, 0, s.length+4, 0, true, true); err != nil {
			return nil, fmt.Errorf("sampler: reading %q: %w", name, err)
		}

		s.params = envelope.DefaultParameters()
		s.params.Attack = attackTimeSecs
		s.params.Release = releaseTimeSecs
	}

	return s, nil
}

// Name returns the sound's label.
func (s *SamplerSound) Name() string {
	return s.name
}

// RootNote returns the MIDI note at which the sample plays untransposed.
func (s *SamplerSound) RootNote() int {
	return s.midiRootNote
}

// SourceSampleRate returns the rate the sample was recorded at; 0 for
// an empty sound.
func (s *SamplerSound) SourceSampleRate() float64 {
	return s.sourceSampleRate
}

// Length returns the usable frame count.
func (s *SamplerSound) Length() int {
	return s.length
}

// EnvelopeParameters returns the amplitude envelope timings applied to
// voices playing this sound.
func (s *SamplerSound) EnvelopeParameters() envelope.Parameters {
	return s.params
}

// IsEmpty reports whether the sound was constructed without playable
// data.
func (s *SamplerSound) IsEmpty() bool {
	return s.data == nil
}

// AppliesToNote reports whether the note is in the sound's note set.
func (s *SamplerSound) AppliesToNote(midiNote int) bool {
	return s.midiNotes.Contains(midiNote)
}

// AppliesToChannel accepts every channel.
func (s *SamplerSound) AppliesToChannel(int) bool {
	return true
}
