package sampler

import (
	"math"

	"github.com/justyntemme/samplergo/pkg/dsp"
	"github.com/justyntemme/samplergo/pkg/dsp/envelope"
)

// Voice is a single monophonic playback head driven by the
// synthesiser. All methods are called from the audio goroutine only.
type Voice interface {
	// Base exposes the shared per-voice bookkeeping.
	Base() *BaseVoice
	// CanPlaySound reports whether this voice knows how to render the
	// given sound variant.
	CanPlaySound(sound Sound) bool
	// StartNote arms the voice. The sound has already been matched via
	// CanPlaySound; passing any other variant is a programmer error.
	StartNote(midiNote int, velocity float32, sound Sound, currentPitchWheelPosition int)
	// StopNote ends the note: with allowTailOff the envelope releases
	// naturally, without it the voice schedules a one-block fade.
	StopNote(velocity float32, allowTailOff bool)
	PitchWheelMoved(newValue int)
	ControllerMoved(controllerNumber, newValue int)
	// RenderNextBlock accumulates numSamples frames into output
	// starting at startSample.
	RenderNextBlock(output *dsp.Buffer, startSample, numSamples int)
}

// BaseVoice carries the bookkeeping the synthesiser maintains for every
// voice: playback rate, the borrowed reference to the sound being
// played, and allocation age. Concrete voices embed it.
type BaseVoice struct {
	sampleRate   float64
	currentNote  int
	currentSound Sound
	noteOnTime   uint64
}

// Base returns the voice's shared state.
func (b *BaseVoice) Base() *BaseVoice {
	return b
}

// SampleRate returns the host playback rate.
func (b *BaseVoice) SampleRate() float64 {
	return b.sampleRate
}

// SetCurrentPlaybackSampleRate is called by the synthesiser before any
// rendering happens.
func (b *BaseVoice) SetCurrentPlaybackSampleRate(rate float64) {
	b.sampleRate = rate
}

// CurrentlyPlayingNote returns the active MIDI note, or -1.
func (b *BaseVoice) CurrentlyPlayingNote() int {
	return b.currentNote
}

// CurrentlyPlayingSound returns the sound this voice is rendering, or
// nil when idle. The reference is borrowed; the synthesiser guarantees
// its lifetime for the duration of the note.
func (b *BaseVoice) CurrentlyPlayingSound() Sound {
	return b.currentSound
}

// IsActive reports whether the voice is attached to a note.
func (b *BaseVoice) IsActive() bool {
	return b.currentSound != nil
}

// ClearCurrentNote detaches the voice from its note so the synthesiser
// considers it free for allocation.
func (b *BaseVoice) ClearCurrentNote() {
	b.currentNote = -1
	b.currentSound = nil
}

func (b *BaseVoice) startPlayback(midiNote int, sound Sound, noteOnTime uint64) {
	b.currentNote = midiNote
	b.currentSound = sound
	b.noteOnTime = noteOnTime
}

// SamplerVoice plays SamplerSounds with linear-interpolated pitch
// shifting, an amplitude envelope clocked at the sound's source rate,
// and a click-suppressing one-block fade on hard note-off.
type SamplerVoice struct {
	BaseVoice

	bufferSize int
	fadeBuffer *dsp.Buffer

	pitchRatio           float64
	sourceSamplePosition float64
	lgain, rgain         float32
	adsr                 *envelope.ADSR

	// startingGain is the envelope level at the first sample of the
	// most recent render; a hard-stop fade ramps down from it.
	startingGain float32
	// isFading makes the next render emit the fade buffer and go idle.
	isFading bool
	// renderingFade guards the recursive render that synthesises the
	// fade block.
	renderingFade bool
}

// NewVoice creates an idle voice whose fade buffer matches the host
// block size. The block size is fixed for the life of the voice.
func NewVoice(bufferSize int) *SamplerVoice {
	v := &SamplerVoice{
		bufferSize: bufferSize,
		fadeBuffer: dsp.NewBuffer(2, bufferSize),
		adsr:       envelope.New(44100),
	}
	v.ClearCurrentNote()
	return v
}

// CanPlaySound accepts only SamplerSounds.
func (v *SamplerVoice) CanPlaySound(sound Sound) bool {
	_, ok := sound.(*SamplerSound)
	return ok
}

// StartNote arms the voice for the given note. The envelope is clocked
// at the sound's source rate, not the host rate, so attack and release
// times scale with pitch; this matches the sound designer's intent for
// resampled material and must not be "fixed" to host-rate clocking.
func (v *SamplerVoice) StartNote(midiNote int, velocity float32, s Sound, _ int) {
	sound, ok := s.(*SamplerSound)
	if !ok {
		panic("sampler: SamplerVoice can only play SamplerSounds")
	}

	v.pitchRatio = math.Pow(2.0, float64(midiNote-sound.midiRootNote)/12.0) *
		sound.sourceSampleRate / v.SampleRate()

	v.sourceSamplePosition = 0
	v.lgain = velocity
	v.rgain = velocity

	v.adsr.SetSampleRate(sound.sourceSampleRate)
	v.adsr.SetParameters(sound.params)
	v.adsr.NoteOn()
}

// StopNote ends the note. A soft stop lets the envelope release run; a
// hard stop synthesises one block of what would have played next,
// ramps it to silence, and schedules it for the next render.
func (v *SamplerVoice) StopNote(_ float32, allowTailOff bool) {
	if allowTailOff {
		v.adsr.NoteOff()
		return
	}

	// A hard stop while a fade is being generated, or while one is
	// already pending, is a no-op.
	if v.renderingFade || v.isFading {
		return
	}

	v.fadeBuffer.Clear()
	v.renderingFade = true
	v.RenderNextBlock(v.fadeBuffer, 0, v.bufferSize)
	v.renderingFade = false

	// Below unity pitch ratio the generated block holds fewer than
	// bufferSize frames of distinct signal, so the ramp spans only the
	// meaningful prefix and the rest is cleared.
	endSample := v.bufferSize
	if v.pitchRatio < 1.0 {
		endSample = int(float64(endSample) * v.pitchRatio)
	}

	v.fadeBuffer.ApplyGainRamp(0, 0, endSample, v.startingGain, 0)
	if v.fadeBuffer.NumChannels() > 1 {
		v.fadeBuffer.ApplyGainRamp(1, 0, endSample, v.startingGain, 0)
	}
	v.fadeBuffer.ClearRegion(endSample, v.bufferSize-endSample)

	v.isFading = true
	v.ClearCurrentNote()
	v.adsr.Reset()
}

// PitchWheelMoved is a no-op; the sampler does not modulate pitch after
// note-on.
func (v *SamplerVoice) PitchWheelMoved(int) {}

// ControllerMoved is a no-op.
func (v *SamplerVoice) ControllerMoved(int, int) {}

// RenderNextBlock emits a pending fade, or advances the read head
// through the current sound, accumulating into output. It performs no
// allocation, no I/O and no locking, and its cost is O(numSamples).
func (v *SamplerVoice) RenderNextBlock(output *dsp.Buffer, startSample, numSamples int) {
	if v.isFading {
		v.isFading = false

		// The fade replaces rather than accumulates, so it plays at
		// full amplitude even if a new note has already been allocated
		// on this voice. It is written from offset 0 of both buffers
		// regardless of startSample; hosts call with startSample == 0
		// here.
		for channel := 0; channel < output.NumChannels(); channel++ {
			if channel < v.fadeBuffer.NumChannels() {
				output.CopyFrom(channel, 0, v.fadeBuffer.Channel(channel)[:numSamples])
			}
		}
		return
	}

	sound, _ := v.CurrentlyPlayingSound().(*SamplerSound)
	if sound == nil || sound.data == nil {
		return
	}

	inL := sound.data.Channel(0)
	var inR []float32
	if sound.data.NumChannels() > 1 {
		inR = sound.data.Channel(1)
	}

	outL := output.ChannelFrom(0, startSample)
	var outR []float32
	if output.NumChannels() > 1 {
		outR = output.ChannelFrom(1, startSample)
	}

	captureStartingGain := true

	for i := 0; i < numSamples; i++ {
		pos := int(v.sourceSamplePosition)
		// The fade-generation render can start with the head past
		// length; keep reads inside the zero tail.
		if pos > sound.length+2 {
			pos = sound.length + 2
		}
		alpha := float32(v.sourceSamplePosition - float64(pos))
		invAlpha := 1.0 - alpha

		// Simple linear interpolation; the +4 zero tail in the sound
		// data keeps pos+1 in bounds at pos == length.
		l := inL[pos]*invAlpha + inL[pos+1]*alpha
		r := l
		if inR != nil {
			r = inR[pos]*invAlpha + inR[pos+1]*alpha
		}

		envelopeValue := v.adsr.Next()

		if captureStartingGain {
			captureStartingGain = false
			v.startingGain = envelopeValue
		}

		l *= v.lgain * envelopeValue
		r *= v.rgain * envelopeValue

		if outR != nil {
			outL[i] += l
			outR[i] += r
		} else {
			outL[i] += (l + r) * 0.5
		}

		v.sourceSamplePosition += v.pitchRatio

		if v.sourceSamplePosition > float64(sound.length) {
			v.StopNote(0, false)
			break
		}

		if !v.adsr.IsActive() {
			v.ClearCurrentNote()
			break
		}
	}
}
