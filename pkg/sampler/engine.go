package sampler

import (
	"github.com/justyntemme/samplergo/pkg/dsp"
	"github.com/justyntemme/samplergo/pkg/midi"
)

// defaultMinSubBlockSize is the smallest span the block splitter will
// render between MIDI events; events closer together than this are
// handled at the same split point.
const defaultMinSubBlockSize = 32

// Synthesiser owns a set of sounds and voices and routes MIDI between
// them. All voice mutation happens on the goroutine that calls
// RenderNextBlock; other goroutines feed events through the queue.
type Synthesiser struct {
	voices []Voice
	sounds []Sound

	sampleRate      float64
	queue           *midi.EventQueue
	noteOnCounter   uint64
	minSubBlockSize int
}

// NewSynthesiser creates an engine with no sounds or voices.
func NewSynthesiser() *Synthesiser {
	return &Synthesiser{
		queue:           midi.NewEventQueue(),
		minSubBlockSize: defaultMinSubBlockSize,
	}
}

// AddVoice registers a voice and clocks it at the current playback
// rate.
func (s *Synthesiser) AddVoice(v Voice) {
	v.Base().SetCurrentPlaybackSampleRate(s.sampleRate)
	s.voices = append(s.voices, v)
}

// NumVoices returns the number of registered voices.
func (s *Synthesiser) NumVoices() int {
	return len(s.voices)
}

// Voice returns a registered voice by index.
func (s *Synthesiser) Voice(index int) Voice {
	return s.voices[index]
}

// ClearVoices stops and removes every voice.
func (s *Synthesiser) ClearVoices() {
	s.AllNotesOff(false)
	s.voices = nil
}

// AddSound registers a sound. Empty sampler sounds are rejected
// silently; they must never be routed to a voice.
func (s *Synthesiser) AddSound(sound Sound) {
	if ss, ok := sound.(*SamplerSound); ok && ss.IsEmpty() {
		return
	}
	s.sounds = append(s.sounds, sound)
}

// NumSounds returns the number of registered sounds.
func (s *Synthesiser) NumSounds() int {
	return len(s.sounds)
}

// ClearSounds removes every sound.
func (s *Synthesiser) ClearSounds() {
	s.sounds = nil
}

// SetCurrentPlaybackSampleRate sets the host rate. Changing the rate
// mid-flight cuts all notes to avoid voices rendering at a stale pitch
// ratio.
func (s *Synthesiser) SetCurrentPlaybackSampleRate(rate float64) {
	if s.sampleRate == rate {
		return
	}
	s.AllNotesOff(false)
	s.sampleRate = rate
	for _, v := range s.voices {
		v.Base().SetCurrentPlaybackSampleRate(rate)
	}
}

// SampleRate returns the host playback rate.
func (s *Synthesiser) SampleRate() float64 {
	return s.sampleRate
}

// NoteOn starts the note on every sound that applies to it. Velocity
// is in [0, 1].
func (s *Synthesiser) NoteOn(midiChannel, midiNote int, velocity float32) {
	for _, sound := range s.sounds {
		if !sound.AppliesToNote(midiNote) || !sound.AppliesToChannel(midiChannel) {
			continue
		}

		// Retriggering a note that is still sounding on the same sound
		// releases the old voice first.
		for _, v := range s.voices {
			base := v.Base()
			if base.IsActive() && base.CurrentlyPlayingNote() == midiNote &&
				base.CurrentlyPlayingSound() == sound {
				v.StopNote(1.0, true)
			}
		}

		if v := s.findVoiceFor(sound); v != nil {
			s.startVoice(v, sound, midiNote, velocity)
		}
	}
}

// NoteOff releases the note on every voice playing it. With
// allowTailOff the envelope runs out; without it the voice hard-stops
// with a fade.
func (s *Synthesiser) NoteOff(midiChannel, midiNote int, velocity float32, allowTailOff bool) {
	for _, v := range s.voices {
		base := v.Base()
		if base.CurrentlyPlayingNote() != midiNote {
			continue
		}
		sound := base.CurrentlyPlayingSound()
		if sound != nil && sound.AppliesToNote(midiNote) && sound.AppliesToChannel(midiChannel) {
			v.StopNote(velocity, allowTailOff)
		}
	}
}

// AllNotesOff stops every voice.
func (s *Synthesiser) AllNotesOff(allowTailOff bool) {
	for _, v := range s.voices {
		v.StopNote(1.0, allowTailOff)
	}
}

// EnqueueEvent schedules a MIDI event for the next rendered block. Safe
// to call from any goroutine.
func (s *Synthesiser) EnqueueEvent(event midi.Event) {
	s.queue.Add(event)
}

// ProcessEvent dispatches a single MIDI event immediately. Implements
// midi.EventProcessor.
func (s *Synthesiser) ProcessEvent(event midi.Event) {
	switch e := event.(type) {
	case midi.NoteOnEvent:
		if e.Velocity == 0 {
			s.NoteOff(int(e.Channel()), int(e.NoteNumber), 0, true)
		} else {
			s.NoteOn(int(e.Channel()), int(e.NoteNumber), midi.NormalizeVelocity(e.Velocity))
		}
	case midi.NoteOffEvent:
		s.NoteOff(int(e.Channel()), int(e.NoteNumber), midi.NormalizeVelocity(e.Velocity), true)
	case midi.ControlChangeEvent:
		switch e.Controller {
		case midi.CCAllNotesOff:
			s.AllNotesOff(true)
		case midi.CCAllSoundOff:
			s.AllNotesOff(false)
		}
	case midi.PitchBendEvent:
		for _, v := range s.voices {
			if v.Base().IsActive() {
				v.PitchWheelMoved(int(e.Value))
			}
		}
	}
}

// RenderNextBlock drains the queued events for this block and renders
// every voice into output, splitting the block at event offsets so
// notes start and stop sample-accurately. Output is accumulated into,
// not overwritten; callers clear it first.
func (s *Synthesiser) RenderNextBlock(output *dsp.Buffer, numSamples int) {
	events := s.queue.EventsInRange(0, int32(numSamples))
	s.queue.Clear()

	start := 0
	for _, event := range events {
		pos := int(event.SampleOffset())
		if pos < start {
			pos = start
		}
		if pos > numSamples {
			pos = numSamples
		}
		// Render up to the event, unless the gap is too small to be
		// worth a split.
		if pos-start >= s.minSubBlockSize {
			s.renderVoices(output, start, pos-start)
			start = pos
		}
		s.ProcessEvent(event)
	}

	if numSamples > start {
		s.renderVoices(output, start, numSamples-start)
	}
}

func (s *Synthesiser) renderVoices(output *dsp.Buffer, startSample, numSamples int) {
	for _, v := range s.voices {
		v.RenderNextBlock(output, startSample, numSamples)
	}
}

// findVoiceFor returns a free voice able to play the sound, stealing
// the oldest active voice when none is free.
func (s *Synthesiser) findVoiceFor(sound Sound) Voice {
	for _, v := range s.voices {
		if v.CanPlaySound(sound) && !v.Base().IsActive() {
			return v
		}
	}
	return s.stealOldestVoice(sound)
}

// stealOldestVoice hard-stops and returns the longest-playing voice
// able to take the sound. The stolen voice's pending fade still plays
// out ahead of the new note's first block.
func (s *Synthesiser) stealOldestVoice(sound Sound) Voice {
	var oldest Voice
	for _, v := range s.voices {
		if !v.CanPlaySound(sound) {
			continue
		}
		if oldest == nil || v.Base().noteOnTime < oldest.Base().noteOnTime {
			oldest = v
		}
	}
	if oldest != nil {
		oldest.StopNote(1.0, false)
	}
	return oldest
}

func (s *Synthesiser) startVoice(v Voice, sound Sound, midiNote int, velocity float32) {
	s.noteOnCounter++
	v.Base().startPlayback(midiNote, sound, s.noteOnCounter)
	v.StartNote(midiNote, velocity, sound, 0)
}
