package midi

import (
	"math"
	"math/bits"
)

// NoteSet is a set of MIDI note numbers in the range 0-127.
// The zero value is the empty set.
type NoteSet struct {
	words [2]uint64
}

// NewNoteSet returns a set containing the given notes. Out-of-range
// notes are ignored.
func NewNoteSet(notes ...int) NoteSet {
	var s NoteSet
	for _, n := range notes {
		s.Add(n)
	}
	return s
}

// NoteRange returns the set of notes in [low, high], inclusive.
func NoteRange(low, high int) NoteSet {
	var s NoteSet
	for n := low; n <= high; n++ {
		s.Add(n)
	}
	return s
}

// AllNotes returns the set of every MIDI note.
func AllNotes() NoteSet {
	return NoteRange(0, 127)
}

// Add inserts a note into the set.
func (s *NoteSet) Add(note int) {
	if note < 0 || note > 127 {
		return
	}
	s.words[note>>6] |= 1 << uint(note&63)
}

// Remove deletes a note from the set.
func (s *NoteSet) Remove(note int) {
	if note < 0 || note > 127 {
		return
	}
	s.words[note>>6] &^= 1 << uint(note&63)
}

// Contains reports whether the set holds the given note.
func (s NoteSet) Contains(note int) bool {
	if note < 0 || note > 127 {
		return false
	}
	return s.words[note>>6]&(1<<uint(note&63)) != 0
}

// IsEmpty reports whether the set holds no notes.
func (s NoteSet) IsEmpty() bool {
	return s.words[0] == 0 && s.words[1] == 0
}

// Count returns the number of notes in the set.
func (s NoteSet) Count() int {
	return bits.OnesCount64(s.words[0]) + bits.OnesCount64(s.words[1])
}

// NoteToFrequency converts a MIDI note number to a frequency in Hz.
// A tuningA4 of 0 selects standard 440 Hz tuning.
func NoteToFrequency(note uint8, tuningA4 float64) float64 {
	if tuningA4 == 0 {
		tuningA4 = 440.0
	}
	return tuningA4 * math.Exp2((float64(note)-69.0)/12.0)
}

// FrequencyToNote converts a frequency in Hz to the nearest MIDI note
// number, clamped to the valid range.
func FrequencyToNote(freq, tuningA4 float64) uint8 {
	if tuningA4 == 0 {
		tuningA4 = 440.0
	}
	if freq <= 0 {
		return 0
	}
	note := 69.0 + 12.0*math.Log2(freq/tuningA4)
	if note < 0 {
		return 0
	}
	if note > 127 {
		return 127
	}
	return uint8(note + 0.5)
}
