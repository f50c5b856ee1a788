package midi

import (
	"strings"
	"testing"
)

func TestEventTypes(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  EventType
	}{
		{"note on", NoteOnEvent{NoteNumber: 60, Velocity: 100}, EventTypeNoteOn},
		{"note off", NoteOffEvent{NoteNumber: 60}, EventTypeNoteOff},
		{"control change", ControlChangeEvent{Controller: CCSustain, Value: 127}, EventTypeControlChange},
		{"pitch bend", PitchBendEvent{Value: 4096}, EventTypePitchBend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Type(); got != tt.want {
				t.Errorf("Type() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBaseEventAccessors(t *testing.T) {
	e := NoteOnEvent{
		BaseEvent:  BaseEvent{EventChannel: 3, Offset: 128},
		NoteNumber: 64,
		Velocity:   90,
	}
	if e.Channel() != 3 {
		t.Errorf("expected channel 3, got %d", e.Channel())
	}
	if e.SampleOffset() != 128 {
		t.Errorf("expected offset 128, got %d", e.SampleOffset())
	}
	if !strings.Contains(e.String(), "note:64") {
		t.Errorf("unexpected String(): %s", e.String())
	}
}

func TestPitchBendNormalizedValue(t *testing.T) {
	tests := []struct {
		value int16
		want  float64
	}{
		{0, 0},
		{8191, 8191.0 / 8192.0},
		{-8192, -1},
		{4096, 0.5},
	}

	for _, tt := range tests {
		e := PitchBendEvent{Value: tt.value}
		if got := e.NormalizedValue(); got != tt.want {
			t.Errorf("NormalizedValue(%d) = %f, want %f", tt.value, got, tt.want)
		}
	}
}

func TestNormalizeVelocity(t *testing.T) {
	if got := NormalizeVelocity(0); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
	if got := NormalizeVelocity(127); got != 1 {
		t.Errorf("expected 1, got %f", got)
	}
	if got := NormalizeVelocity(64); got != 64.0/127.0 {
		t.Errorf("expected %f, got %f", 64.0/127.0, got)
	}
}
