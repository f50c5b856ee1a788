package midi

import (
	"sync"
	"testing"
)

func noteOnAt(offset int32, note uint8) NoteOnEvent {
	return NoteOnEvent{
		BaseEvent:  BaseEvent{Offset: offset},
		NoteNumber: note,
		Velocity:   100,
	}
}

func TestEventsInRangeSortsByOffset(t *testing.T) {
	q := NewEventQueue()
	q.Add(noteOnAt(300, 64))
	q.Add(noteOnAt(100, 60))
	q.Add(noteOnAt(200, 62))

	events := q.EventsInRange(0, 512)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	wantOffsets := []int32{100, 200, 300}
	for i, w := range wantOffsets {
		if got := events[i].SampleOffset(); got != w {
			t.Errorf("event %d: expected offset %d, got %d", i, w, got)
		}
	}
}

func TestEventsInRangeBounds(t *testing.T) {
	q := NewEventQueue()
	q.Add(noteOnAt(0, 60))
	q.Add(noteOnAt(255, 61))
	q.Add(noteOnAt(256, 62))
	q.Add(noteOnAt(511, 63))

	events := q.EventsInRange(0, 256)
	if len(events) != 2 {
		t.Fatalf("expected 2 events in [0, 256), got %d", len(events))
	}

	events = q.EventsInRange(256, 512)
	if len(events) != 2 {
		t.Fatalf("expected 2 events in [256, 512), got %d", len(events))
	}
	if events[0].SampleOffset() != 256 {
		t.Errorf("expected first offset 256, got %d", events[0].SampleOffset())
	}
}

func TestEventsInRangeEmptyQueue(t *testing.T) {
	q := NewEventQueue()
	if events := q.EventsInRange(0, 512); events != nil {
		t.Errorf("expected nil for empty queue, got %v", events)
	}
}

func TestAddMultipleAndClear(t *testing.T) {
	q := NewEventQueue()
	q.AddMultiple([]Event{noteOnAt(10, 60), noteOnAt(20, 62)})
	if q.Len() != 2 {
		t.Errorf("expected 2 events, got %d", q.Len())
	}

	q.Clear()
	if !q.IsEmpty() {
		t.Error("expected empty queue after Clear")
	}
}

func TestEventsInRangeReturnsCopy(t *testing.T) {
	q := NewEventQueue()
	q.Add(noteOnAt(10, 60))

	events := q.EventsInRange(0, 100)
	events[0] = noteOnAt(99, 1)

	again := q.EventsInRange(0, 100)
	if again[0].SampleOffset() != 10 {
		t.Error("expected queue contents unaffected by caller mutation")
	}
}

type countingProcessor struct {
	offsets []int32
}

func (p *countingProcessor) ProcessEvent(event Event) {
	p.offsets = append(p.offsets, event.SampleOffset())
}

func TestDispatch(t *testing.T) {
	q := NewEventQueue()
	q.Add(noteOnAt(50, 60))
	q.Add(noteOnAt(10, 62))
	q.Add(noteOnAt(600, 64))

	p := &countingProcessor{}
	q.Dispatch(p, 0, 512)

	if len(p.offsets) != 2 {
		t.Fatalf("expected 2 dispatched events, got %d", len(p.offsets))
	}
	if p.offsets[0] != 10 || p.offsets[1] != 50 {
		t.Errorf("expected offsets [10 50], got %v", p.offsets)
	}
}

func TestConcurrentAdd(t *testing.T) {
	q := NewEventQueue()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(base int32) {
			defer wg.Done()
			for j := int32(0); j < 100; j++ {
				q.Add(noteOnAt(base+j, 60))
			}
		}(int32(i) * 1000)
	}
	wg.Wait()

	if q.Len() != 800 {
		t.Errorf("expected 800 events, got %d", q.Len())
	}
}
