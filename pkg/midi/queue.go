package midi

import (
	"sort"
	"sync"
)

// EventQueue collects MIDI events for an upcoming audio block, sorted
// by sample offset. Producers may add events from any goroutine; the
// audio goroutine drains the queue once per block.
type EventQueue struct {
	mu     sync.Mutex
	events []Event
	sorted bool
}

func NewEventQueue() *EventQueue {
	return &EventQueue{
		events: make([]Event, 0, 128),
		sorted: true,
	}
}

func (q *EventQueue) Add(event Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = append(q.events, event)
	q.sorted = false
}

func (q *EventQueue) AddMultiple(events []Event) {
	if len(events) == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = append(q.events, events...)
	q.sorted = false
}

// EventsInRange returns a copy of the events whose offsets fall in
// [startSample, endSample), in offset order.
func (q *EventQueue) EventsInRange(startSample, endSample int32) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.sortLocked()
	if len(q.events) == 0 {
		return nil
	}

	startIdx := sort.Search(len(q.events), func(i int) bool {
		return q.events[i].SampleOffset() >= startSample
	})

	endIdx := startIdx
	for endIdx < len(q.events) && q.events[endIdx].SampleOffset() < endSample {
		endIdx++
	}

	if startIdx == endIdx {
		return nil
	}

	result := make([]Event, endIdx-startIdx)
	copy(result, q.events[startIdx:endIdx])
	return result
}

func (q *EventQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = q.events[:0]
	q.sorted = true
}

func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

func (q *EventQueue) IsEmpty() bool {
	return q.Len() == 0
}

func (q *EventQueue) sortLocked() {
	if q.sorted {
		return
	}
	sort.SliceStable(q.events, func(i, j int) bool {
		return q.events[i].SampleOffset() < q.events[j].SampleOffset()
	})
	q.sorted = true
}

// EventProcessor handles individual MIDI events.
type EventProcessor interface {
	ProcessEvent(event Event)
}

// Dispatch feeds every queued event in [startSample, endSample) to the
// processor, in offset order.
func (q *EventQueue) Dispatch(processor EventProcessor, startSample, endSample int32) {
	for _, event := range q.EventsInRange(startSample, endSample) {
		processor.ProcessEvent(event)
	}
}
