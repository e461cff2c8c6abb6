package audit

import (
	"fmt"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Recorder is an append-only event log with optional live subscribers.
// Appending assigns sequence numbers; entries are never mutated or removed.
type Recorder struct {
	mu          sync.Mutex
	events      []Event
	subscribers []chan Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append stamps the event with the next sequence number and the current time,
// stores it, and fans it out to subscribers. Slow subscribers miss events
// rather than block the caller.
func (r *Recorder) Append(ev Event) Event {
	r.mu.Lock()
	ev.Seq = len(r.events) + 1
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	r.events = append(r.events, ev)
	subs := r.subscribers
	r.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return ev
}

// Subscribe returns a channel receiving every event appended after the call.
func (r *Recorder) Subscribe(buffer int) <-chan Event {
	ch := make(chan Event, buffer)
	r.mu.Lock()
	r.subscribers = append(r.subscribers, ch)
	r.mu.Unlock()
	return ch
}

// Events returns a copy of the full stream in append order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// ForAuction returns the events belonging to one instance address.
func (r *Recorder) ForAuction(auction string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, 0)
	for _, ev := range r.events {
		if ev.Auction == auction {
			out = append(out, ev)
		}
	}
	return out
}

// EncodeCBOR serializes the full stream for durable export.
func (r *Recorder) EncodeCBOR() ([]byte, error) {
	return EncodeCBOR(r.Events())
}

// EncodeCBOR serializes an event slice for durable export.
func EncodeCBOR(events []Event) ([]byte, error) {
	data, err := cbor.Marshal(events)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit stream: %w", err)
	}
	return data, nil
}

// DecodeCBOR parses a stream previously produced by EncodeCBOR.
func DecodeCBOR(data []byte) ([]Event, error) {
	var events []Event
	if err := cbor.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to decode audit stream: %w", err)
	}
	return events, nil
}
