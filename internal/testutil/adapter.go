// Package testutil provides fakes and fixtures for client and socket tests.
package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/cory-johannsen/gamelink/rtapi"
	"github.com/cory-johannsen/gamelink/socket"
)

// FakeAdapter is a scriptable socket.Adapter. Tests queue events with
// QueueConnected, QueueEnvelope and QueueDisconnect, then drive the socket's
// Tick to observe dispatch. Sent frames are captured for inspection.
type FakeAdapter struct {
	mu        sync.Mutex
	events    []socket.Event
	sent      [][]byte
	sendErr   error
	connected bool
	closes    int
}

// NewFakeAdapter returns an empty fake.
func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{}
}

// Connect records the dial. Tests decide when the connect completes by
// queueing the corresponding event.
func (f *FakeAdapter) Connect(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	return nil
}

// Send captures the frame, or fails with the configured error.
func (f *FakeAdapter) Send(_ context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	f.sent = append(f.sent, frame)
	return nil
}

// Close records the close and queues a clean disconnect.
func (f *FakeAdapter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	f.connected = false
	f.events = append(f.events, socket.Event{Kind: socket.EventDisconnected})
	return nil
}

// Poll pops the next queued event.
func (f *FakeAdapter) Poll() (socket.Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return socket.Event{}, false
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, true
}

// FailSends makes every subsequent Send return err.
func (f *FakeAdapter) FailSends(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendErr = err
}

// QueueConnected queues the dial-completed event.
func (f *FakeAdapter) QueueConnected() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, socket.Event{Kind: socket.EventConnected})
}

// QueueDisconnect queues a connection loss with the given cause.
func (f *FakeAdapter) QueueDisconnect(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, socket.Event{Kind: socket.EventDisconnected, Err: err})
}

// QueueFrame queues a raw inbound frame.
func (f *FakeAdapter) QueueFrame(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, socket.Event{Kind: socket.EventMessage, Data: data})
}

// QueueEnvelope queues an inbound frame encoded from the envelope.
func (f *FakeAdapter) QueueEnvelope(t *testing.T, env *rtapi.Envelope) {
	t.Helper()
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("encoding envelope: %v", err)
	}
	f.QueueFrame(data)
}

// Sent returns a copy of all captured outbound frames.
func (f *FakeAdapter) Sent() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.sent))
	copy(out, f.sent)
	return out
}

// LastSent decodes the most recent outbound frame into an envelope.
//
// Precondition: at least one frame was sent.
func (f *FakeAdapter) LastSent(t *testing.T) *rtapi.Envelope {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no frames sent")
	}
	var env rtapi.Envelope
	if err := json.Unmarshal(f.sent[len(f.sent)-1], &env); err != nil {
		t.Fatalf("decoding sent frame: %v", err)
	}
	return &env
}

// SentCount returns the number of captured outbound frames.
func (f *FakeAdapter) SentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// CloseCount returns how often Close was called.
func (f *FakeAdapter) CloseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}
