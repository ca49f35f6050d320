package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// Sink accepts typed events from a producing task. Producers stay unaware of
// the wire framing; serialization is the Emitter's concern.
type Sink interface {
	Send(event any) error
}

// ErrClosed is returned when an event is sent after the channel terminated.
var ErrClosed = errors.New("stream: emitter closed")

// Emitter writes events to an HTTP response as server-sent events, one
// `data: <JSON>` line plus a blank line per event, flushed immediately.
// Events go out in Send order; the channel closes exactly once and accepts
// nothing afterwards. Response headers are written lazily on the first Send
// so a handler can still answer with a plain status code before any event
// has been emitted.
type Emitter struct {
	mu     sync.Mutex
	w      http.ResponseWriter
	rc     *http.ResponseController
	sent   bool
	closed bool
}

// NewEmitter wraps a response writer. The writer is not touched until the
// first Send.
func NewEmitter(w http.ResponseWriter) *Emitter {
	return &Emitter{w: w, rc: http.NewResponseController(w)}
}

// Send frames and flushes one event.
func (e *Emitter) Send(event any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if !e.sent {
		h := e.w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		e.w.WriteHeader(http.StatusOK)
		e.sent = true
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", payload); err != nil {
		return err
	}
	// Client disconnects surface on the next write; generation already in
	// flight still completes and persists.
	_ = e.rc.Flush()
	return nil
}

// Sent reports whether any event reached the wire yet.
func (e *Emitter) Sent() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sent
}

// Close seals the channel. Subsequent Send calls fail with ErrClosed.
// Closing twice is a no-op.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
}
