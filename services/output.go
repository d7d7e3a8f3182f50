package services

import (
	"strings"
	"sync"
)

// OutputBuffer is the single growable text buffer one chain execution
// writes into. Chunks are appended in arrival order and never reordered.
// Listeners observe each appended chunk, letting a handler flush output to
// the browser as it arrives.
type OutputBuffer struct {
	mu        sync.Mutex
	buf       strings.Builder
	listeners map[int]func(string)
	nextID    int
}

func NewOutputBuffer() *OutputBuffer {
	return &OutputBuffer{listeners: make(map[int]func(string))}
}

func (b *OutputBuffer) Append(chunk string) {
	if chunk == "" {
		return
	}
	b.mu.Lock()
	b.buf.WriteString(chunk)
	fns := make([]func(string), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(chunk)
	}
}

func (b *OutputBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset clears the buffer. Listeners survive a reset; the buffer is cleared
// once at the start of each chain, not per step.
func (b *OutputBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// Listen registers a chunk observer and returns its cancel func.
func (b *OutputBuffer) Listen(fn func(string)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}
