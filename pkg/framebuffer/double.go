package framebuffer

import "sync/atomic"

// DoubleBuffer owns exactly two framebuffers. The producer always holds the
// working instance. The other one is published: it sits in an atomic slot
// until a consumer acquires it, and returns there on Release.
//
// Ownership moves only through Swap on the slot, so producer and consumer
// never touch the same instance. A single consumer may hold the published
// buffer at a time.
type DoubleBuffer struct {
	work       *Framebuffer
	published  atomic.Pointer[Framebuffer]
	generation atomic.Uint64
}

// NewDoubleBuffer allocates both instances
func NewDoubleBuffer(width, height int) *DoubleBuffer {
	db := &DoubleBuffer{work: New(width, height)}
	db.published.Store(New(width, height))
	return db
}

// Work returns the producer's buffer. Only the producer may call it.
func (db *DoubleBuffer) Work() *Framebuffer { return db.work }

// Publish exposes the working buffer to consumers. The previously published
// instance becomes the new working buffer and is brought up to date so
// accumulation continues across frames. If a consumer currently holds the
// published buffer nothing changes and Publish returns false.
func (db *DoubleBuffer) Publish() bool {
	prev := db.published.Swap(nil)
	if prev == nil {
		return false
	}
	prev.CopyFrom(db.work)
	db.published.Store(db.work)
	db.work = prev
	db.generation.Add(1)
	return true
}

// Acquire takes the published buffer for reading. It returns nil while the
// producer is mid-publish or another consumer holds it.
func (db *DoubleBuffer) Acquire() *Framebuffer {
	return db.published.Swap(nil)
}

// Release hands a buffer obtained from Acquire back to the slot
func (db *DoubleBuffer) Release(fb *Framebuffer) {
	if fb == nil {
		return
	}
	db.published.Store(fb)
}

// Generation counts successful publishes. Consumers poll it to detect a new frame.
func (db *DoubleBuffer) Generation() uint64 {
	return db.generation.Load()
}
