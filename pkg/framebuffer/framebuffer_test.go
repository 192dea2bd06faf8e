package framebuffer

import (
	"sync"
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

func TestFramebuffer_SplatAndMean(t *testing.T) {
	fb := New(4, 3)
	fb.SplatPixel(2, 1, core.NewVec3(1, 2, 3), 2)
	fb.SplatPixel(2, 1, core.NewVec3(3, 2, 1), 4)

	p := fb.At(2, 1)
	if p.SampleCount != 2 || p.BounceSum != 6 {
		t.Errorf("pixel counts mismatch: got %d samples %d bounces", p.SampleCount, p.BounceSum)
	}
	if mean := p.Mean(); mean != core.NewVec3(2, 2, 2) {
		t.Errorf("mean mismatch: got %v, expected (2,2,2)", mean)
	}
	if untouched := fb.At(0, 0).Mean(); untouched != (core.Vec3{}) {
		t.Errorf("unsampled pixel mean: got %v, expected black", untouched)
	}
	samples, bounces := fb.Totals()
	if samples != 2 || bounces != 6 {
		t.Errorf("totals mismatch: got %d/%d", samples, bounces)
	}
}

func TestFramebuffer_Reset(t *testing.T) {
	fb := New(2, 2)
	fb.SplatPixel(1, 1, core.NewVec3(1, 1, 1), 1)
	fb.Reset()
	if fb.At(1, 1) != (Pixel{}) {
		t.Errorf("pixel not cleared: %+v", fb.At(1, 1))
	}
}

func TestFramebuffer_CopyFromSizeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on size mismatch")
		}
	}()
	New(2, 2).CopyFrom(New(3, 2))
}

func TestDoubleBuffer_PublishCarriesAccumulation(t *testing.T) {
	db := NewDoubleBuffer(2, 1)
	db.Work().SplatPixel(0, 0, core.NewVec3(1, 0, 0), 0)
	if !db.Publish() {
		t.Fatal("publish failed with no consumer")
	}
	if db.Generation() != 1 {
		t.Errorf("generation mismatch: got %d, expected 1", db.Generation())
	}

	// the new working buffer continues from the published state
	if got := db.Work().At(0, 0).SampleCount; got != 1 {
		t.Errorf("work buffer sample count: got %d, expected 1", got)
	}
	db.Work().SplatPixel(0, 0, core.NewVec3(1, 0, 0), 0)

	front := db.Acquire()
	if front == nil {
		t.Fatal("acquire returned nil")
	}
	if front == db.Work() {
		t.Fatal("consumer and producer share an instance")
	}
	if got := front.At(0, 0).SampleCount; got != 1 {
		t.Errorf("published sample count: got %d, expected 1", got)
	}
	db.Release(front)
}

func TestDoubleBuffer_PublishSkippedWhileHeld(t *testing.T) {
	db := NewDoubleBuffer(1, 1)
	held := db.Acquire()
	if held == nil {
		t.Fatal("acquire returned nil")
	}
	if db.Acquire() != nil {
		t.Error("second consumer acquired a held buffer")
	}

	db.Work().SplatPixel(0, 0, core.NewVec3(1, 1, 1), 0)
	if db.Publish() {
		t.Error("publish succeeded while the consumer held the buffer")
	}
	if db.Generation() != 0 {
		t.Errorf("generation advanced on a skipped publish: %d", db.Generation())
	}
	if held.At(0, 0).SampleCount != 0 {
		t.Error("held buffer was modified")
	}

	db.Release(held)
	if !db.Publish() {
		t.Error("publish failed after release")
	}
	front := db.Acquire()
	if front.At(0, 0).SampleCount != 1 {
		t.Errorf("published sample count: got %d, expected 1", front.At(0, 0).SampleCount)
	}
	db.Release(front)
}

func TestDoubleBuffer_ConsumerSeesConsistentFrames(t *testing.T) {
	const (
		w, h   = 16, 16
		frames = 200
	)
	db := NewDoubleBuffer(w, h)

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		last := uint64(0)
		for {
			select {
			case <-done:
				return
			default:
			}
			fb := db.Acquire()
			if fb == nil {
				continue
			}
			n := fb.At(0, 0).SampleCount
			for i := range fb.Pixels {
				if fb.Pixels[i].SampleCount != n {
					t.Errorf("torn frame: pixel %d has %d samples, pixel 0 has %d", i, fb.Pixels[i].SampleCount, n)
					db.Release(fb)
					return
				}
			}
			if uint64(n) < last {
				t.Errorf("sample count went backwards: %d after %d", n, last)
			}
			last = uint64(n)
			db.Release(fb)
		}
	}()

	for f := 0; f < frames; f++ {
		work := db.Work()
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				work.SplatPixel(x, y, core.NewVec3(1, 1, 1), 1)
			}
		}
		db.Publish()
	}
	close(done)
	wg.Wait()

	if got := db.Work().At(w-1, h-1).SampleCount; got != frames {
		t.Errorf("work buffer lost samples: got %d, expected %d", got, frames)
	}
}
