package dispatch

import (
	"sync"
	"testing"
	"time"
)

func TestSubmit_SameIdentityRunsInOrder(t *testing.T) {
	d := New()

	var mu sync.Mutex
	var got []int
	for i := 0; i < 100; i++ {
		i := i
		d.Submit(1, func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	d.Wait()

	if len(got) != 100 {
		t.Fatalf("expected 100 runs, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("out of order at %d: got %d", i, v)
		}
	}
}

func TestSubmit_SameIdentityNeverOverlaps(t *testing.T) {
	d := New()

	var running int32
	var mu sync.Mutex
	overlapped := false
	for i := 0; i < 50; i++ {
		d.Submit(7, func() {
			mu.Lock()
			running++
			if running > 1 {
				overlapped = true
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
		})
	}
	d.Wait()

	if overlapped {
		t.Error("two events for one identity ran concurrently")
	}
}

func TestSubmit_DifferentIdentitiesRunConcurrently(t *testing.T) {
	d := New()

	first := make(chan struct{})
	release := make(chan struct{})

	// Block identity 1; identity 2 must still make progress.
	d.Submit(1, func() {
		close(first)
		<-release
	})
	<-first

	done := make(chan struct{})
	d.Submit(2, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("identity 2 was blocked behind identity 1")
	}
	close(release)
	d.Wait()
}

func TestSubmit_QueueRetiresAndRestarts(t *testing.T) {
	d := New()

	ran := 0
	d.Submit(3, func() { ran++ })
	d.Wait()
	d.Submit(3, func() { ran++ })
	d.Wait()

	if ran != 2 {
		t.Errorf("expected 2 runs, got %d", ran)
	}
}
