package concurrency

import (
	"sync"
	"testing"
	"time"
)

func TestWaitList_SignalWakesOldestLiveWaiter(t *testing.T) {
	var mu sync.Mutex
	l := newWaitList()

	woke := make(chan int, 2)
	for i := 0; i < 2; i++ {
		mu.Lock()
		ready := make(chan struct{})
		go func(id int) {
			mu.Lock()
			close(ready)
			l.wait(&mu, nil)
			mu.Unlock()
			woke <- id
		}(i)
		mu.Unlock()
		<-ready
		// wait until the goroutine has parked
		for {
			mu.Lock()
			n := l.len()
			mu.Unlock()
			if n == i+1 {
				break
			}
			time.Sleep(time.Millisecond)
		}
	}

	mu.Lock()
	l.signal()
	mu.Unlock()
	select {
	case id := <-woke:
		if id != 0 {
			t.Fatalf("expected waiter 0 first, got %d", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("signal did not wake a waiter")
	}

	mu.Lock()
	l.signal()
	mu.Unlock()
	select {
	case id := <-woke:
		if id != 1 {
			t.Fatalf("expected waiter 1, got %d", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("second signal did not wake a waiter")
	}
}

func TestWaitList_ExpiredWaiterIsSkipped(t *testing.T) {
	var mu sync.Mutex
	l := newWaitList()

	mu.Lock()
	if l.wait(&mu, time.After(10*time.Millisecond)) {
		t.Fatalf("expected timed wait to expire")
	}
	mu.Unlock()

	// a signal with only expired entries must not panic or block
	mu.Lock()
	l.signal()
	if l.len() != 0 {
		t.Errorf("expected expired waiter to be dropped, len=%d", l.len())
	}
	mu.Unlock()
}
