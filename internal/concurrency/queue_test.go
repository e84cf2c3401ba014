package concurrency

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestBlockingQueue_CapacityTwoExample(t *testing.T) {
	q := NewBlockingQueue[int](2)

	q.Push(1)
	q.Push(2)
	if q.TryPush(3) {
		t.Fatalf("expected TryPush to fail on a full queue")
	}
	if got := q.Pop(); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if !q.TryPush(3) {
		t.Fatalf("expected TryPush to succeed after a pop")
	}
	for _, want := range []int{2, 3} {
		if got := q.Pop(); got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}
	if !q.Empty() {
		t.Errorf("expected empty queue, size=%d", q.Size())
	}
}

func TestBlockingQueue_SizeIsCount(t *testing.T) {
	q := NewBlockingQueue[string](4)
	if q.Cap() != 4 {
		t.Fatalf("expected cap 4, got %d", q.Cap())
	}
	if q.Size() != 0 {
		t.Fatalf("expected size 0, got %d", q.Size())
	}
	q.Push("a")
	if q.Size() != 1 {
		t.Errorf("expected size 1, got %d", q.Size())
	}
	q.Push("b")
	q.Push("c")
	if q.Size() != 3 {
		t.Errorf("expected size 3, got %d", q.Size())
	}
}

func TestBlockingQueue_WrapAround(t *testing.T) {
	q := NewBlockingQueue[int](3)
	next := 0
	for round := 0; round < 10; round++ {
		q.Push(round*2 + 0)
		q.Push(round*2 + 1)
		for i := 0; i < 2; i++ {
			got, ok := q.TryPop()
			if !ok {
				t.Fatalf("round %d: expected item", round)
			}
			if got != next {
				t.Fatalf("round %d: expected %d, got %d", round, next, got)
			}
			next++
		}
	}
}

func TestBlockingQueue_TryPopEmpty(t *testing.T) {
	q := NewBlockingQueue[int](1)
	if v, ok := q.TryPop(); ok {
		t.Fatalf("expected TryPop to fail, got %d", v)
	}
}

func TestBlockingQueue_TryFailsWhenLockContended(t *testing.T) {
	q := NewBlockingQueue[int](2)
	q.Push(7)
	q.mu.Lock()
	if q.TryPush(1) {
		t.Errorf("expected TryPush to fail while lock held")
	}
	if _, ok := q.TryPop(); ok {
		t.Errorf("expected TryPop to fail while lock held")
	}
	q.mu.Unlock()
	if q.Size() != 1 {
		t.Errorf("expected size 1, got %d", q.Size())
	}
}

func TestBlockingQueue_WaitPushTimesOutWhenFull(t *testing.T) {
	q := NewBlockingQueue[int](1)
	q.Push(1)

	start := time.Now()
	if q.WaitPush(2, 50*time.Millisecond) {
		t.Fatalf("expected WaitPush to time out")
	}
	if elapsed := time.Since(start); elapsed < 45*time.Millisecond {
		t.Errorf("WaitPush returned too early: %v", elapsed)
	}
	if q.Size() != 1 {
		t.Errorf("state changed on timeout: size=%d", q.Size())
	}
	if got := q.Pop(); got != 1 {
		t.Errorf("expected original item 1, got %d", got)
	}
}

func TestBlockingQueue_WaitPopTimesOutWhenEmpty(t *testing.T) {
	q := NewBlockingQueue[int](1)

	start := time.Now()
	if _, ok := q.WaitPop(50 * time.Millisecond); ok {
		t.Fatalf("expected WaitPop to time out")
	}
	if elapsed := time.Since(start); elapsed < 45*time.Millisecond {
		t.Errorf("WaitPop returned too early: %v", elapsed)
	}
	if q.Size() != 0 {
		t.Errorf("state changed on timeout: size=%d", q.Size())
	}
}

func TestBlockingQueue_WaitPopWokenByPush(t *testing.T) {
	q := NewBlockingQueue[int](1)
	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Push(42)
	}()
	v, ok := q.WaitPop(2 * time.Second)
	if !ok || v != 42 {
		t.Fatalf("expected 42, got %d (ok=%v)", v, ok)
	}
}

func TestBlockingQueue_WaitPushWokenByPop(t *testing.T) {
	q := NewBlockingQueue[int](1)
	q.Push(1)
	go func() {
		time.Sleep(20 * time.Millisecond)
		q.Pop()
	}()
	if !q.WaitPush(2, 2*time.Second) {
		t.Fatalf("expected WaitPush to succeed once a slot was freed")
	}
	if got := q.Pop(); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestBlockingQueue_PushBlocksUntilPop(t *testing.T) {
	q := NewBlockingQueue[int](1)
	q.Push(1)

	var pushed atomic.Bool
	done := make(chan struct{})
	go func() {
		q.Push(2)
		pushed.Store(true)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	if pushed.Load() {
		t.Fatalf("Push returned while the queue was full")
	}
	if got := q.Pop(); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("blocked Push was not released")
	}
	if got := q.Pop(); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestBlockingQueue_SPSCOrder(t *testing.T) {
	q := NewBlockingQueue[int](8)
	const n = 10000

	go func() {
		for i := 0; i < n; i++ {
			q.Push(i)
		}
	}()
	for i := 0; i < n; i++ {
		if got := q.Pop(); got != i {
			t.Fatalf("expected %d, got %d", i, got)
		}
	}
}

func TestBlockingQueue_MPMCBoundsAndSum(t *testing.T) {
	const (
		capacity    = 16
		producers   = 8
		consumers   = 8
		perProducer = 2000
	)
	q := NewBlockingQueue[int](capacity)

	var sentSum, recvSum int64
	var violation atomic.Bool
	stop := make(chan struct{})

	// observer samples Size while traffic flows
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			if s := q.Size(); s < 0 || s > capacity {
				violation.Store(true)
			}
		}
	}()

	var pw sync.WaitGroup
	for p := 0; p < producers; p++ {
		pw.Add(1)
		go func(pid int) {
			defer pw.Done()
			for i := 0; i < perProducer; i++ {
				v := pid*perProducer + i + 1
				switch i % 3 {
				case 0:
					q.Push(v)
				case 1:
					for !q.TryPush(v) {
						time.Sleep(time.Microsecond)
					}
				default:
					for !q.WaitPush(v, time.Millisecond) {
					}
				}
				atomic.AddInt64(&sentSum, int64(v))
			}
		}(p)
	}

	var cw sync.WaitGroup
	total := producers * perProducer
	var received atomic.Int64
	for c := 0; c < consumers; c++ {
		cw.Add(1)
		go func() {
			defer cw.Done()
			for received.Load() < int64(total) {
				if v, ok := q.WaitPop(5 * time.Millisecond); ok {
					atomic.AddInt64(&recvSum, int64(v))
					received.Add(1)
				}
			}
		}()
	}

	pw.Wait()
	done := make(chan struct{})
	go func() { cw.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("timeout: received %d/%d", received.Load(), total)
	}
	close(stop)

	if violation.Load() {
		t.Errorf("Size left [0, cap] during traffic")
	}
	if sentSum != recvSum {
		t.Errorf("checksum mismatch: sent %d, received %d", sentSum, recvSum)
	}
	if !q.Empty() {
		t.Errorf("expected empty queue, size=%d", q.Size())
	}
}

func TestBlockingQueue_ReleasesReferences(t *testing.T) {
	q := NewBlockingQueue[*int](2)
	v := 5
	q.Push(&v)
	q.Pop()
	for i, slot := range q.items {
		if slot != nil {
			t.Errorf("slot %d still references a removed item", i)
		}
	}
}

func TestNewBlockingQueue_PanicsOnZeroCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic for zero capacity")
		}
	}()
	NewBlockingQueue[int](0)
}
