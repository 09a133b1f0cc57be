package dispatch

import (
	"sync/atomic"
	"time"
)

// outputQueue is the shared multi-producer/single-consumer queue every
// Worker's Sessions push Responses into, per spec §5. It is backed by a
// buffered Go channel — already lock-free and already multi-producer —
// plus an atomic flag enforcing the "strict single-reader" invariant
// spec §5/§9 calls for: concurrent Receive is a programmer error, and
// here it panics instead of silently racing.
type outputQueue struct {
	ch      chan Response
	reading int32
}

func newOutputQueue(size int) *outputQueue {
	return &outputQueue{ch: make(chan Response, size)}
}

// push delivers r into the queue. It blocks if the queue is full,
// exerting backpressure on the Worker goroutine that called it — the
// same tradeoff a bounded MPSC queue makes in the source.
func (q *outputQueue) push(r Response) {
	q.ch <- r
}

// pollNonBlocking is reader_wait_nonblock from spec §5: returns
// immediately, ok=false if nothing is queued.
func (q *outputQueue) pollNonBlocking() (Response, bool) {
	q.lockReader()
	defer q.unlockReader()

	select {
	case r := <-q.ch:
		return r, true
	default:
		return Response{}, false
	}
}

// waitBlocking parks for up to timeout waiting on the queue's event
// descriptor (here, the channel itself). timeout<=0 behaves like
// pollNonBlocking.
func (q *outputQueue) waitBlocking(timeout time.Duration) (Response, bool) {
	q.lockReader()
	defer q.unlockReader()

	if timeout <= 0 {
		select {
		case r := <-q.ch:
			return r, true
		default:
			return Response{}, false
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-q.ch:
		return r, true
	case <-timer.C:
		return Response{}, false
	}
}

func (q *outputQueue) lockReader() {
	if !atomic.CompareAndSwapInt32(&q.reading, 0, 1) {
		panic("dispatch: concurrent receive on the same dispatcher — single-reader invariant violated")
	}
}

func (q *outputQueue) unlockReader() {
	atomic.StoreInt32(&q.reading, 0)
}
