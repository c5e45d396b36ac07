// Package ringbuffer implements a bounded, bounded-blocking ring buffer
// used for ATT request/response correlation and general producer/consumer
// handoff. It follows the "always keep one slot open" scheme: internally
// capacity+1 slots back a buffer of the requested capacity. Grounded on
// original_source/api/direct_bt/LFRingbuffer.hpp's lock-free get/put
// split: readPos/writePos/size are atomics so a non-contending get and
// put proceed in parallel, with per-direction mutexes only serializing
// concurrent callers on the same side and backing the blocking waits.
package ringbuffer

import (
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/XC-/direct_bt/dbterr"
)

// Ringbuffer is a bounded queue of T, safe for one concurrent producer and
// one concurrent consumer (get-side operations mutually exclude each other,
// as do put-side operations; a single get and a single put may proceed
// concurrently).
type Ringbuffer[T any] struct {
	readMu  sync.Mutex // serializes concurrent Get-side callers
	writeMu sync.Mutex // serializes concurrent Put-side callers

	notEmptyMu sync.Mutex
	notEmpty   *sync.Cond // waited on by Get, signaled by Put

	notFullMu sync.Mutex
	notFull   *sync.Cond // waited on by Put, signaled by Get

	array    []T
	readPos  atomic.Int32
	writePos atomic.Int32
	size     atomic.Int32
}

// New constructs a Ringbuffer with the given capacity (capacity+1 slots are
// allocated internally).
func New[T any](capacity int) *Ringbuffer[T] {
	r := &Ringbuffer[T]{
		array: make([]T, capacity+1),
	}
	r.notEmpty = sync.NewCond(&r.notEmptyMu)
	r.notFull = sync.NewCond(&r.notFullMu)
	return r
}

// Capacity returns the usable capacity (not counting the always-open slot).
func (r *Ringbuffer[T]) Capacity() int { return len(r.array) - 1 }

// Size returns the current number of queued elements.
func (r *Ringbuffer[T]) Size() int { return int(r.size.Load()) }

// Free returns the number of additional elements Put can accept before
// blocking/failing.
func (r *Ringbuffer[T]) Free() int { return r.Capacity() - r.Size() }

// Get returns the next element without blocking; ok is false if empty.
func (r *Ringbuffer[T]) Get() (v T, ok bool) {
	return r.getImpl(false, false, 0)
}

// GetBlocking blocks until an element is available or timeoutMS elapses
// (0 means wait indefinitely).
func (r *Ringbuffer[T]) GetBlocking(timeoutMS int) (v T, ok bool) {
	return r.getImpl(true, false, timeoutMS)
}

// Peek returns the next element without consuming it; ok is false if empty.
func (r *Ringbuffer[T]) Peek() (v T, ok bool) {
	return r.getImpl(false, true, 0)
}

// PeekBlocking blocks like GetBlocking but does not consume the element.
func (r *Ringbuffer[T]) PeekBlocking(timeoutMS int) (v T, ok bool) {
	return r.getImpl(true, true, timeoutMS)
}

func (r *Ringbuffer[T]) getImpl(blocking, peek bool, timeoutMS int) (v T, ok bool) {
	r.readMu.Lock()
	defer r.readMu.Unlock()

	notEmpty := func() bool { return r.readPos.Load() != r.writePos.Load() }
	if !notEmpty() {
		if !blocking {
			var zero T
			return zero, false
		}
		deadline := time.Time{}
		if timeoutMS > 0 {
			deadline = time.Now().Add(time.Duration(timeoutMS) * time.Millisecond)
		}
		if !waitUntil(&r.notEmptyMu, r.notEmpty, deadline, notEmpty) {
			var zero T
			return zero, false
		}
	}

	next := (r.readPos.Load() + 1) % int32(len(r.array))
	v = r.array[next]
	if !peek {
		var zero T
		r.array[next] = zero
		r.readPos.Store(next)
		r.size.Dec()
		r.broadcastNotFull()
	}
	return v, true
}

// broadcastNotFull and broadcastNotEmpty wake any blocked waiter under the
// waiter's own lock: Wait() registers the waiting goroutine before
// releasing its mutex, so serializing the broadcast through the same
// mutex rules out the gap between a waiter's predicate check and its
// Wait() call where a broadcast could otherwise go unseen.
func (r *Ringbuffer[T]) broadcastNotFull() {
	r.notFullMu.Lock()
	r.notFull.Broadcast()
	r.notFullMu.Unlock()
}

func (r *Ringbuffer[T]) broadcastNotEmpty() {
	r.notEmptyMu.Lock()
	r.notEmpty.Broadcast()
	r.notEmptyMu.Unlock()
}

// waitUntil blocks until pred reports true or deadline elapses (a zero
// deadline waits indefinitely), rechecking pred under mu on every
// wakeup. The initial lock-then-recheck is what rules out the lost
// wakeup a bare check-then-Wait would be exposed to: mu is the same
// lock a broadcaster takes before signaling cond, so a broadcast can
// never land in the gap between this function's predicate check and
// its Wait call. sync.Cond has no native timed wait, so the deadline
// path polls instead of blocking on cond indefinitely.
func waitUntil(mu *sync.Mutex, cond *sync.Cond, deadline time.Time, pred func() bool) bool {
	mu.Lock()
	defer mu.Unlock()
	for !pred() {
		if deadline.IsZero() {
			cond.Wait()
			continue
		}
		if time.Now().After(deadline) {
			return false
		}
		remaining := time.Until(deadline)
		const maxPoll = 20 * time.Millisecond
		poll := remaining
		if poll > maxPoll {
			poll = maxPoll
		}
		mu.Unlock()
		time.Sleep(poll)
		mu.Lock()
	}
	return true
}

// Put enqueues e without blocking; returns false if the buffer is full.
func (r *Ringbuffer[T]) Put(e T) bool {
	return r.putImpl(e, false, 0)
}

// PutBlocking blocks until room is available or timeoutMS elapses (0 means
// wait indefinitely); returns false only on timeout.
func (r *Ringbuffer[T]) PutBlocking(e T, timeoutMS int) bool {
	return r.putImpl(e, true, timeoutMS)
}

func (r *Ringbuffer[T]) putImpl(e T, blocking bool, timeoutMS int) bool {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	notFull := func() bool {
		next := (r.writePos.Load() + 1) % int32(len(r.array))
		return next != r.readPos.Load()
	}
	if !notFull() {
		if !blocking {
			return false
		}
		deadline := time.Time{}
		if timeoutMS > 0 {
			deadline = time.Now().Add(time.Duration(timeoutMS) * time.Millisecond)
		}
		if !waitUntil(&r.notFullMu, r.notFull, deadline, notFull) {
			return false
		}
	}

	next := (r.writePos.Load() + 1) % int32(len(r.array))
	r.array[next] = e
	r.writePos.Store(next)
	r.size.Inc()
	r.broadcastNotEmpty()
	return true
}

// WaitForFreeSlots blocks until at least n slots are free.
func (r *Ringbuffer[T]) WaitForFreeSlots(n int) {
	waitUntil(&r.notFullMu, r.notFull, time.Time{}, func() bool {
		return r.Capacity()-r.Size() >= n
	})
}

// Clear empties the buffer.
func (r *Ringbuffer[T]) Clear() {
	r.readMu.Lock()
	defer r.readMu.Unlock()
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	var zero T
	for i := range r.array {
		r.array[i] = zero
	}
	r.readPos.Store(0)
	r.writePos.Store(0)
	r.size.Store(0)
	r.broadcastNotFull()
}

// Reset clears the buffer then fills it with src, in order.
func (r *Ringbuffer[T]) Reset(src []T) error {
	r.readMu.Lock()
	defer r.readMu.Unlock()
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if len(src) > len(r.array)-1 {
		return dbterr.Newf(dbterr.InvalidArgument, "reset with %d elements exceeds capacity %d", len(src), len(r.array)-1)
	}

	var zero T
	for i := range r.array {
		r.array[i] = zero
	}
	r.readPos.Store(0)
	writePos := int32(0)
	for _, e := range src {
		writePos = (writePos + 1) % int32(len(r.array))
		r.array[writePos] = e
	}
	r.writePos.Store(writePos)
	r.size.Store(int32(len(src)))
	r.broadcastNotEmpty()
	return nil
}

// Recapacity grows or shrinks the buffer to hold n elements; fails if
// n is smaller than the current size.
func (r *Ringbuffer[T]) Recapacity(n int) error {
	r.readMu.Lock()
	defer r.readMu.Unlock()
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	cur := int(r.size.Load())
	if n < cur {
		return dbterr.Newf(dbterr.InvalidArgument, "recapacity %d smaller than current size %d", n, cur)
	}

	newArray := make([]T, n+1)
	// drain current contents in FIFO order into the new array
	localRead := r.readPos.Load()
	for i := 0; i < cur; i++ {
		localRead = (localRead + 1) % int32(len(r.array))
		newArray[i+1] = r.array[localRead]
	}
	r.array = newArray
	r.readPos.Store(0)
	r.writePos.Store(int32(cur))
	r.broadcastNotFull()
	return nil
}
