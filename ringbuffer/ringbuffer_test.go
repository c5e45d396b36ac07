package ringbuffer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetSameThread(t *testing.T) {
	r := New[int](4)
	require.True(t, r.Put(42))
	v, ok := r.Get()
	require.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestSizeFreeInvariant(t *testing.T) {
	r := New[int](3)
	assert.Equal(t, 3, r.Capacity())
	for i := 0; i < 3; i++ {
		require.True(t, r.Put(i))
		assert.Equal(t, r.Capacity(), r.Size()+r.Free())
	}
	assert.False(t, r.Put(99), "put on full buffer must fail")
}

func TestFIFOOrder(t *testing.T) {
	r := New[int](8)
	for i := 0; i < 8; i++ {
		require.True(t, r.Put(i))
	}
	for i := 0; i < 8; i++ {
		v, ok := r.Get()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestClearResetsSize(t *testing.T) {
	r := New[int](4)
	r.Put(1)
	r.Put(2)
	r.Clear()
	assert.Equal(t, 0, r.Size())
	_, ok := r.Get()
	assert.False(t, ok)
}

func TestReset(t *testing.T) {
	r := New[int](4)
	require.NoError(t, r.Reset([]int{1, 2, 3}))
	assert.Equal(t, 3, r.Size())
	for i := 1; i <= 3; i++ {
		v, ok := r.Get()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	require.Error(t, r.Reset([]int{1, 2, 3, 4, 5}))
}

func TestRecapacity(t *testing.T) {
	r := New[int](2)
	r.Put(1)
	r.Put(2)
	require.NoError(t, r.Recapacity(5))
	assert.Equal(t, 5, r.Capacity())
	v, ok := r.Get()
	require.True(t, ok)
	assert.Equal(t, 1, v)

	require.Error(t, r.Recapacity(0), "recapacity below current size must fail")
}

func TestGetBlockingWakesOnPut(t *testing.T) {
	r := New[int](2)
	done := make(chan int, 1)
	go func() {
		v, ok := r.GetBlocking(0)
		if ok {
			done <- v
		}
	}()
	time.Sleep(20 * time.Millisecond)
	require.True(t, r.Put(7))
	select {
	case v := <-done:
		assert.Equal(t, 7, v)
	case <-time.After(time.Second):
		t.Fatal("GetBlocking never woke up")
	}
}

func TestPutBlockingTimesOutWhenFull(t *testing.T) {
	r := New[int](1)
	require.True(t, r.Put(1))
	ok := r.PutBlocking(2, 50)
	assert.False(t, ok)
}

func TestSPSCConcurrentFIFO(t *testing.T) {
	r := New[int](16)
	const n = 2000
	go func() {
		for i := 0; i < n; i++ {
			r.PutBlocking(i, 0)
		}
	}()
	for i := 0; i < n; i++ {
		v, ok := r.GetBlocking(5000)
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func TestWaitForFreeSlots(t *testing.T) {
	r := New[int](2)
	r.Put(1)
	r.Put(2)
	freed := make(chan struct{})
	go func() {
		r.WaitForFreeSlots(1)
		close(freed)
	}()
	select {
	case <-freed:
		t.Fatal("should not have free slots yet")
	case <-time.After(20 * time.Millisecond):
	}
	r.Get()
	select {
	case <-freed:
	case <-time.After(time.Second):
		t.Fatal("WaitForFreeSlots never unblocked")
	}
}
