package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIFOOrder(t *testing.T) {
	q := New[string]()
	q.Push("a")
	q.Push("b")
	q.Push("c")

	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.TryPop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	assert.True(t, q.Empty())
}

func TestTryPopEmpty(t *testing.T) {
	q := New[int]()
	_, ok := q.TryPop()
	assert.False(t, ok)
}

// TestConcurrentAccess exercises the queue from producer and consumer
// goroutines at once; every pushed element must be popped exactly once.
func TestConcurrentAccess(t *testing.T) {
	const producers = 4
	const perProducer = 1000

	q := New[int]()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(i)
			}
		}()
	}

	popped := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for popped < producers*perProducer {
			if _, ok := q.TryPop(); ok {
				popped++
			}
		}
	}()

	wg.Wait()
	<-done

	assert.Equal(t, producers*perProducer, popped)
	assert.True(t, q.Empty())
}
