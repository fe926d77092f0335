package containers

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskQueueFIFO(t *testing.T) {
	q := NewTaskQueue[int]()
	stop := make(chan struct{})

	for i := 0; i < 100; i++ {
		q.Submit(i)
	}

	batch, ok := q.DetachAll(stop)
	require.True(t, ok)
	require.Len(t, batch, 100)
	for i, v := range batch {
		assert.Equal(t, i, v)
	}
	assert.True(t, q.IsEmpty())
}

func TestTaskQueueDetachAllBlocksUntilSubmit(t *testing.T) {
	q := NewTaskQueue[string]()
	stop := make(chan struct{})

	got := make(chan []string, 1)
	go func() {
		if batch, ok := q.DetachAll(stop); ok {
			got <- batch
		}
	}()

	// Give the consumer a chance to block first.
	time.Sleep(20 * time.Millisecond)
	q.Submit("hello")

	select {
	case batch := <-got:
		assert.Equal(t, []string{"hello"}, batch)
	case <-time.After(time.Second):
		t.Fatal("consumer never woke up after submit")
	}
}

func TestTaskQueueStopWakesBlockedConsumer(t *testing.T) {
	q := NewTaskQueue[int]()
	stop := make(chan struct{})

	done := make(chan bool, 1)
	go func() {
		_, ok := q.DetachAll(stop)
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	close(stop)

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("consumer never observed stop")
	}
}

func TestTaskQueueStopTakesPriorityOverQueuedWork(t *testing.T) {
	q := NewTaskQueue[int]()
	stop := make(chan struct{})
	close(stop)

	q.Submit(1)
	q.Submit(2)

	_, ok := q.DetachAll(stop)
	assert.False(t, ok, "a stopped queue must drain no further")
}

func TestTaskQueueConcurrentSubmitLosesNothing(t *testing.T) {
	q := NewTaskQueue[int]()
	stop := make(chan struct{})
	const total = 10000

	var wg sync.WaitGroup
	wg.Add(1)
	received := 0
	go func() {
		defer wg.Done()
		for received < total {
			batch, ok := q.DetachAll(stop)
			if !ok {
				return
			}
			received += len(batch)
		}
	}()

	for i := 0; i < total; i++ {
		q.Submit(i)
	}
	wg.Wait()

	assert.Equal(t, total, received)
	assert.Equal(t, 0, q.Len())
}
