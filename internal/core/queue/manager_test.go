package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

func TestManagerRunsJobs(t *testing.T) {
	m := NewManager(config.QueueConfig{Workers: 3, MaxSize: 20})
	defer m.Close()

	ctx := context.Background()
	var count atomic.Int32
	results := make([]<-chan error, 0, 10)
	for i := 0; i < 10; i++ {
		ch, err := m.Enqueue(ctx, func(context.Context) error {
			count.Add(1)
			return nil
		})
		require.NoError(t, err)
		results = append(results, ch)
	}

	require.NoError(t, Wait(ctx, results))
	assert.EqualValues(t, 10, count.Load())
	assert.EqualValues(t, 10, m.GetQueueStatus().ProcessedCount)
	assert.Equal(t, 3, m.GetQueueStatus().Workers)
}

func TestManagerPropagatesJobError(t *testing.T) {
	m := NewManager(config.QueueConfig{Workers: 1, MaxSize: 5})
	defer m.Close()

	boom := errors.New("boom")
	ctx := context.Background()
	ok, err := m.Enqueue(ctx, func(context.Context) error { return nil })
	require.NoError(t, err)
	bad, err := m.Enqueue(ctx, func(context.Context) error { return boom })
	require.NoError(t, err)

	assert.ErrorIs(t, Wait(ctx, []<-chan error{ok, bad}), boom)
}

func TestManagerQueueFull(t *testing.T) {
	m := NewManager(config.QueueConfig{Workers: 1, MaxSize: 1})
	defer m.Close()

	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	blocking := func(context.Context) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}

	first, err := m.Enqueue(ctx, blocking)
	require.NoError(t, err)
	<-started

	second, err := m.Enqueue(ctx, blocking)
	require.NoError(t, err)

	_, err = m.Enqueue(ctx, blocking)
	assert.ErrorIs(t, err, common.ErrQueueFull)

	close(release)
	require.NoError(t, Wait(ctx, []<-chan error{first, second}))
}

func TestManagerSkipsCancelledJobs(t *testing.T) {
	m := NewManager(config.QueueConfig{Workers: 1, MaxSize: 5})
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	req := &Request{Context: ctx, Job: func(context.Context) error { ran = true; return nil }, Result: make(chan error, 1)}
	m.run(0, req)

	assert.ErrorIs(t, <-req.Result, context.Canceled)
	assert.False(t, ran)
}

func TestManagerClose(t *testing.T) {
	m := NewManager(config.QueueConfig{Workers: 2, MaxSize: 5})

	done := make(chan struct{})
	go func() {
		m.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}

	_, err := m.Enqueue(context.Background(), func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrClosed)
	m.Close()
}

func TestManagerEnqueueDuringClose(t *testing.T) {
	for round := 0; round < 20; round++ {
		m := NewManager(config.QueueConfig{Workers: 2, MaxSize: 64})

		var (
			mu       sync.Mutex
			accepted []<-chan error
			wg       sync.WaitGroup
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 8; j++ {
					ch, err := m.Enqueue(context.Background(), func(context.Context) error { return nil })
					if err != nil {
						return
					}
					mu.Lock()
					accepted = append(accepted, ch)
					mu.Unlock()
				}
			}()
		}
		m.Close()
		wg.Wait()

		// 已接受的任務都必須有結果
		for _, ch := range accepted {
			select {
			case err := <-ch:
				assert.NoError(t, err)
			case <-time.After(2 * time.Second):
				t.Fatalf("round %d: accepted job never ran", round)
			}
		}
	}
}
