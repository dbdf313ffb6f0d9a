package bridge_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spoutn1k/brand/internal/bridge"
	"github.com/spoutn1k/brand/internal/roll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tasks(n int) []bridge.Message {
	out := make([]bridge.Message, n)
	for i := range out {
		out[i] = bridge.Message{Kind: bridge.KindThumbnail, Meta: roll.FileMetadata{Index: uint32(i + 1)}}
	}
	return out
}

// goroutineSpawn runs each task on its own goroutine, answering with the
// frame index.
func goroutineSpawn(task bridge.Message, done func(any, error)) error {
	go done(bridge.ThumbnailAnswer{Index: task.Meta.Index}, nil)
	return nil
}

func TestPoolProcessesEveryTask(t *testing.T) {
	var mu sync.Mutex
	seen := map[uint32]bool{}

	pool := bridge.NewPool(tasks(20), 4, goroutineSpawn, func(r bridge.Result) {
		mu.Lock()
		defer mu.Unlock()
		seen[r.Task.Meta.Index] = true
	})
	require.NoError(t, pool.Join(context.Background()))

	assert.Len(t, seen, 20)
}

func TestPoolBoundsConcurrency(t *testing.T) {
	var current, peak atomic.Int32

	spawn := func(task bridge.Message, done func(any, error)) error {
		go func() {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			current.Add(-1)
			done(nil, nil)
		}()
		return nil
	}

	pool := bridge.NewPool(tasks(32), 3, spawn, nil)
	require.NoError(t, pool.Join(context.Background()))

	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestPoolCollectsTaskErrors(t *testing.T) {
	spawn := func(task bridge.Message, done func(any, error)) error {
		if task.Meta.Index%2 == 0 {
			go done(nil, fmt.Errorf("frame %d failed", task.Meta.Index))
			return nil
		}
		return goroutineSpawn(task, done)
	}

	pool := bridge.NewPool(tasks(4), 2, spawn, nil)

	err := pool.Join(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame 2 failed")
	assert.Contains(t, err.Error(), "frame 4 failed")
}

func TestPoolSpawnFailureFreesTheSlot(t *testing.T) {
	// The only slot hits a failing spawn mid-queue; the remaining tasks
	// must still run and Join must account for every task.
	spawn := func(task bridge.Message, done func(any, error)) error {
		if task.Meta.Index == 2 {
			return fmt.Errorf("no execution context available")
		}
		return goroutineSpawn(task, done)
	}

	var mu sync.Mutex
	seen := map[uint32]bool{}
	pool := bridge.NewPool(tasks(5), 1, spawn, func(r bridge.Result) {
		mu.Lock()
		defer mu.Unlock()
		seen[r.Task.Meta.Index] = true
	})

	err := pool.Join(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no execution context available")
	assert.Len(t, seen, 5, "every task settles, including the failed spawn")
}

func TestPoolAllSpawnsFail(t *testing.T) {
	spawn := func(bridge.Message, func(any, error)) error {
		return fmt.Errorf("spawn refused")
	}

	pool := bridge.NewPool(tasks(3), 2, spawn, nil)
	err := pool.Join(context.Background())
	require.Error(t, err)
}

func TestPoolJoinHonorsContext(t *testing.T) {
	// A task that never settles.
	spawn := func(bridge.Message, func(any, error)) error { return nil }

	pool := bridge.NewPool(tasks(1), 1, spawn, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, pool.Join(ctx), context.DeadlineExceeded)
}

func TestPoolEmptyTaskList(t *testing.T) {
	pool := bridge.NewPool(nil, 4, goroutineSpawn, nil)
	require.NoError(t, pool.Join(context.Background()))
}
