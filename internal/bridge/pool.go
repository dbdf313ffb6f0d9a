package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Result is the outcome of one pool task.
type Result struct {
	Task   Message
	Answer any
	Err    error
}

// SpawnFunc hands one task to an execution context and arranges for done to
// be called exactly once with its result. In the browser this spawns a Web
// Worker; natively it runs the task on a goroutine.
type SpawnFunc func(task Message, done func(answer any, err error)) error

// Pool drives a queue of tasks through up to `concurrency` simultaneous
// execution contexts. As each task settles, its result is passed to the
// callback and the next queued task is spawned.
type Pool struct {
	spawn    SpawnFunc
	callback func(Result)
	expected int

	mu      sync.Mutex
	pending []Message

	settled chan Result
}

// NewPool starts work on the given tasks immediately and returns the pool to
// Join on. concurrency values below 1 are treated as 1. The callback may be
// nil; when set it is invoked for every settled task, including failed ones.
func NewPool(tasks []Message, concurrency int, spawn SpawnFunc, callback func(Result)) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}

	p := &Pool{
		spawn:    spawn,
		callback: callback,
		expected: len(tasks),
		pending:  append([]Message(nil), tasks...),
		settled:  make(chan Result, len(tasks)),
	}

	for i := 0; i < concurrency; i++ {
		p.spawnNext()
	}
	return p
}

// spawnNext pops pending tasks and hands them to an execution context until
// one is accepted or the queue runs dry. A task whose spawn fails settles as
// failed, so the slot stays live and Join still sees every task.
func (p *Pool) spawnNext() {
	for {
		p.mu.Lock()
		if len(p.pending) == 0 {
			p.mu.Unlock()
			return
		}
		task := p.pending[0]
		p.pending = p.pending[1:]
		p.mu.Unlock()

		err := p.spawn(task, func(answer any, err error) {
			p.settle(Result{Task: task, Answer: answer, Err: err})
			p.spawnNext()
		})
		if err == nil {
			return
		}
		p.settle(Result{Task: task, Err: fmt.Errorf("spawning task: %w", err)})
	}
}

func (p *Pool) settle(result Result) {
	if p.callback != nil {
		p.callback(result)
	}
	// A settle slot is reserved per task, so this never blocks.
	p.settled <- result
}

// Join waits for every task to settle and returns the combined task errors,
// if any. Join returns early when ctx is cancelled.
func (p *Pool) Join(ctx context.Context) error {
	var errs []error
	for i := 0; i < p.expected; i++ {
		select {
		case result := <-p.settled:
			if result.Err != nil {
				errs = append(errs, result.Err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return errors.Join(errs...)
}
