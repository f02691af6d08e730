// Licensed to coros under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. coros licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

// Package concurrent provides the work-stealing worker pool that executes
// resumable continuations.
package concurrent

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/lindb/common/pkg/logger"
	"go.uber.org/atomic"

	"github.com/gocoros/coros/metrics"
	"github.com/gocoros/coros/pkg/lockfree"
)

// Task represents a task function to be executed by a worker.
type Task struct {
	// handle executes the task function.
	handle func()
	// panicHandle executes callback if the task panics.
	panicHandle func(err error)

	createTime time.Time
}

// NewTask creates a task.
func NewTask(handle func(), panicHandle func(err error)) *Task {
	return &Task{
		handle:      handle,
		panicHandle: panicHandle,
		createTime:  time.Now(),
	}
}

func (t *Task) Exec() {
	t.handle()
}

// Pool represents the worker pool that executes submitted tasks.
type Pool interface {
	// Start spawns the workers. Starting a running pool is a no-op.
	Start()
	// Submit enqueues a task onto a uniformly random worker run queue.
	// Submitting to a stopped pool is a silent no-op.
	Submit(task *Task)
	// Running returns the pool's running flag. Task bodies are expected to
	// check it at loop heads; Stop clears it.
	Running() *atomic.Bool
	// Stopped returns true if this pool is not running.
	Stopped() bool
	// Stop clears the running flag and joins all workers. Tasks still
	// resident in run queues are discarded.
	Stop()
}

// workerPool implements Pool. Each worker owns one MPMC run queue; idle
// workers steal from up to 2*N random victims before re-checking the running
// flag.
type workerPool struct {
	name    string
	queues  []*lockfree.Queue[*Task]
	running *atomic.Bool
	wg      sync.WaitGroup

	statistics *metrics.SchedulerStatistics

	logger logger.Logger
}

// NewPool returns a new worker pool with workers scheduling loops, each bound
// to its own run queue.
func NewPool(name string, workers int, statistics *metrics.SchedulerStatistics) Pool {
	if workers < 1 {
		workers = 1
	}
	queues := make([]*lockfree.Queue[*Task], workers)
	for i := range queues {
		queues[i] = lockfree.NewQueue[*Task]()
	}
	return &workerPool{
		name:       name,
		queues:     queues,
		running:    atomic.NewBool(false),
		statistics: statistics,
		logger:     logger.GetLogger("Pool", name),
	}
}

func (p *workerPool) Start() {
	if !p.running.CompareAndSwap(false, true) {
		return
	}
	for i := range p.queues {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *workerPool) Submit(task *Task) {
	if task == nil || task.handle == nil {
		return
	}
	if !p.running.Load() {
		p.statistics.TasksRejected.Inc()
		return
	}
	p.queues[rand.IntN(len(p.queues))].Enqueue(task)
	p.statistics.TasksSubmitted.Inc()
}

func (p *workerPool) Running() *atomic.Bool {
	return p.running
}

func (p *workerPool) Stopped() bool {
	return !p.running.Load()
}

// Stop tells the workers to exit, then joins them.
func (p *workerPool) Stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	p.wg.Wait()
	// discard tasks still resident in the run queues
	for _, q := range p.queues {
		for {
			if _, ok := q.Dequeue(); !ok {
				break
			}
		}
	}
}

// worker is the scheduling loop bound to queue idx: drain own queue, then try
// stealing, then re-check the running flag.
func (p *workerPool) worker(idx int) {
	p.statistics.WorkersAlive.Inc()
	defer func() {
		p.statistics.WorkersAlive.Dec()
		p.wg.Done()
	}()

	own := p.queues[idx]
	for p.running.Load() {
		if task, ok := own.Dequeue(); ok {
			p.execTask(task)
			continue
		}
		if task, ok := p.steal(idx); ok {
			p.execTask(task)
			continue
		}
		runtime.Gosched()
	}
}

// steal samples up to 2*N random victim queues, skipping self, and takes the
// first task found.
func (p *workerPool) steal(self int) (*Task, bool) {
	n := len(p.queues)
	if n == 1 {
		return nil, false
	}
	for attempt := 0; attempt < 2*n; attempt++ {
		victim := rand.IntN(n)
		if victim == self {
			continue
		}
		if task, ok := p.queues[victim].Dequeue(); ok {
			p.statistics.TasksStolen.Inc()
			return task, true
		}
	}
	return nil, false
}

func (p *workerPool) execTask(task *Task) {
	defer func() {
		if r := recover(); r != nil {
			p.statistics.TasksPanic.Inc()
			err := fmt.Errorf("%v", r)
			p.logger.Error("panic when execute task",
				logger.Error(err), logger.Stack())
			if task.panicHandle != nil {
				task.panicHandle(err)
			}
		}
	}()
	p.statistics.TaskWaitDuration.Observe(time.Since(task.createTime).Seconds())
	task.Exec()
	p.statistics.TasksExecuted.Inc()
}
