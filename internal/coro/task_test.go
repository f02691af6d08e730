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

package coro

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/atomic"

	"github.com/gocoros/coros/internal/concurrent"
	"github.com/gocoros/coros/metrics"
)

// newTestPool starts a pool bound to the task manager and returns it; the pool
// is stopped when the test finishes.
func newTestPool(t *testing.T, workers int) concurrent.Pool {
	t.Helper()
	pool := concurrent.NewPool("test",
		workers, metrics.NewSchedulerStatistics(t.Name(), prometheus.NewRegistry()))
	pool.Start()
	Init(pool)
	t.Cleanup(pool.Stop)
	return pool
}

// recordAwaiter parks the caller and remembers its handle for manual resume.
type recordAwaiter struct {
	ready  bool
	handle chan Handle
}

func (a *recordAwaiter) Ready() bool      { return a.ready }
func (a *recordAwaiter) Suspend(h Handle) { a.handle <- h }

func TestTask_InitiallySuspended(t *testing.T) {
	ran := atomic.NewBool(false)
	task := New(func(_ *Coroutine) {
		ran.Store(true)
	})
	time.Sleep(10 * time.Millisecond)
	assert.False(t, ran.Load(), "construction must not execute task code")
	assert.False(t, task.Done())

	assert.True(t, task.Resume())
	assert.True(t, ran.Load())
	assert.True(t, task.Done())
}

func TestTask_ResumeAfterDone(t *testing.T) {
	task := New(func(_ *Coroutine) {})
	assert.True(t, task.Resume())
	assert.True(t, task.Done())
	// the frame stays inspectable; further resumes do not advance
	assert.False(t, task.Resume())
	assert.False(t, task.Handle().Resume())
}

func TestTask_ZeroHandleDone(t *testing.T) {
	var h Handle
	assert.True(t, h.Done())
	assert.False(t, h.Resume())
}

func TestTask_AwaitReadyDoesNotSuspend(t *testing.T) {
	steps := 0
	task := New(func(c *Coroutine) {
		c.Await(&recordAwaiter{ready: true})
		steps++
	})
	// a single resume drives through the ready awaiter to completion
	assert.True(t, task.Resume())
	assert.True(t, task.Done())
	assert.Equal(t, 1, steps)
}

func TestTask_AwaitNotReadySuspends(t *testing.T) {
	awaiter := &recordAwaiter{handle: make(chan Handle, 1)}
	stage := atomic.NewInt32(0)
	task := New(func(c *Coroutine) {
		stage.Store(1)
		c.Await(awaiter)
		stage.Store(2)
	})

	assert.True(t, task.Resume())
	assert.Equal(t, int32(1), stage.Load())
	assert.False(t, task.Done())

	// the awaiter received the continuation; resuming it finishes the task
	h := <-awaiter.handle
	assert.True(t, h.Resume())
	assert.Equal(t, int32(2), stage.Load())
	assert.True(t, task.Done())
}

func TestTask_YieldResubmitsToPool(t *testing.T) {
	newTestPool(t, 1)

	stage := atomic.NewInt32(0)
	task := New(func(c *Coroutine) {
		stage.Store(1)
		c.Yield()
		stage.Store(2)
	})
	ExecuteTask(task)

	assert.Eventually(t, func() bool {
		return task.Done() && stage.Load() == 2
	}, time.Second, time.Millisecond)
}

func TestTask_PanicSwallowed(t *testing.T) {
	task := New(func(_ *Coroutine) {
		panic("boom")
	})
	assert.True(t, task.Resume())
	assert.True(t, task.Done())
}

func TestTask_ManyYields(t *testing.T) {
	newTestPool(t, 2)

	count := atomic.NewInt64(0)
	task := New(func(c *Coroutine) {
		for i := 0; i < 100; i++ {
			count.Inc()
			c.Yield()
		}
	})
	ExecuteTask(task)

	assert.Eventually(t, func() bool {
		return task.Done()
	}, 5*time.Second, time.Millisecond)
	assert.Equal(t, int64(100), count.Load())
}
