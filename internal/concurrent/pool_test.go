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

package concurrent

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/atomic"

	"github.com/gocoros/coros/metrics"
)

func newTestPool(t *testing.T, workers int) Pool {
	t.Helper()
	pool := NewPool("test",
		workers, metrics.NewSchedulerStatistics(t.Name(), prometheus.NewRegistry()))
	t.Cleanup(pool.Stop)
	return pool
}

func TestPool_SubmitExecutes(t *testing.T) {
	pool := newTestPool(t, 2)
	pool.Start()

	var wg sync.WaitGroup
	count := atomic.NewInt64(0)
	const tasks = 100
	wg.Add(tasks)
	for i := 0; i < tasks; i++ {
		pool.Submit(NewTask(func() {
			count.Inc()
			wg.Done()
		}, nil))
	}
	wg.Wait()
	assert.Equal(t, int64(tasks), count.Load())
}

func TestPool_StealingDrainsUnevenLoad(t *testing.T) {
	pool := newTestPool(t, 4)
	pool.Start()

	var wg sync.WaitGroup
	const tasks = 500
	wg.Add(tasks)
	for i := 0; i < tasks; i++ {
		pool.Submit(NewTask(func() {
			time.Sleep(time.Millisecond)
			wg.Done()
		}, nil))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("pool failed to drain submitted tasks")
	}
}

func TestPool_SubmitAfterStopIsNoop(t *testing.T) {
	pool := newTestPool(t, 1)
	pool.Start()
	pool.Stop()
	assert.True(t, pool.Stopped())

	ran := atomic.NewBool(false)
	pool.Submit(NewTask(func() {
		ran.Store(true)
	}, nil))

	time.Sleep(20 * time.Millisecond)
	assert.False(t, ran.Load())
}

func TestPool_StopIdempotent(t *testing.T) {
	pool := newTestPool(t, 2)
	pool.Start()
	pool.Stop()
	pool.Stop()
	assert.True(t, pool.Stopped())
}

func TestPool_StartIdempotent(t *testing.T) {
	pool := newTestPool(t, 2)
	pool.Start()
	pool.Start()
	assert.False(t, pool.Stopped())

	var wg sync.WaitGroup
	wg.Add(1)
	pool.Submit(NewTask(wg.Done, nil))
	wg.Wait()
}

func TestPool_RunningFlagVisibleToTasks(t *testing.T) {
	pool := newTestPool(t, 1)
	pool.Start()
	running := pool.Running()
	assert.True(t, running.Load())
	pool.Stop()
	assert.False(t, running.Load())
}

func TestPool_StopWithPendingTasksDoesNotDeadlock(t *testing.T) {
	pool := newTestPool(t, 1)
	pool.Start()

	// a task that parks its goroutine forever, standing in for a suspension
	// point that never resolves
	blocked := make(chan struct{})
	pool.Submit(NewTask(func() {
		<-blocked
	}, nil))
	// queue more work behind it; it is discarded at stop
	for i := 0; i < 10; i++ {
		pool.Submit(NewTask(func() {}, nil))
	}
	time.Sleep(10 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		close(blocked)
		pool.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("stop deadlocked")
	}
}

func TestPool_PanicRecovered(t *testing.T) {
	pool := newTestPool(t, 1)
	pool.Start()

	var caught error
	var wg sync.WaitGroup
	wg.Add(1)
	pool.Submit(NewTask(func() {
		panic("boom")
	}, func(err error) {
		caught = err
		wg.Done()
	}))
	wg.Wait()
	assert.Error(t, caught)

	// the worker survives the panic
	ran := atomic.NewBool(false)
	wg.Add(1)
	pool.Submit(NewTask(func() {
		ran.Store(true)
		wg.Done()
	}, nil))
	wg.Wait()
	assert.True(t, ran.Load())
}

func TestPool_MinWorkers(t *testing.T) {
	pool := newTestPool(t, 0)
	pool.Start()

	var wg sync.WaitGroup
	wg.Add(1)
	pool.Submit(NewTask(wg.Done, nil))
	wg.Wait()
}
