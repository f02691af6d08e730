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

// Package benchmark drives mutex benchmarks on the work-stealing pool.
package benchmark

import (
	"context"
	"sync"
	"time"

	"github.com/lindb/common/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gocoros/coros/config"
	"github.com/gocoros/coros/internal/concurrent"
	"github.com/gocoros/coros/internal/coro"
	"github.com/gocoros/coros/internal/counter"
	"github.com/gocoros/coros/internal/monitoring"
	"github.com/gocoros/coros/metrics"
	"github.com/gocoros/coros/models"
)

// Mode selects the guard the benchmark tasks use around the shared counter.
type Mode string

const (
	// ModeSuspend guards increments with the suspension-based mutex.
	ModeSuspend Mode = "suspend"
	// ModeBlocking guards increments with sync.Mutex, blocking the worker.
	ModeBlocking Mode = "blocking"
	// ModeRace runs without any guard. Each task increments its own atomic
	// counter slot, so no updates are lost.
	ModeRace Mode = "race"
)

// Runner owns one benchmark run: it builds the pool, spawns the looping
// tasks under the selected guard, and reports the result.
type Runner struct {
	mode   Mode
	cfg    *config.Benchmark
	logger logger.Logger
}

// NewRunner creates a runner for the given mode and config.
func NewRunner(mode Mode, cfg *config.Benchmark) *Runner {
	return &Runner{
		mode:   mode,
		cfg:    cfg,
		logger: logger.GetLogger("Benchmark", "Runner"),
	}
}

// Run executes the benchmark until the configured duration elapses or ctx is
// cancelled, then stops the pool and returns the run summary.
func (r *Runner) Run(ctx context.Context) (*models.RunStats, error) {
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	runCfg := &r.cfg.Benchmark

	statistics := metrics.NewSchedulerStatistics(string(r.mode), prometheus.NewRegistry())
	pool := concurrent.NewPool("benchmark", runCfg.Workers, statistics)
	pool.Start()
	coro.Init(pool)

	counters := counter.NewMultiCounter(runCfg.Tasks)
	var dumper *counter.Dumper
	if runCfg.Output != "" {
		dumper = counter.NewDumper(counters, runCfg.Output, time.Duration(runCfg.DumpInterval))
		dumper.Start()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if r.cfg.Monitor.Enabled {
		collector := monitoring.NewResourceCollector(runCtx, time.Duration(r.cfg.Monitor.ReportInterval))
		go collector.Run()
	}

	r.logger.Info("benchmark starting",
		logger.String("mode", string(r.mode)),
		logger.Any("workers", runCfg.Workers),
		logger.Any("tasks", runCfg.Tasks),
		logger.String("duration", runCfg.Duration.String()))

	running := pool.Running()
	taskFn := r.taskFn(counters, running)
	start := time.Now()
	for i := 0; i < runCfg.Tasks; i++ {
		coro.ExecuteTask(coro.New(taskFn(i)))
	}

	timer := time.NewTimer(time.Duration(runCfg.Duration))
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}

	pool.Stop()
	if dumper != nil {
		dumper.Stop()
	}
	elapsed := time.Since(start)

	stats := &models.RunStats{
		Mode:       string(r.mode),
		Workers:    runCfg.Workers,
		Tasks:      runCfg.Tasks,
		Elapsed:    elapsed,
		TotalOps:   counters.Total(),
		Throughput: float64(counters.Total()) / elapsed.Seconds(),
	}
	r.logger.Info("benchmark finished",
		logger.String("mode", string(r.mode)),
		logger.Any("totalOps", stats.TotalOps))
	return stats, nil
}

// taskFn builds the per-slot task bodies under the runner's guard. In the
// guarded modes all tasks contend on one shared guard; ModeRace has none.
// Every iteration ends with a yield so tasks
// share workers fairly and observe the running flag promptly.
func (r *Runner) taskFn(counters *counter.MultiCounter, running interface{ Load() bool }) func(idx int) func(*coro.Coroutine) {
	switch r.mode {
	case ModeBlocking:
		var mu sync.Mutex
		return func(idx int) func(*coro.Coroutine) {
			return func(c *coro.Coroutine) {
				for running.Load() {
					mu.Lock()
					counters.Increment(idx)
					mu.Unlock()
					c.Yield()
				}
			}
		}
	case ModeRace:
		return func(idx int) func(*coro.Coroutine) {
			return func(c *coro.Coroutine) {
				for running.Load() {
					counters.Increment(idx)
					c.Yield()
				}
			}
		}
	default:
		mtx := coro.NewMutex()
		return func(idx int) func(*coro.Coroutine) {
			return func(c *coro.Coroutine) {
				for running.Load() {
					c.Await(mtx.Lock())
					counters.Increment(idx)
					mtx.Unlock()
					c.Yield()
				}
			}
		}
	}
}
