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

// Package monitoring reports host resource usage while a benchmark runs.
package monitoring

import (
	"context"
	"time"

	"github.com/lindb/common/pkg/logger"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// MemoryStatGetter returns the virtual memory stat of the host.
type MemoryStatGetter func() (*mem.VirtualMemoryStat, error)

// CPUPercentGetter returns the cpu usage percent since the previous call.
type CPUPercentGetter func(interval time.Duration, percpu bool) ([]float64, error)

// ResourceCollector samples cpu and memory usage at a fixed interval and logs
// the samples, until its context is cancelled.
type ResourceCollector struct {
	ctx      context.Context
	interval time.Duration

	// for testing
	MemoryStatGetter MemoryStatGetter
	CPUPercentGetter CPUPercentGetter

	logger logger.Logger
}

// NewResourceCollector creates a resource collector driven by ctx.
func NewResourceCollector(ctx context.Context, interval time.Duration) *ResourceCollector {
	if interval <= 0 {
		interval = time.Second
	}
	return &ResourceCollector{
		ctx:              ctx,
		interval:         interval,
		MemoryStatGetter: mem.VirtualMemory,
		CPUPercentGetter: cpu.Percent,
		logger:           logger.GetLogger("Monitoring", "ResourceCollector"),
	}
}

// Run collects resource usage until the context is done. It blocks; run it on
// its own goroutine.
func (rc *ResourceCollector) Run() {
	ticker := time.NewTicker(rc.interval)
	defer ticker.Stop()
	// prime the cpu counters so the first interval reading is meaningful
	_, _ = rc.CPUPercentGetter(0, false)
	for {
		select {
		case <-rc.ctx.Done():
			return
		case <-ticker.C:
			rc.collect()
		}
	}
}

func (rc *ResourceCollector) collect() {
	memStat, err := rc.MemoryStatGetter()
	if err != nil {
		rc.logger.Error("get memory stat failure", logger.Error(err))
	}
	cpuStats, err := rc.CPUPercentGetter(0, false)
	if err != nil {
		rc.logger.Error("get cpu stat failure", logger.Error(err))
	}
	if memStat == nil || len(cpuStats) == 0 {
		return
	}
	rc.logger.Info("resource usage",
		logger.Any("cpu_percent", cpuStats[0]),
		logger.Any("mem_used", memStat.Used),
		logger.Any("mem_used_percent", memStat.UsedPercent))
}
