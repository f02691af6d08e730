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

// Package metrics defines the Prometheus instruments exposed by the scheduling
// runtime.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "coros"

// SchedulerStatistics represents the statistics of one worker pool.
type SchedulerStatistics struct {
	// TasksSubmitted tracks tasks accepted onto a run queue.
	TasksSubmitted prometheus.Counter
	// TasksExecuted tracks tasks that a worker finished resuming.
	TasksExecuted prometheus.Counter
	// TasksStolen tracks tasks taken from another worker's run queue.
	TasksStolen prometheus.Counter
	// TasksRejected tracks submissions dropped because the pool was stopped.
	TasksRejected prometheus.Counter
	// TasksPanic tracks panics recovered while executing a task.
	TasksPanic prometheus.Counter
	// WorkersAlive tracks workers currently running their scheduling loop.
	WorkersAlive prometheus.Gauge
	// TaskWaitDuration observes the queue-to-execution latency in seconds.
	TaskWaitDuration prometheus.Histogram
}

// NewSchedulerStatistics creates the statistics for the named pool,
// registering them with reg when reg is not nil.
func NewSchedulerStatistics(pool string, reg prometheus.Registerer) *SchedulerStatistics {
	labels := prometheus.Labels{"pool": pool}
	s := &SchedulerStatistics{
		TasksSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tasks_submitted_total",
			Help: "Total tasks accepted onto a run queue", ConstLabels: labels,
		}),
		TasksExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tasks_executed_total",
			Help: "Total tasks executed by workers", ConstLabels: labels,
		}),
		TasksStolen: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tasks_stolen_total",
			Help: "Total tasks stolen from peer run queues", ConstLabels: labels,
		}),
		TasksRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tasks_rejected_total",
			Help: "Total submissions dropped after pool stop", ConstLabels: labels,
		}),
		TasksPanic: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "tasks_panic_total",
			Help: "Total panics recovered while executing tasks", ConstLabels: labels,
		}),
		WorkersAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "workers_alive",
			Help: "Workers currently running the scheduling loop", ConstLabels: labels,
		}),
		TaskWaitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "task_wait_duration_seconds",
			Help: "Latency from submission to execution", ConstLabels: labels,
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(
			s.TasksSubmitted, s.TasksExecuted, s.TasksStolen,
			s.TasksRejected, s.TasksPanic, s.WorkersAlive, s.TaskWaitDuration,
		)
	}
	return s
}
