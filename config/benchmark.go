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

// Package config defines the benchmark configuration.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v7"
	"github.com/lindb/common/pkg/fileutil"
	"github.com/lindb/common/pkg/ltoml"
)

// envPrefix is the prefix of all environment variable overrides.
const envPrefix = "COROS_"

// Run represents a configuration for one benchmark run.
type Run struct {
	Workers      int            `env:"WORKERS" toml:"workers"`
	Tasks        int            `env:"TASKS" toml:"tasks"`
	Duration     ltoml.Duration `env:"DURATION" toml:"duration"`
	Output       string         `env:"OUTPUT" toml:"output"`
	DumpInterval ltoml.Duration `env:"DUMP_INTERVAL" toml:"dump-interval"`
}

// TOML returns Run's toml config.
func (r *Run) TOML() string {
	return fmt.Sprintf(`
## Config for the benchmark run
[benchmark]
## number of pool workers executing task continuations
## Default: %d
## Env: COROS_BENCHMARK_WORKERS
workers = %d
## number of looping tasks contending for the mutex
## Default: %d
## Env: COROS_BENCHMARK_TASKS
tasks = %d
## how long the benchmark runs before the pool is stopped
## Default: %s
## Env: COROS_BENCHMARK_DURATION
duration = "%s"
## CSV file the counter snapshots are appended to,
## dumping is disabled when empty
## Default: %s
## Env: COROS_BENCHMARK_OUTPUT
output = "%s"
## time period between two counter snapshots
## Default: %s
## Env: COROS_BENCHMARK_DUMP_INTERVAL
dump-interval = "%s"`,
		r.Workers, r.Workers,
		r.Tasks, r.Tasks,
		r.Duration.String(), r.Duration.String(),
		r.Output, r.Output,
		r.DumpInterval.String(), r.DumpInterval.String(),
	)
}

// Monitor represents a configuration for the resource usage reporter.
type Monitor struct {
	Enabled        bool           `env:"ENABLED" toml:"enabled"`
	ReportInterval ltoml.Duration `env:"REPORT_INTERVAL" toml:"report-interval"`
}

// TOML returns Monitor's toml config.
func (m *Monitor) TOML() string {
	return fmt.Sprintf(`
## Config for the resource usage reporter
[monitor]
## report host cpu/memory usage while the benchmark runs
## Default: %v
## Env: COROS_MONITOR_ENABLED
enabled = %v
## time period between two resource usage reports
## Default: %s
## Env: COROS_MONITOR_REPORT_INTERVAL
report-interval = "%s"`,
		m.Enabled, m.Enabled,
		m.ReportInterval.String(), m.ReportInterval.String(),
	)
}

// Benchmark is the root of the benchmark config file.
type Benchmark struct {
	Benchmark Run     `envPrefix:"BENCHMARK_" toml:"benchmark"`
	Monitor   Monitor `envPrefix:"MONITOR_" toml:"monitor"`
}

// TOML returns the full benchmark toml config.
func (b *Benchmark) TOML() string {
	return b.Benchmark.TOML() + "\n" + b.Monitor.TOML()
}

// Validate checks the configuration values are usable.
func (b *Benchmark) Validate() error {
	if b.Benchmark.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", b.Benchmark.Workers)
	}
	if b.Benchmark.Tasks < 1 {
		return fmt.Errorf("tasks must be >= 1, got %d", b.Benchmark.Tasks)
	}
	if time.Duration(b.Benchmark.Duration) <= 0 {
		return fmt.Errorf("duration must be positive, got %s", b.Benchmark.Duration.String())
	}
	return nil
}

// NewDefaultBenchmark returns a new default benchmark config.
func NewDefaultBenchmark() *Benchmark {
	return &Benchmark{
		Benchmark: Run{
			Workers:      4,
			Tasks:        10,
			Duration:     ltoml.Duration(10 * time.Second),
			Output:       "counters.csv",
			DumpInterval: ltoml.Duration(100 * time.Millisecond),
		},
		Monitor: Monitor{
			Enabled:        true,
			ReportInterval: ltoml.Duration(time.Second),
		},
	}
}

// LoadConfig loads the benchmark config from the config file if one exists,
// then applies environment overrides.
func LoadConfig(cfgPath, defaultPath string, cfg *Benchmark) error {
	if fileutil.Exist(cfgPath) || fileutil.Exist(defaultPath) {
		if err := ltoml.LoadConfig(cfgPath, defaultPath, cfg); err != nil {
			return fmt.Errorf("decode benchmark config file error: %w", err)
		}
	}
	if err := env.Parse(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("read benchmark env error: %w", err)
	}
	return nil
}
