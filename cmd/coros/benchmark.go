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

package main

import (
	"fmt"
	"time"

	"github.com/lindb/common/pkg/ltoml"
	"github.com/spf13/cobra"

	"github.com/gocoros/coros/config"
	"github.com/gocoros/coros/internal/benchmark"
)

const (
	currentDir              = "./"
	benchmarkCfgName        = "benchmark.toml"
	defaultBenchmarkCfgFile = currentDir + benchmarkCfgName
)

var (
	cfg      string
	workers  int
	tasks    int
	duration time.Duration
	output   string
)

// newBenchmarkCmd returns a new benchmark-cmd
func newBenchmarkCmd() *cobra.Command {
	benchmarkCmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Run mutex benchmarks on the work-stealing pool",
	}
	for _, runCmd := range []*cobra.Command{
		newRunCmd(benchmark.ModeSuspend, "run looping tasks guarded by the suspension-based mutex"),
		newRunCmd(benchmark.ModeBlocking, "run looping tasks guarded by a blocking mutex"),
		newRunCmd(benchmark.ModeRace, "run looping tasks without any guard"),
	} {
		runCmd.PersistentFlags().StringVar(&cfg, "config", "",
			fmt.Sprintf("benchmark config file path, default is %s", defaultBenchmarkCfgFile))
		runCmd.PersistentFlags().IntVar(&workers, "workers", 0,
			"override the configured worker count")
		runCmd.PersistentFlags().IntVar(&tasks, "tasks", 0,
			"override the configured task count")
		runCmd.PersistentFlags().DurationVar(&duration, "duration", 0,
			"override the configured run duration")
		runCmd.PersistentFlags().StringVar(&output, "output", "",
			"override the configured counter dump file")
		benchmarkCmd.AddCommand(runCmd)
	}
	benchmarkCmd.AddCommand(initializeBenchmarkConfigCmd)
	return benchmarkCmd
}

// initializeBenchmarkConfigCmd initializes the benchmark config file
var initializeBenchmarkConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "create a new default benchmark-config",
	RunE: func(_ *cobra.Command, _ []string) error {
		path := cfg
		if path == "" {
			path = defaultBenchmarkCfgFile
		}
		return ltoml.WriteConfig(path, config.NewDefaultBenchmark().TOML())
	},
}

func newRunCmd(mode benchmark.Mode, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(mode),
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			benchmarkCfg := config.NewDefaultBenchmark()
			if err := config.LoadConfig(cfg, defaultBenchmarkCfgFile, benchmarkCfg); err != nil {
				return err
			}
			applyFlagOverrides(cmd, benchmarkCfg)

			runner := benchmark.NewRunner(mode, benchmarkCfg)
			stats, err := runner.Run(newCtxWithSignals())
			if err != nil {
				return err
			}
			fmt.Println(stats.ToTable())
			return nil
		},
	}
}

func applyFlagOverrides(cmd *cobra.Command, benchmarkCfg *config.Benchmark) {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		benchmarkCfg.Benchmark.Workers = workers
	}
	if flags.Changed("tasks") {
		benchmarkCfg.Benchmark.Tasks = tasks
	}
	if flags.Changed("duration") {
		benchmarkCfg.Benchmark.Duration = ltoml.Duration(duration)
	}
	if flags.Changed("output") {
		benchmarkCfg.Benchmark.Output = output
	}
}
