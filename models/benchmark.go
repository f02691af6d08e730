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

// Package models defines the benchmark result models.
package models

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RunStats is the summary of one benchmark run.
type RunStats struct {
	Mode     string        `json:"mode"`
	Workers  int           `json:"workers"`
	Tasks    int           `json:"tasks"`
	Elapsed  time.Duration `json:"elapsed"`
	TotalOps int64         `json:"totalOps"`
	// Throughput is operations per second over the whole run.
	Throughput float64 `json:"throughput"`
}

// ToTable renders the summary as a table for terminal output.
func (s *RunStats) ToTable() string {
	writer := table.NewWriter()
	writer.AppendHeader(table.Row{"Mode", "Workers", "Tasks", "Elapsed", "Total Ops", "Ops/Sec"})
	writer.AppendRow(table.Row{
		s.Mode,
		s.Workers,
		s.Tasks,
		s.Elapsed.Round(time.Millisecond).String(),
		s.TotalOps,
		fmt.Sprintf("%.0f", s.Throughput),
	})
	return writer.Render()
}
