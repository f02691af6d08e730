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

// Package counter provides the sharded benchmark counter and its periodic
// CSV dumper.
package counter

import (
	"go.uber.org/atomic"

	"github.com/lindb/common/pkg/logger"
)

var counterLogger = logger.GetLogger("Benchmark", "Counter")

// MultiCounter is a fixed set of atomic counter slots, one per benchmark
// task. Out-of-range slot indexes are logged and ignored.
type MultiCounter struct {
	slots []atomic.Int64
}

// NewMultiCounter creates a counter with n slots, all zero. n is clamped to
// at least 1.
func NewMultiCounter(n int) *MultiCounter {
	if n < 1 {
		n = 1
	}
	return &MultiCounter{slots: make([]atomic.Int64, n)}
}

// Increment adds one to slot idx.
func (c *MultiCounter) Increment(idx int) {
	if idx < 0 || idx >= len(c.slots) {
		counterLogger.Error("increment out of range slot",
			logger.Any("slot", idx), logger.Any("slots", len(c.slots)))
		return
	}
	c.slots[idx].Inc()
}

// Decrement subtracts one from slot idx.
func (c *MultiCounter) Decrement(idx int) {
	if idx < 0 || idx >= len(c.slots) {
		counterLogger.Error("decrement out of range slot",
			logger.Any("slot", idx), logger.Any("slots", len(c.slots)))
		return
	}
	c.slots[idx].Dec()
}

// Get returns the value of slot idx, or 0 if idx is out of range.
func (c *MultiCounter) Get(idx int) int64 {
	if idx < 0 || idx >= len(c.slots) {
		counterLogger.Error("get out of range slot",
			logger.Any("slot", idx), logger.Any("slots", len(c.slots)))
		return 0
	}
	return c.slots[idx].Load()
}

// Total returns the sum over all slots.
func (c *MultiCounter) Total() int64 {
	var total int64
	for i := range c.slots {
		total += c.slots[i].Load()
	}
	return total
}

// Size returns the number of slots.
func (c *MultiCounter) Size() int {
	return len(c.slots)
}
