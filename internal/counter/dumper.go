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

package counter

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lindb/common/pkg/logger"
	"go.uber.org/atomic"

	"github.com/gocoros/coros/pkg/timeutil"
)

// Dumper periodically appends counter snapshots to a CSV file. Each row is
// elapsed,slot0,...,slotN,total with elapsed formatted as HH:MM:SS.mmm.
// Stop writes a final row.
type Dumper struct {
	counter  *MultiCounter
	filename string
	interval time.Duration

	running   *atomic.Bool
	done      chan struct{}
	startTime time.Time
	mutex     sync.Mutex

	logger logger.Logger
}

// NewDumper creates a dumper for counter, appending to filename every
// interval once started.
func NewDumper(counter *MultiCounter, filename string, interval time.Duration) *Dumper {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Dumper{
		counter:  counter,
		filename: filename,
		interval: interval,
		running:  atomic.NewBool(false),
		done:     make(chan struct{}),
		logger:   logger.GetLogger("Benchmark", "CounterDumper"),
	}
}

// Start begins the periodic dump loop. Starting a running dumper is a no-op.
func (d *Dumper) Start() {
	if !d.running.CompareAndSwap(false, true) {
		return
	}
	d.startTime = time.Now()
	go d.worker()
}

// Stop halts the loop and writes a final snapshot.
func (d *Dumper) Stop() {
	if !d.running.CompareAndSwap(true, false) {
		return
	}
	close(d.done)
	d.dump()
}

func (d *Dumper) worker() {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
			d.dump()
		}
	}
}

func (d *Dumper) dump() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	elapsed := time.Since(d.startTime)
	out, err := os.OpenFile(d.filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		d.logger.Error("open dump file failure",
			logger.String("file", d.filename), logger.Error(err))
		return
	}
	defer func() {
		_ = out.Close()
	}()

	var row strings.Builder
	row.WriteString(timeutil.FormatElapsed(elapsed))
	for i := 0; i < d.counter.Size(); i++ {
		row.WriteByte(',')
		row.WriteString(strconv.FormatInt(d.counter.Get(i), 10))
	}
	row.WriteByte(',')
	row.WriteString(strconv.FormatInt(d.counter.Total(), 10))
	row.WriteByte('\n')

	if _, err = out.WriteString(row.String()); err != nil {
		d.logger.Error("write dump row failure",
			logger.String("file", d.filename), logger.Error(err))
	}
}
