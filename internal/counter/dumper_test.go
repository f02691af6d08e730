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
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var rowPattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{3}(,-?\d+)+$`)

func TestDumper_WritesRows(t *testing.T) {
	c := NewMultiCounter(2)
	c.Increment(0)
	c.Increment(1)
	c.Increment(1)

	file := filepath.Join(t.TempDir(), "counters.csv")
	d := NewDumper(c, file, 20*time.Millisecond)
	d.Start()
	time.Sleep(70 * time.Millisecond)
	d.Stop()

	data, err := os.ReadFile(file)
	assert.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// periodic rows plus the final row written on stop
	assert.GreaterOrEqual(t, len(lines), 2)
	for _, line := range lines {
		assert.Regexp(t, rowPattern, line)
		cols := strings.Split(line, ",")
		// elapsed, one column per slot, total
		assert.Len(t, cols, 1+c.Size()+1)
	}
	last := strings.Split(lines[len(lines)-1], ",")
	assert.Equal(t, "1", last[1])
	assert.Equal(t, "2", last[2])
	assert.Equal(t, "3", last[3])
}

func TestDumper_StartStopIdempotent(t *testing.T) {
	c := NewMultiCounter(1)
	file := filepath.Join(t.TempDir(), "counters.csv")
	d := NewDumper(c, file, 10*time.Millisecond)
	d.Start()
	d.Start()
	d.Stop()
	d.Stop()

	_, err := os.Stat(file)
	assert.NoError(t, err, "stop writes a final dump")
}

func TestDumper_OpenFailureLogged(t *testing.T) {
	c := NewMultiCounter(1)
	// a directory path cannot be opened for append
	d := NewDumper(c, t.TempDir(), 10*time.Millisecond)
	d.Start()
	d.Stop()
}
