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

package coro

import (
	"github.com/gocoros/coros/internal/concurrent"
)

// manager routes continuations to the active pool. It owns no handles.
type manager struct {
	pool concurrent.Pool
}

// defaultManager is the process-wide task manager.
var defaultManager manager

// Init binds the task manager to a pool. Init must complete before any
// Execute; the pool must outlive every continuation that may be submitted.
func Init(pool concurrent.Pool) {
	defaultManager.pool = pool
}

// Execute submits the continuation to the pool for resumption. Executing a
// completed handle is a no-op.
func Execute(h Handle) {
	if h.Done() || defaultManager.pool == nil {
		return
	}
	defaultManager.pool.Submit(concurrent.NewTask(func() {
		h.Resume()
	}, nil))
}

// ExecuteTask submits the task's continuation to the pool.
func ExecuteTask(t *Task) {
	Execute(t.Handle())
}
