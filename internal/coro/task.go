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

// Package coro implements suspendable tasks, the process-wide task manager that
// routes their continuations to a worker pool, and a suspension-based mutex.
//
// A task body is an ordinary function taking a *Coroutine. It runs on whatever
// pool worker resumes it and hands control back at suspension points only:
// awaiting a not-ready Awaiter, or Yield. The frame lives on its own goroutine;
// Resume and the suspension points exchange control over unbuffered channels, so
// a parked task costs no worker.
package coro

import (
	"go.uber.org/atomic"
)

// Awaiter decides at a suspension point whether the calling task proceeds.
// If Ready reports false, Suspend receives the caller's continuation handle;
// whoever holds that handle afterwards owns the right to resume the task.
type Awaiter interface {
	Ready() bool
	Suspend(h Handle)
}

// frame is the suspended computation behind a Handle. Control transfer:
// Resume sends on resume (or starts the goroutine) and blocks on yield;
// the frame sends on yield when it parks or completes, then blocks on resume.
type frame struct {
	fn      func(*Coroutine)
	resume  chan struct{}
	yield   chan struct{}
	done    atomic.Bool
	started bool
}

func (f *frame) run() {
	defer func() {
		// A panic in the task body stops the frame; it is not propagated.
		_ = recover()
		f.done.Store(true)
		f.yield <- struct{}{}
	}()
	f.fn(&Coroutine{f: f})
}

// Handle is an opaque, copyable reference to a suspended task frame. At most
// one executor may hold a resumable handle at a time; handing a handle to the
// pool transfers the right to call Resume.
type Handle struct {
	f *frame
}

// Resume runs the frame up to its next suspension point or to completion.
// It reports true iff the task advanced.
func (h Handle) Resume() bool {
	f := h.f
	if f == nil || f.done.Load() {
		return false
	}
	if !f.started {
		f.started = true
		go f.run()
	} else {
		f.resume <- struct{}{}
	}
	<-f.yield
	return true
}

// Done reports whether the frame has run to completion. A zero handle counts
// as done.
func (h Handle) Done() bool {
	return h.f == nil || h.f.done.Load()
}

// Task wraps a continuation handle. Construction does not execute any task
// code; the first Resume does. The frame stays inspectable through Done after
// completion.
type Task struct {
	h Handle
}

// New creates a task from fn in the suspended state.
func New(fn func(*Coroutine)) *Task {
	return &Task{h: Handle{f: &frame{
		fn:     fn,
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
	}}}
}

// Resume advances the task to its next suspension point or completion,
// reporting true iff it advanced.
func (t *Task) Resume() bool { return t.h.Resume() }

// Done reports completion.
func (t *Task) Done() bool { return t.h.Done() }

// Handle exposes the raw continuation for transfer to the scheduler.
func (t *Task) Handle() Handle { return t.h }

// Coroutine is the suspension capability passed to a task body. It is only
// valid on the goroutine running that body.
type Coroutine struct {
	f *frame
}

// Await suspends the calling task until the awaiter admits it. A ready awaiter
// admits immediately and the task continues on the current worker.
func (c *Coroutine) Await(a Awaiter) {
	if a.Ready() {
		return
	}
	a.Suspend(Handle{f: c.f})
	c.park()
}

// Yield resubmits the calling task to the scheduler and suspends, letting the
// current worker run something else.
func (c *Coroutine) Yield() {
	Execute(Handle{f: c.f})
	c.park()
}

// park hands control back to the resumer and blocks until the next Resume.
func (c *Coroutine) park() {
	c.f.yield <- struct{}{}
	<-c.f.resume
}
