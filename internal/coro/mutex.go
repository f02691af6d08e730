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
	"go.uber.org/atomic"

	"github.com/gocoros/coros/pkg/lockfree"
)

// Mutex is a suspension-based mutual exclusion gate for tasks. On contention
// the calling task parks instead of blocking its worker; Unlock hands
// ownership directly to the oldest parked waiter without an intermediate
// unlocked state. A fresh Lock may still acquire a just-released mutex ahead
// of a parked waiter.
//
// Mutex is not reentrant: a task that holds it and locks again deadlocks.
// Unlock on an unlocked mutex violates the contract and is not detected.
type Mutex struct {
	waiters *lockfree.Queue[Handle]
	locked  atomic.Bool
}

// NewMutex creates an unlocked mutex.
func NewMutex() *Mutex {
	return &Mutex{waiters: lockfree.NewQueue[Handle]()}
}

// lockAwaiter reports ready when its Lock call acquired the gate; otherwise
// Suspend parks the caller's continuation on the wait queue.
type lockAwaiter struct {
	m        *Mutex
	acquired bool
}

func (a *lockAwaiter) Ready() bool {
	return a.acquired
}

func (a *lockAwaiter) Suspend(h Handle) {
	a.m.waiters.Enqueue(h)
}

// Lock atomically sets the gate, reading the previous value. The returned
// awaiter is ready iff the gate was clear: the caller acquired the mutex and
// continues on the current worker. Otherwise awaiting it parks the task on
// the wait queue.
func (m *Mutex) Lock() Awaiter {
	prev := m.locked.Swap(true)
	return &lockAwaiter{m: m, acquired: !prev}
}

// Unlock releases the mutex. If a waiter is parked, its continuation is
// resubmitted through the task manager and the gate stays set, transferring
// ownership without an unlocked window. Otherwise the gate is cleared.
func (m *Mutex) Unlock() {
	if h, ok := m.waiters.Dequeue(); ok {
		Execute(h)
		return
	}
	m.locked.Store(false)
	// A loser of the Lock race may enqueue itself between the empty dequeue
	// above and the store. If no further Lock arrives, that waiter would
	// never wake: retake the gate and hand it over. A failed retake means a
	// fresh locker now owns the gate and will find the waiter on its own
	// unlock.
	for !m.waiters.Empty() {
		if m.locked.Swap(true) {
			return
		}
		if h, ok := m.waiters.Dequeue(); ok {
			Execute(h)
			return
		}
		m.locked.Store(false)
	}
}

// Locked reports whether some task holds the gate. Advisory: the answer may
// race with concurrent Lock/Unlock.
func (m *Mutex) Locked() bool {
	return m.locked.Load()
}
