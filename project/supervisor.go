/*
 * supervisor.go, part of goneb.
 *
 *
 * Copyright 2024 The goneb developers
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package project

import (
	"context"
	"fmt"
	"sync"
)

//Status is the observable state of a Supervisor.
type Status int

const (
	Idle Status = iota
	Running
	Done //reported exactly once per finished unit, then back to Idle
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Done:
		return "done"
	}
	return "unknown"
}

//Supervisor runs one unit of work at a time in the background. It is
//single-flight: starting while a unit runs is rejected, not queued.
//Check polls without blocking; when the unit has finished, the first
//Check after that returns Done together with the unit's error, and
//the Supervisor is Idle again. Cancel kills the running unit through
//its context (which kills any subprocesses the calculators spawned),
//waits for it to wind down and discards its outcome. All methods are
//safe for concurrent use.
type Supervisor struct {
	mu      sync.Mutex
	running bool
	name    string
	cancel  context.CancelFunc
	done    chan struct{}
	err     error
}

//Go starts fn in the background under the given name. It returns
//false, doing nothing, if a unit is already running.
func (S *Supervisor) Go(name string, fn func(ctx context.Context) error) bool {
	S.mu.Lock()
	defer S.mu.Unlock()
	if S.running {
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	S.running = true
	S.name = name
	S.cancel = cancel
	S.done = make(chan struct{})
	done := S.done
	go func() {
		err := fn(ctx)
		S.mu.Lock()
		S.err = err
		S.mu.Unlock()
		close(done)
	}()
	return true
}

//Check reports the current state. While the unit runs it returns
//Running with no side effects. Once the unit has finished, Check
//returns Done and the unit's error exactly once, resetting the
//Supervisor to Idle.
func (S *Supervisor) Check() (Status, error) {
	S.mu.Lock()
	defer S.mu.Unlock()
	if !S.running {
		return Idle, nil
	}
	select {
	case <-S.done:
		err := S.err
		S.reset()
		return Done, err
	default:
		return Running, nil
	}
}

//Cancel kills the running unit and waits for it to wind down. There
//is no partial-result salvage: whatever the unit managed to persist
//before dying is on disk, everything else is gone. A Cancel on an
//idle Supervisor does nothing.
func (S *Supervisor) Cancel() {
	S.mu.Lock()
	if !S.running {
		S.mu.Unlock()
		return
	}
	S.cancel()
	done := S.done
	S.mu.Unlock()
	<-done
	S.mu.Lock()
	//a concurrent Check or Cancel may have drained this unit (or a new
	//one may have started) while we waited; only reset our own.
	if S.running && S.done == done {
		S.reset()
	}
	S.mu.Unlock()
}

//JobName returns the name of the running unit, or an empty string.
func (S *Supervisor) JobName() string {
	S.mu.Lock()
	defer S.mu.Unlock()
	if !S.running {
		return ""
	}
	return S.name
}

//reset must be called with the lock held.
func (S *Supervisor) reset() {
	S.cancel()
	S.running = false
	S.name = ""
	S.cancel = nil
	S.done = nil
	S.err = nil
}

//StartNEB launches the next band optimization (seeded from run prev,
//or from the guess path with a negative prev) under the supervisor.
//Returns false if something else is already running.
func (P *Project) StartNEB(S *Supervisor, prev int) bool {
	return S.Go("neb", func(ctx context.Context) error {
		n, steps, conv, err := P.RunNEB(ctx, prev)
		if err != nil {
			return err
		}
		if !conv {
			return Error{fmt.Sprintf("run %d stopped unconverged after %d steps", n, steps), P.PathFile(n), nil}
		}
		return nil
	})
}

//StartSinglePoint launches an endpoint single-point ("init" or
//"final") under the supervisor. Returns false if something else is
//already running.
func (P *Project) StartSinglePoint(S *Supervisor, which string) bool {
	return S.Go("singlepoint_"+which, func(ctx context.Context) error {
		_, err := P.RunSinglePoint(ctx, which)
		return err
	})
}

//StartPrecalc launches a guess-path pre-calculation under the
//supervisor. Returns false if something else is already running.
func (P *Project) StartPrecalc(S *Supervisor) bool {
	return S.Go("precalc", func(ctx context.Context) error {
		return P.RunPrecalc(ctx)
	})
}
