/*
 * supervisor_test.go, part of goneb.
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
 */

package project

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

//waits for Done, failing the test if it takes too long.
func waitDone(Te *testing.T, S *Supervisor) error {
	for i := 0; i < 500; i++ {
		st, err := S.Check()
		switch st {
		case Done:
			return err
		case Idle:
			Te.Fatal("supervisor went Idle without reporting Done")
		}
		time.Sleep(5 * time.Millisecond)
	}
	Te.Fatal("unit never finished")
	return nil
}

func TestSupervisorLifecycle(Te *testing.T) {
	S := new(Supervisor)
	if st, _ := S.Check(); st != Idle {
		Te.Fatal("fresh supervisor not Idle")
	}
	release := make(chan struct{})
	if !S.Go("work", func(ctx context.Context) error {
		<-release
		return nil
	}) {
		Te.Fatal("idle supervisor rejected work")
	}
	if S.Go("more", func(ctx context.Context) error { return nil }) {
		Te.Error("busy supervisor accepted a second unit")
	}
	if st, _ := S.Check(); st != Running {
		Te.Error("running unit not reported as Running")
	}
	if S.JobName() != "work" {
		Te.Error("wrong job name:", S.JobName())
	}
	close(release)
	if err := waitDone(Te, S); err != nil {
		Te.Error(err)
	}
	//Done is a one-time result; after draining it we are Idle again.
	if st, _ := S.Check(); st != Idle {
		Te.Error("supervisor not Idle after draining Done")
	}
	if S.JobName() != "" {
		Te.Error("job name survived the unit")
	}
}

func TestSupervisorError(Te *testing.T) {
	S := new(Supervisor)
	boom := fmt.Errorf("unit exploded")
	if !S.Go("bad", func(ctx context.Context) error { return boom }) {
		Te.Fatal("idle supervisor rejected work")
	}
	if err := waitDone(Te, S); err != boom {
		Te.Error("unit error lost: got", err)
	}
}

func TestSupervisorCancel(Te *testing.T) {
	S := new(Supervisor)
	started := make(chan struct{})
	if !S.Go("slow", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}) {
		Te.Fatal("idle supervisor rejected work")
	}
	<-started
	S.Cancel()
	if st, _ := S.Check(); st != Idle {
		Te.Error("supervisor not Idle after Cancel")
	}
	//and it accepts work again.
	if !S.Go("next", func(ctx context.Context) error { return nil }) {
		Te.Error("supervisor rejected work after Cancel")
	}
	waitDone(Te, S)
}

//Several goroutines cancelling (and polling) the same unit at once
//must leave the supervisor Idle and usable, with nobody tripping over
//an already-drained unit.
func TestSupervisorConcurrentCancel(Te *testing.T) {
	S := new(Supervisor)
	started := make(chan struct{})
	if !S.Go("slow", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}) {
		Te.Fatal("idle supervisor rejected work")
	}
	<-started
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			S.Cancel()
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			S.Check()
		}()
	}
	wg.Wait()
	if st, _ := S.Check(); st != Idle {
		Te.Error("supervisor not Idle after concurrent cancellation:", st)
	}
	if !S.Go("next", func(ctx context.Context) error { return nil }) {
		Te.Error("supervisor rejected work after concurrent cancellation")
	}
	waitDone(Te, S)
}
