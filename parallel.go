/*
 * parallel.go, part of goneb.
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

package neb

import (
	"context"
	"sync"

	v3 "goneb/v3"
)

type evalResult struct {
	i      int
	energy float64
	forces *v3.Matrix
	err    error
}

//EvaluateImages computes energy and forces for the images of the
//given band indexes, dispatching the calculator calls to a bounded
//pool of workers goroutines. The images are only updated after the
//whole batch has succeeded, in index order regardless of which worker
//finished first; a half-evaluated band is physically meaningless, so
//any single failure discards the entire batch and the first failing
//image (lowest index) names the returned error. There are no retries
//here: if a provider wants retries, it does them itself.
func EvaluateImages(ctx context.Context, images []*Image, which []int, workers int) error {
	if len(which) == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(which) {
		workers = len(which)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	results := make(chan *evalResult, len(which))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				e, f, err := images[i].Calc.EnergyForces(ctx, images[i].Coords)
				results <- &evalResult{i: i, energy: e, forces: f, err: err}
				if err != nil {
					return
				}
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, i := range which {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	done := make(map[int]*evalResult, len(which))
	var failed *evalResult
	for r := range results {
		if r.err != nil {
			if failed == nil || r.i < failed.i {
				failed = r
			}
			cancel() //kill in-flight providers, stop feeding jobs
			continue
		}
		done[r.i] = r
	}
	if failed != nil {
		return NewError(ErrProviderFailed+": "+failed.err.Error(), failed.i)
	}
	if len(done) != len(which) { //cancelled before every job was fed
		if err := ctx.Err(); err != nil {
			return err
		}
		return NewError(ErrProviderFailed+": evaluation batch incomplete", -1)
	}
	//commit barrier: everything succeeded, update the images.
	for _, i := range which {
		images[i].Energy = done[i].energy
		images[i].Forces = done[i].forces
	}
	return nil
}
