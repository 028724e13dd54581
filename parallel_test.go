/*
 * parallel_test.go, part of goneb.
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

package neb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	v3 "goneb/v3"
)

//delayCalc sleeps a bit before answering, so completion order differs
//from dispatch order.
type delayCalc struct {
	e     float64
	delay time.Duration
	fail  bool
}

func (D *delayCalc) EnergyForces(ctx context.Context, coords *v3.Matrix) (float64, *v3.Matrix, error) {
	select {
	case <-time.After(D.delay):
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
	if D.fail {
		return 0, nil, fmt.Errorf("simulated provider crash")
	}
	return D.e, v3.Zeros(coords.NVecs()), nil
}

func delayImages(n int, failing map[int]bool) []*Image {
	images := make([]*Image, n)
	for i := 0; i < n; i++ {
		c := v3.Zeros(1)
		c.Set(0, 0, float64(i))
		images[i] = NewImage(c, &delayCalc{
			e:     float64(i * 10),
			delay: time.Duration(rand.Intn(30)) * time.Millisecond,
			fail:  failing[i],
		})
	}
	return images
}

func TestEvaluateImagesOrder(Te *testing.T) {
	images := delayImages(6, nil)
	which := []int{0, 1, 2, 3, 4, 5}
	if err := EvaluateImages(context.Background(), images, which, 3); err != nil {
		Te.Fatal(err)
	}
	for i, im := range images {
		if im.Energy != float64(i*10) {
			Te.Errorf("image %d got energy %g, want %g", i, im.Energy, float64(i*10))
		}
		if im.Forces == nil {
			Te.Errorf("image %d has no forces", i)
		}
	}
}

func TestEvaluateImagesAbort(Te *testing.T) {
	images := delayImages(6, map[int]bool{2: true, 4: true})
	which := []int{0, 1, 2, 3, 4, 5}
	err := EvaluateImages(context.Background(), images, which, 2)
	if err == nil {
		Te.Fatal("failing provider did not fail the batch")
	}
	nerr, ok := err.(*Error)
	if !ok {
		Te.Fatalf("unexpected error type %T: %v", err, err)
	}
	if nerr.Image() != 2 {
		Te.Errorf("the lowest failing image should name the error: want 2, got %d", nerr.Image())
	}
	//the commit barrier: a failed batch must leave every image
	//untouched, successes included.
	for i, im := range images {
		if !math.IsNaN(im.Energy) || im.Forces != nil {
			Te.Errorf("image %d was updated from a failed batch", i)
		}
	}
}

func TestEvaluateImagesCancel(Te *testing.T) {
	images := delayImages(4, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := EvaluateImages(ctx, images, []int{0, 1, 2, 3}, 2)
	if err == nil {
		Te.Error("cancelled context should fail the batch")
	}
}

//A cancelled context must come back from the whole force assembly as
//an error, never as a panic, whichever stage it interrupts.
func TestForcesCancelled(Te *testing.T) {
	atoms := []Atom{{Symbol: "H"}}
	images := make([]*Image, 5)
	for i := range images {
		c := v3.Zeros(1)
		c.Set(0, 0, float64(i))
		images[i] = NewImage(c, &delayCalc{e: float64(i), delay: 5 * time.Millisecond})
	}
	b, err := NewBand(atoms, images, plainOpts())
	if err != nil {
		Te.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Forces(ctx); err == nil {
		Te.Error("cancelled context should fail the force assembly")
	}
	//an error born outside the library keeps its message through
	//decoration.
	derr := errDecorate(errors.New("external failure"), "TestForcesCancelled")
	if derr == nil || !strings.Contains(derr.Error(), "external failure") {
		Te.Error("foreign error mangled:", derr)
	}
}
