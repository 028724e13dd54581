/*
 * files.go, part of goneb.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "goneb/v3"
)

//XYZRead reads a (possibly multi-frame) XYZ stream, returning the
//topology of the first frame and the coordinates of every frame. All
//frames must share the first frame's atom count; the species ordering
//of later frames is not re-checked, as the format repeats it
//per-frame only by convention.
func XYZRead(f io.Reader) ([]Atom, []*v3.Matrix, error) {
	r := bufio.NewReader(f)
	var atoms []Atom
	var frames []*v3.Matrix
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			break //no more frames
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		nat, err := strconv.Atoi(line)
		if err != nil {
			return nil, nil, fmt.Errorf("goneb: ill-formatted XYZ: bad atom count line %q", line)
		}
		if _, err := r.ReadString('\n'); err != nil { //title line
			return nil, nil, fmt.Errorf("goneb: ill-formatted XYZ: truncated frame")
		}
		coords := v3.Zeros(nat)
		first := atoms == nil
		for i := 0; i < nat; i++ {
			line, err := r.ReadString('\n')
			if err != nil && line == "" {
				return nil, nil, fmt.Errorf("goneb: ill-formatted XYZ: truncated frame at atom %d", i)
			}
			fields := strings.Fields(line)
			if len(fields) < 4 {
				return nil, nil, fmt.Errorf("goneb: ill-formatted XYZ: atom line %q", line)
			}
			if first {
				atoms = append(atoms, Atom{Symbol: fields[0]})
			}
			for j := 0; j < 3; j++ {
				v, err := strconv.ParseFloat(fields[j+1], 64)
				if err != nil {
					return nil, nil, fmt.Errorf("goneb: ill-formatted XYZ: coordinate %q", fields[j+1])
				}
				coords.Set(i, j, v)
			}
		}
		if coords.NVecs() != len(atoms) {
			return nil, nil, NewError(ErrPathMismatch, len(frames))
		}
		frames = append(frames, coords)
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("goneb: no frames in XYZ input")
	}
	return atoms, frames, nil
}

//XYZFileRead reads an XYZ file. See XYZRead.
func XYZFileRead(name string) ([]Atom, []*v3.Matrix, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return XYZRead(f)
}

//XYZWrite writes one XYZ frame block (atom count line, title line,
//one "symbol x y z" line per atom) to w.
func XYZWrite(w io.Writer, atoms []Atom, coords *v3.Matrix, title string) error {
	if coords.NVecs() != len(atoms) {
		return NewError(ErrPathMismatch, -1)
	}
	if _, err := fmt.Fprintf(w, "%d\n%s\n", len(atoms), title); err != nil {
		return err
	}
	for i, at := range atoms {
		_, err := fmt.Fprintf(w, "%-2s  %12.8f  %12.8f  %12.8f\n",
			at.Symbol, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2))
		if err != nil {
			return err
		}
	}
	return nil
}

//XYZFileWrite writes the given frames to an XYZ file, one block per
//frame. titles may be nil, in which case the frame index is used.
func XYZFileWrite(name string, atoms []Atom, frames []*v3.Matrix, titles []string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for i, c := range frames {
		title := fmt.Sprintf("frame %d", i)
		if titles != nil && i < len(titles) {
			title = titles[i]
		}
		if err := XYZWrite(w, atoms, c, title); err != nil {
			return err
		}
	}
	return w.Flush()
}
