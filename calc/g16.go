/*
 * g16.go, part of goneb.
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

package calc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	neb "goneb"
	v3 "goneb/v3"
)

//G16 runs Gaussian 16 for energies and forces. It implements
//neb.Calculator. As with XTB, each handle owns its working directory;
//Gaussian scatters scratch and checkpoint files there, so two handles
//sharing a directory would corrupt each other.
type G16 struct {
	command string
	dir     string
	atoms   []neb.Atom
	charge  int
	multi   int
	method  string //the route section after #p, e.g. "b3lyp/6-31g(d)"
	nCPU    int
	memory  string
}

//NewG16 returns a G16 handle working in dir, which is created if
//needed. Defaults: neutral singlet, b3lyp/6-31g(d), 1 processor, 1GB.
func NewG16(dir string, atoms []neb.Atom) (*G16, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &G16{
		command: "g16",
		dir:     dir,
		atoms:   atoms,
		multi:   1,
		method:  "b3lyp/6-31g(d)",
		nCPU:    1,
		memory:  "1GB",
	}, nil
}

//SetCommand sets the Gaussian executable to run.
func (O *G16) SetCommand(name string) { O.command = name }

//SetCharge sets the total charge.
func (O *G16) SetCharge(c int) { O.charge = c }

//SetMulti sets the spin multiplicity.
func (O *G16) SetMulti(m int) { O.multi = m }

//SetMethod sets the level of theory, i.e. the route section after #p.
func (O *G16) SetMethod(m string) {
	if m != "" {
		O.method = m
	}
}

//SetnCPU sets %nprocshared for each run.
func (O *G16) SetnCPU(n int) { O.nCPU = n }

//SetMemory sets %mem, in Gaussian notation ("4GB", "800MB").
func (O *G16) SetMemory(m string) { O.memory = m }

//Dir returns the working directory of the handle.
func (O *G16) Dir() string { return O.dir }

//EnergyForces writes a force-job input for coords in the handle's
//directory, runs g16 on it and parses the log. The energy comes back
//in eV and the forces in eV/A. Cancelling ctx kills the subprocess.
func (O *G16) EnergyForces(ctx context.Context, coords *v3.Matrix) (float64, *v3.Matrix, error) {
	if coords.NVecs() != len(O.atoms) {
		return 0, nil, Error{"geometry does not match the handle's topology", "g16", O.dir, []string{"EnergyForces"}}
	}
	//stale results from a previous run must never be parsed as fresh.
	for _, stale := range []string{"struct.log", "struct.rwf", "struct.int", "struct.d2e"} {
		os.Remove(filepath.Join(O.dir, stale))
	}
	if err := O.writeGJF(coords); err != nil {
		return 0, nil, Error{"can't write input: " + err.Error(), "g16", O.dir, []string{"EnergyForces"}}
	}
	cmd := exec.CommandContext(ctx, O.command, "struct.gjf")
	cmd.Dir = O.dir
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		return 0, nil, Error{"g16 run failed: " + err.Error(), "g16", O.dir, []string{"EnergyForces"}}
	}
	lg, err := os.Open(filepath.Join(O.dir, "struct.log"))
	if err != nil {
		return 0, nil, Error{"g16 produced no log file", "g16", O.dir, []string{"EnergyForces"}}
	}
	defer lg.Close()
	energy, forces, err := ParseG16Output(lg, len(O.atoms))
	if err != nil {
		return 0, nil, errDecorate(err, "EnergyForces")
	}
	return energy, forces, nil
}

//writeGJF writes the input for a single-point force job. nosymm keeps
//Gaussian from reorienting the geometry, which would make the forces
//useless for the band.
func (O *G16) writeGJF(coords *v3.Matrix) error {
	f, err := os.Create(filepath.Join(O.dir, "struct.gjf"))
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "%%nprocshared=%d\n", O.nCPU)
	fmt.Fprintf(w, "%%mem=%s\n", O.memory)
	fmt.Fprintf(w, "%%chk=struct.chk\n")
	fmt.Fprintf(w, "#p %s Force nosymm\n\n", O.method)
	fmt.Fprintf(w, "goneb force evaluation\n\n")
	fmt.Fprintf(w, "%d %d\n", O.charge, O.multi)
	for i, at := range O.atoms {
		fmt.Fprintf(w, "%-2s  %12.8f  %12.8f  %12.8f\n", at.Symbol, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2))
	}
	fmt.Fprintf(w, "\n") //Gaussian wants the trailing blank line
	return w.Flush()
}

//ParseG16Output reads a Gaussian log stream, returning the last SCF
//energy in eV and the forces in eV/A. The forces table is printed in
//Hartree/Bohr, already as forces rather than a gradient, so only the
//unit conversion applies. An abnormally terminated log is an error
//even if it got as far as printing forces.
func ParseG16Output(r io.Reader, natoms int) (float64, *v3.Matrix, error) {
	scan := bufio.NewScanner(r)
	var energy float64
	var forces *v3.Matrix
	foundE := false
	terminated := false
	for scan.Scan() {
		line := scan.Text()
		switch {
		case strings.Contains(line, "SCF Done:"):
			fields := strings.Fields(line)
			if len(fields) < 5 {
				return 0, nil, Error{"malformed SCF Done line: " + line, "g16", "", []string{"ParseG16Output"}}
			}
			e, err := parseFortranFloat(fields[4])
			if err != nil {
				return 0, nil, Error{"can't parse SCF energy from: " + line, "g16", "", []string{"ParseG16Output"}}
			}
			energy = e
			foundE = true
		case strings.Contains(line, "Forces (Hartrees/Bohr)"):
			//the column-header line and the dashed rule below it.
			for i := 0; i < 2; i++ {
				if !scan.Scan() {
					return 0, nil, Error{"truncated forces table", "g16", "", []string{"ParseG16Output"}}
				}
			}
			forces = v3.Zeros(natoms)
			for i := 0; i < natoms; i++ {
				if !scan.Scan() {
					return 0, nil, Error{"truncated forces table", "g16", "", []string{"ParseG16Output"}}
				}
				fields := strings.Fields(scan.Text())
				if len(fields) < 5 {
					return 0, nil, Error{fmt.Sprintf("malformed forces line %q", scan.Text()), "g16", "", []string{"ParseG16Output"}}
				}
				for j := 0; j < 3; j++ {
					v, err := parseFortranFloat(fields[j+2])
					if err != nil {
						return 0, nil, Error{fmt.Sprintf("can't parse force component %q", fields[j+2]), "g16", "", []string{"ParseG16Output"}}
					}
					forces.Set(i, j, v*neb.HBohr2EVA)
				}
			}
		case strings.Contains(line, "Normal termination of Gaussian"):
			terminated = true
		}
	}
	if !foundE {
		return 0, nil, Error{"no SCF energy in log", "g16", "", []string{"ParseG16Output"}}
	}
	if forces == nil {
		return 0, nil, Error{"no forces table in log; was this a Force job?", "g16", "", []string{"ParseG16Output"}}
	}
	if !terminated {
		return 0, nil, Error{"Gaussian did not terminate normally", "g16", "", []string{"ParseG16Output"}}
	}
	return energy * neb.H2EV, forces, nil
}

//G16ForImages returns one G16 handle per band node, each with its own
//subdirectory node_0 ... node_{n-1} under dir, and configure applied
//to each.
func G16ForImages(dir string, atoms []neb.Atom, n int, configure func(*G16)) ([]*G16, error) {
	handles := make([]*G16, n)
	for i := 0; i < n; i++ {
		h, err := NewG16(filepath.Join(dir, fmt.Sprintf("node_%d", i)), atoms)
		if err != nil {
			return nil, err
		}
		if configure != nil {
			configure(h)
		}
		handles[i] = h
	}
	return handles, nil
}
