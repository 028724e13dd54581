/*
 * xtb.go, part of goneb.
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
	"strconv"
	"strings"

	neb "goneb"
	v3 "goneb/v3"
)

//XTB runs the xtb semiempirical program for energies and gradients.
//It implements neb.Calculator. Each handle owns its working
//directory; never point two handles at the same one, concurrent runs
//would overwrite each other's scratch and output files.
type XTB struct {
	command string
	dir     string
	atoms   []neb.Atom
	charge  int
	multi   int
	method  string
	solvent string
	nCPU    int
}

//NewXTB returns an XTB handle working in dir, which is created if
//needed. The defaults are the xtb defaults: neutral singlet, GFN2.
func NewXTB(dir string, atoms []neb.Atom) (*XTB, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &XTB{
		command: "xtb",
		dir:     dir,
		atoms:   atoms,
		multi:   1,
		method:  "gfn2",
		nCPU:    1,
	}, nil
}

//SetCommand sets the xtb executable to run (a name looked up in PATH,
//or an absolute path).
func (O *XTB) SetCommand(name string) { O.command = name }

//SetCharge sets the total charge.
func (O *XTB) SetCharge(c int) { O.charge = c }

//SetMulti sets the spin multiplicity.
func (O *XTB) SetMulti(m int) { O.multi = m }

//SetMethod sets the Hamiltonian: "gfn0", "gfn1", "gfn2" or "gfnff".
//An unrecognized name falls back to gfn2.
func (O *XTB) SetMethod(m string) {
	if !isInString([]string{"gfn0", "gfn1", "gfn2", "gfnff"}, m) {
		m = "gfn2"
	}
	O.method = m
}

//SetSolvent sets the ALPB implicit solvent, empty for gas phase.
func (O *XTB) SetSolvent(s string) { O.solvent = s }

//SetnCPU sets the number of threads per xtb run. With one handle per
//image running concurrently, 1 is usually right.
func (O *XTB) SetnCPU(n int) { O.nCPU = n }

//Dir returns the working directory of the handle.
func (O *XTB) Dir() string { return O.dir }

//EnergyForces writes coords as an xyz file in the handle's directory,
//runs xtb with --grad on it and parses the resulting turbomole-style
//gradient file. The energy comes back in eV and the forces (the
//negated gradient) in eV/A. Cancelling ctx kills the subprocess.
func (O *XTB) EnergyForces(ctx context.Context, coords *v3.Matrix) (float64, *v3.Matrix, error) {
	if coords.NVecs() != len(O.atoms) {
		return 0, nil, Error{"geometry does not match the handle's topology", "xtb", O.dir, []string{"EnergyForces"}}
	}
	//stale results from a previous run must never be parsed as fresh.
	os.Remove(filepath.Join(O.dir, "gradient"))
	os.Remove(filepath.Join(O.dir, "xtbrestart"))
	input := filepath.Join(O.dir, "struct.xyz")
	if err := neb.XYZFileWrite(input, O.atoms, []*v3.Matrix{coords}, []string{""}); err != nil {
		return 0, nil, Error{"can't write input geometry: " + err.Error(), "xtb", O.dir, []string{"EnergyForces"}}
	}
	args := []string{"struct.xyz", "--grad", "--chrg", strconv.Itoa(O.charge), "--uhf", strconv.Itoa(O.multi - 1)}
	if O.method == "gfnff" {
		args = append(args, "--gfnff")
	} else {
		args = append(args, "--gfn", strings.TrimPrefix(O.method, "gfn"))
	}
	if O.solvent != "" {
		args = append(args, "--alpb", O.solvent)
	}
	if O.nCPU > 1 {
		args = append(args, "-P", strconv.Itoa(O.nCPU))
	}
	out, err := os.Create(filepath.Join(O.dir, "xtb.out"))
	if err != nil {
		return 0, nil, err
	}
	defer out.Close()
	cmd := exec.CommandContext(ctx, O.command, args...)
	cmd.Dir = O.dir
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		return 0, nil, Error{"xtb run failed: " + err.Error(), "xtb", O.dir, []string{"EnergyForces"}}
	}
	g, err := os.Open(filepath.Join(O.dir, "gradient"))
	if err != nil {
		return 0, nil, Error{"xtb produced no gradient file", "xtb", O.dir, []string{"EnergyForces"}}
	}
	defer g.Close()
	energy, forces, err := ParseGradient(g, len(O.atoms))
	if err != nil {
		return 0, nil, errDecorate(err, "EnergyForces")
	}
	return energy, forces, nil
}

//ParseGradient reads a turbomole-format gradient stream: the cycle
//line with the SCF energy in Hartree, natoms coordinate lines (in
//Bohr, with a trailing element symbol), then natoms gradient lines in
//Hartree/Bohr. It returns the energy in eV and the forces, i.e. the
//negated gradient, in eV/A. Fortran D exponents are accepted.
func ParseGradient(r io.Reader, natoms int) (float64, *v3.Matrix, error) {
	scan := bufio.NewScanner(r)
	var energy float64
	found := false
	for scan.Scan() {
		line := scan.Text()
		if !strings.Contains(line, "cycle") {
			continue
		}
		fields := strings.Fields(line)
		for i, f := range fields {
			if f == "energy" && i+2 < len(fields) {
				e, err := parseFortranFloat(fields[i+2])
				if err != nil {
					return 0, nil, Error{"can't parse energy from cycle line: " + line, "gradient", "", []string{"ParseGradient"}}
				}
				energy = e
				found = true
				break
			}
		}
		if found {
			break
		}
	}
	if !found {
		return 0, nil, Error{"no cycle/energy line in gradient", "gradient", "", []string{"ParseGradient"}}
	}
	for i := 0; i < natoms; i++ { //the coordinates; we already know them
		if !scan.Scan() {
			return 0, nil, Error{"truncated gradient: missing coordinate lines", "gradient", "", []string{"ParseGradient"}}
		}
	}
	forces := v3.Zeros(natoms)
	for i := 0; i < natoms; i++ {
		if !scan.Scan() {
			return 0, nil, Error{"truncated gradient: missing gradient lines", "gradient", "", []string{"ParseGradient"}}
		}
		fields := strings.Fields(scan.Text())
		if len(fields) < 3 {
			return 0, nil, Error{fmt.Sprintf("malformed gradient line %q", scan.Text()), "gradient", "", []string{"ParseGradient"}}
		}
		for j := 0; j < 3; j++ {
			v, err := parseFortranFloat(fields[j])
			if err != nil {
				return 0, nil, Error{fmt.Sprintf("can't parse gradient component %q", fields[j]), "gradient", "", []string{"ParseGradient"}}
			}
			forces.Set(i, j, -v*neb.HBohr2EVA)
		}
	}
	return energy * neb.H2EV, forces, nil
}

func parseFortranFloat(s string) (float64, error) {
	s = strings.ReplaceAll(s, "D", "E")
	s = strings.ReplaceAll(s, "d", "e")
	return strconv.ParseFloat(s, 64)
}

//XTBForImages returns one XTB handle per band node, each with its own
//subdirectory node_0 ... node_{n-1} under dir, and configure applied
//to each. The first and last handles serve the fixed endpoints; with
//methods that don't need endpoint energies they can go unused.
func XTBForImages(dir string, atoms []neb.Atom, n int, configure func(*XTB)) ([]*XTB, error) {
	handles := make([]*XTB, n)
	for i := 0; i < n; i++ {
		h, err := NewXTB(filepath.Join(dir, fmt.Sprintf("node_%d", i)), atoms)
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

func isInString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

//errDecorate asserts that err implements neb.DecoratedError and
//decorates it with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(neb.DecoratedError)
	err2.Decorate(caller)
	return err2
}

//Error is the concrete error type of this package. It implements
//neb.DecoratedError.
type Error struct {
	message string
	program string
	dir     string
	deco    []string
}

func (err Error) Error() string {
	if err.dir != "" {
		return fmt.Sprintf("goneb/calc: %s (%s): %s", err.program, err.dir, err.message)
	}
	return fmt.Sprintf("goneb/calc: %s: %s", err.program, err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}
