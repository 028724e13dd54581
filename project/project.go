/*
 * project.go, part of goneb.
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
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	neb "goneb"
	"goneb/calc"
	"goneb/optimize"
	"goneb/traj"
	v3 "goneb/v3"
)

//Project is one reaction-path study: a directory with a JSON
//configuration, endpoint and guess-path geometries, and a numbered
//series of band optimizations.
type Project struct {
	Dir  string
	Conf *Config
}

//New creates a project in dir (created if needed) with the given
//configuration, and persists the configuration there.
func New(dir string, conf *Config) (*Project, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	P := &Project{Dir: dir, Conf: conf}
	if err := conf.Save(P.ConfigFile()); err != nil {
		return nil, err
	}
	return P, nil
}

//Open loads an existing project from dir.
func Open(dir string) (*Project, error) {
	P := &Project{Dir: dir}
	var err error
	P.Conf, err = ReadConfig(P.ConfigFile())
	if err != nil {
		return nil, err
	}
	return P, nil
}

//SaveConfig persists the current configuration.
func (P *Project) SaveConfig() error {
	return P.Conf.Save(P.ConfigFile())
}

//The file layout of a project directory.

func (P *Project) ConfigFile() string { return filepath.Join(P.Dir, "config.json") }

//InitFile and FinalFile are the endpoint geometries, single-frame XYZ.
func (P *Project) InitFile() string  { return filepath.Join(P.Dir, P.Conf.Name+"_init.xyz") }
func (P *Project) FinalFile() string { return filepath.Join(P.Dir, P.Conf.Name+"_final.xyz") }

//GuessPathFile is the initial path, a multi-frame XYZ from reactant
//to product. Generating it is up to the user or an external tool.
func (P *Project) GuessPathFile() string {
	return filepath.Join(P.Dir, P.Conf.Name+"_path_guess.xyz")
}

//PathFile is the trajectory of the nth band optimization.
func (P *Project) PathFile(n int) string {
	return filepath.Join(P.Dir, fmt.Sprintf("%s_neb_path_%d.ntz", P.Conf.Name, n))
}

//FinalXYZFile is the XYZ rendition of the last iteration of the nth
//band optimization.
func (P *Project) FinalXYZFile(n int) string {
	return filepath.Join(P.Dir, fmt.Sprintf("%s_neb_final_%d.xyz", P.Conf.Name, n))
}

//PrecalcFile is the one-iteration trajectory written by RunPrecalc.
func (P *Project) PrecalcFile() string {
	return filepath.Join(P.Dir, P.Conf.Name+"_precalc.ntz")
}

func (P *Project) endpointsFile() string {
	return filepath.Join(P.Dir, P.Conf.Name+"_endpoints.json")
}

func (P *Project) scratchDir(sub string) string {
	return filepath.Join(P.Dir, "scratch", sub)
}

//CurrentFinalNEBNumber returns the number of the latest finished or
//started band optimization, -1 if there is none yet.
func (P *Project) CurrentFinalNEBNumber() int {
	n := -1
	for {
		if _, err := os.Stat(P.PathFile(n + 1)); err != nil {
			return n
		}
		n++
	}
}

//LoadInitStructure reads the reactant endpoint geometry.
func (P *Project) LoadInitStructure() ([]neb.Atom, *v3.Matrix, error) {
	return loadSingle(P.InitFile())
}

//LoadFinalStructure reads the product endpoint geometry.
func (P *Project) LoadFinalStructure() ([]neb.Atom, *v3.Matrix, error) {
	return loadSingle(P.FinalFile())
}

func loadSingle(name string) ([]neb.Atom, *v3.Matrix, error) {
	atoms, frames, err := neb.XYZFileRead(name)
	if err != nil {
		return nil, nil, err
	}
	return atoms, frames[0], nil
}

//endpointEnergies is the persisted record of the endpoint
//single-point results, in eV.
type endpointEnergies struct {
	Init  *float64 `json:"init_energy,omitempty"`
	Final *float64 `json:"final_energy,omitempty"`
}

func (P *Project) readEndpoints() *endpointEnergies {
	e := new(endpointEnergies)
	b, err := os.ReadFile(P.endpointsFile())
	if err != nil {
		return e
	}
	if err := json.Unmarshal(b, e); err != nil {
		log.Printf("Malformed endpoint energy record %s, ignoring it", P.endpointsFile())
		return new(endpointEnergies)
	}
	return e
}

func (P *Project) writeEndpoints(e *endpointEnergies) error {
	b, err := json.MarshalIndent(e, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(P.endpointsFile(), append(b, '\n'), 0644)
}

//newCalculators builds one calculator per node under the given
//scratch subdirectory, according to the configured calculator type.
func (P *Project) newCalculators(n int, sub string, atoms []neb.Atom) ([]neb.Calculator, error) {
	switch P.Conf.CalcType {
	case "xtb":
		handles, err := calc.XTBForImages(P.scratchDir(sub), atoms, n, func(h *calc.XTB) {
			h.SetCommand(P.Conf.XTBCommand)
			h.SetCharge(P.Conf.XTBCharge)
			h.SetMulti(P.Conf.XTBMulti)
			h.SetMethod(P.Conf.XTBMethod)
			h.SetSolvent(P.Conf.XTBSolvent)
		})
		if err != nil {
			return nil, err
		}
		calcs := make([]neb.Calculator, n)
		for i, h := range handles {
			calcs[i] = h
		}
		return calcs, nil
	case "g16":
		handles, err := calc.G16ForImages(P.scratchDir(sub), atoms, n, func(h *calc.G16) {
			h.SetCommand(P.Conf.G16Command)
			h.SetCharge(P.Conf.G16Charge)
			h.SetMulti(P.Conf.G16Multi)
			h.SetMethod(P.Conf.G16Method)
			h.SetnCPU(P.Conf.G16NProc)
			h.SetMemory(P.Conf.G16Memory)
		})
		if err != nil {
			return nil, err
		}
		calcs := make([]neb.Calculator, n)
		for i, h := range handles {
			calcs[i] = h
		}
		return calcs, nil
	}
	return nil, Error{fmt.Sprintf("unknown calculator type %q", P.Conf.CalcType), P.ConfigFile(), nil}
}

//initialPath returns the topology and geometries the next band starts
//from: the last iteration of run prev when prev >= 0, the guess path
//otherwise.
func (P *Project) initialPath(prev int) ([]neb.Atom, []*v3.Matrix, error) {
	if prev >= 0 {
		res, err := P.GetResult(prev)
		if err != nil {
			return nil, nil, err
		}
		coords := make([]*v3.Matrix, res.NNodes())
		for i := range coords {
			c, err := res.Geometry(-1, i)
			if err != nil {
				return nil, nil, err
			}
			coords[i] = v3.CopyOf(c)
		}
		return res.Atoms, coords, nil
	}
	atoms, frames, err := neb.XYZFileRead(P.GuessPathFile())
	if err != nil {
		return nil, nil, err
	}
	if len(frames) < 3 {
		return nil, nil, Error{fmt.Sprintf("guess path has %d frames, need at least 3", len(frames)), P.GuessPathFile(), nil}
	}
	if P.Conf.NumImages != 0 && len(frames) != P.Conf.NumImages {
		log.Printf("Guess path has %d frames, configuration says %d images; using the path as given", len(frames), P.Conf.NumImages)
	}
	return atoms, frames, nil
}

//RunNEB runs the next numbered band optimization, seeded from the
//last iteration of run prev (or from the guess path, with a negative
//prev). Every iteration is appended to the run's trajectory file as
//it happens, so a cancelled run remains readable up to its last
//complete iteration. It returns the run number, the optimizer steps
//taken and whether the band converged to the configured fmax.
func (P *Project) RunNEB(ctx context.Context, prev int) (int, int, bool, error) {
	n := P.CurrentFinalNEBNumber() + 1
	atoms, coords, err := P.initialPath(prev)
	if err != nil {
		return n, 0, false, err
	}
	calcs, err := P.newCalculators(len(coords), fmt.Sprintf("run_%d", n), atoms)
	if err != nil {
		return n, 0, false, err
	}
	images := make([]*neb.Image, len(coords))
	for i := range coords {
		images[i] = neb.NewImage(coords[i], calcs[i])
	}
	//endpoints never move, so previously computed endpoint energies
	//are reused instead of recomputed.
	eps := P.readEndpoints()
	if eps.Init != nil {
		images[0].Energy = *eps.Init
	}
	if eps.Final != nil {
		images[len(images)-1].Energy = *eps.Final
	}
	opts := neb.DefaultOptions()
	opts.K = P.Conf.K
	opts.Climb = P.Conf.Climb
	opts.Workers = P.Conf.Parallel
	opts.RemoveRotTrans = P.Conf.RemoveRotTrans
	opts.Method, err = neb.MethodByName(P.Conf.Method)
	if err != nil {
		return n, 0, false, err
	}
	band, err := neb.NewBand(atoms, images, opts)
	if err != nil {
		return n, 0, false, err
	}
	opt, err := optimize.New(P.Conf.Optimizer)
	if err != nil {
		return n, 0, false, err
	}
	w, err := traj.NewWriter(P.PathFile(n), atoms, len(images), map[string]string{
		"project": P.Conf.Name,
		"method":  P.Conf.Method,
		"k":       fmt.Sprintf("%g", P.Conf.K),
	})
	if err != nil {
		return n, 0, false, err
	}
	defer w.Close()
	opt.Attach(func(step int, fmax float64) error {
		log.Printf("NEB %s run %d step %d fmax %.5f", P.Conf.Name, n, step, fmax)
		snapc := make([]*v3.Matrix, len(images))
		for i, im := range images {
			snapc[i] = im.Coords
		}
		return w.WSnapshot(band.Energies(), snapc)
	})
	steps, conv, err := opt.Run(ctx, band, P.Conf.Fmax, P.Conf.Steps)
	if err != nil {
		return n, steps, false, err
	}
	w.Close() //flush before reading the result back
	res, err := P.GetResult(n)
	if err != nil {
		return n, steps, conv, err
	}
	if err := res.SaveXYZ(P.FinalXYZFile(n), P.Conf.Unit, nil, nil); err != nil {
		return n, steps, conv, err
	}
	return n, steps, conv, nil
}

//GetResult loads the trajectory of the numbered band optimization (-1
//for the latest), backfilling endpoint energies from the recorded
//single-point runs where the trajectory has them as unknown.
func (P *Project) GetResult(number int) (*traj.Result, error) {
	if number < 0 {
		number = P.CurrentFinalNEBNumber()
		if number < 0 {
			return nil, Error{"no band optimization has run yet", P.Dir, nil}
		}
	}
	res, err := traj.Read(P.PathFile(number))
	if err != nil {
		return nil, err
	}
	eps := P.readEndpoints()
	if eps.Init != nil && math.IsNaN(res.Energies[0][0]) {
		if err := res.CompleteEnergy(0, *eps.Init); err != nil {
			return nil, err
		}
	}
	if eps.Final != nil && math.IsNaN(res.Energies[0][res.NNodes()-1]) {
		if err := res.CompleteEnergy(-1, *eps.Final); err != nil {
			return nil, err
		}
	}
	return res, nil
}

//RunSinglePoint computes and records the energy of one endpoint,
//which is "init" or "final". The recorded energies are picked up by
//GetResult and by later band runs.
func (P *Project) RunSinglePoint(ctx context.Context, which string) (float64, error) {
	var atoms []neb.Atom
	var coords *v3.Matrix
	var err error
	switch which {
	case "init":
		atoms, coords, err = P.LoadInitStructure()
	case "final":
		atoms, coords, err = P.LoadFinalStructure()
	default:
		return 0, Error{fmt.Sprintf("unknown endpoint %q, want \"init\" or \"final\"", which), P.Dir, nil}
	}
	if err != nil {
		return 0, err
	}
	calcs, err := P.newCalculators(1, "sp_"+which, atoms)
	if err != nil {
		return 0, err
	}
	energy, _, err := calcs[0].EnergyForces(ctx, coords)
	if err != nil {
		return 0, err
	}
	eps := P.readEndpoints()
	if which == "init" {
		eps.Init = &energy
	} else {
		eps.Final = &energy
	}
	return energy, P.writeEndpoints(eps)
}

//RunPrecalc evaluates every node of the guess path as independent
//single points, through the same worker pool a band run uses, and
//writes the result as a one-iteration trajectory. Useful to sanity
//check a guess path (and warm any calculator caches) before
//committing to a full optimization.
func (P *Project) RunPrecalc(ctx context.Context) error {
	atoms, frames, err := neb.XYZFileRead(P.GuessPathFile())
	if err != nil {
		return err
	}
	calcs, err := P.newCalculators(len(frames), "precalc", atoms)
	if err != nil {
		return err
	}
	images := make([]*neb.Image, len(frames))
	which := make([]int, len(frames))
	for i := range frames {
		images[i] = neb.NewImage(frames[i], calcs[i])
		which[i] = i
	}
	if err := neb.EvaluateImages(ctx, images, which, P.Conf.Parallel); err != nil {
		return err
	}
	w, err := traj.NewWriter(P.PrecalcFile(), atoms, len(images), map[string]string{"project": P.Conf.Name, "kind": "precalc"})
	if err != nil {
		return err
	}
	defer w.Close()
	energies := make([]float64, len(images))
	coords := make([]*v3.Matrix, len(images))
	for i, im := range images {
		energies[i] = im.Energy
		coords[i] = im.Coords
	}
	return w.WSnapshot(energies, coords)
}

//Error is the concrete error type of this package. It implements
//neb.DecoratedError.
type Error struct {
	message string
	file    string
	deco    []string
}

func (err Error) Error() string {
	if err.file != "" {
		return fmt.Sprintf("goneb/project: %s: %s", err.file, err.message)
	}
	return fmt.Sprintf("goneb/project: %s", err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}
