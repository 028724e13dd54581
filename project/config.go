/*
 * config.go, part of goneb.
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
	"encoding/json"
	"os"
	"runtime"
)

//Config is the JSON-persisted project configuration. The zero value
//is not useful; start from DefaultConfig.
type Config struct {
	Name           string  `json:"name"`
	NumImages      int     `json:"num_images"`
	K              float64 `json:"neb_k"`
	Climb          bool    `json:"neb_climb"`
	Method         string  `json:"neb_method"`
	Optimizer      string  `json:"neb_optimizer"`
	Fmax           float64 `json:"neb_fmax"`
	Steps          int     `json:"neb_steps"`
	Parallel       int     `json:"neb_parallel"`
	RemoveRotTrans bool    `json:"neb_remove_rottrans"`
	Unit           string  `json:"energy_unit"`
	CalcType       string  `json:"calculator_type"`
	XTBCommand     string  `json:"xtb_command"`
	XTBCharge      int     `json:"xtb_charge"`
	XTBMulti       int     `json:"xtb_multi"`
	XTBMethod      string  `json:"xtb_method"`
	XTBSolvent     string  `json:"xtb_solvent"`
	G16Command     string  `json:"g16_command"`
	G16Charge      int     `json:"g16_charge"`
	G16Multi       int     `json:"g16_multi"`
	G16Method      string  `json:"g16_method"`
	G16NProc       int     `json:"g16_nproc"`
	G16Memory      string  `json:"g16_memory"`
}

//DefaultConfig returns the usual starting point for a new project.
func DefaultConfig(name string) *Config {
	return &Config{
		Name:           name,
		NumImages:      10,
		K:              0.1,
		Climb:          true,
		Method:         "plain",
		Optimizer:      "fire",
		Fmax:           0.05,
		Steps:          1000,
		Parallel:       runtime.NumCPU(),
		RemoveRotTrans: true,
		Unit:           "kcal/mol",
		CalcType:       "xtb",
		XTBCommand:     "xtb",
		XTBMulti:       1,
		XTBMethod:      "gfn2",
		G16Command:     "g16",
		G16Multi:       1,
		G16Method:      "b3lyp/6-31g(d)",
		G16NProc:       1,
		G16Memory:      "1GB",
	}
}

//ReadConfig loads a Config from the JSON file name. Missing keys keep
//the defaults, so old configuration files stay readable as knobs are
//added.
func ReadConfig(name string) (*Config, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	c := DefaultConfig("")
	if err := json.Unmarshal(b, c); err != nil {
		return nil, Error{"malformed configuration: " + err.Error(), name, nil}
	}
	return c, nil
}

//Save writes the configuration to the JSON file name, indented for
//hand editing.
func (C *Config) Save(name string) error {
	b, err := json.MarshalIndent(C, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(name, append(b, '\n'), 0644)
}
