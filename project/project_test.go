/*
 * project_test.go, part of goneb.
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
	"os"
	"path/filepath"
	"testing"

	neb "goneb"
)

func TestConfigRoundTrip(Te *testing.T) {
	dir := Te.TempDir()
	c := DefaultConfig("diels_alder")
	c.Method = "improvedtangent"
	c.Fmax = 0.02
	c.XTBSolvent = "h2o"
	name := filepath.Join(dir, "config.json")
	if err := c.Save(name); err != nil {
		Te.Fatal(err)
	}
	c2, err := ReadConfig(name)
	if err != nil {
		Te.Fatal(err)
	}
	if c2.Name != "diels_alder" || c2.Method != "improvedtangent" || c2.Fmax != 0.02 || c2.XTBSolvent != "h2o" {
		Te.Error("configuration lost in the round trip:", c2)
	}
	//missing keys keep their defaults.
	if err := os.WriteFile(name, []byte(`{"name":"minimal"}`+"\n"), 0644); err != nil {
		Te.Fatal(err)
	}
	c3, err := ReadConfig(name)
	if err != nil {
		Te.Fatal(err)
	}
	if c3.K != 0.1 || c3.Optimizer != "fire" || c3.Steps != 1000 {
		Te.Error("defaults not applied to a minimal configuration:", c3)
	}
}

func TestCalculatorSelection(Te *testing.T) {
	dir := filepath.Join(Te.TempDir(), "proj")
	P, err := New(dir, DefaultConfig("oxidation"))
	if err != nil {
		Te.Fatal(err)
	}
	atoms := []neb.Atom{{Symbol: "O"}, {Symbol: "H"}}
	for _, ct := range []string{"xtb", "g16"} {
		P.Conf.CalcType = ct
		calcs, err := P.newCalculators(3, "sel_"+ct, atoms)
		if err != nil {
			Te.Fatal(ct, err)
		}
		if len(calcs) != 3 {
			Te.Errorf("%s: want 3 calculators, got %d", ct, len(calcs))
		}
	}
	P.Conf.CalcType = "mopac"
	if _, err := P.newCalculators(3, "sel_bogus", atoms); err == nil {
		Te.Error("unknown calculator type accepted")
	}
}

func TestProjectLayout(Te *testing.T) {
	dir := filepath.Join(Te.TempDir(), "proj")
	P, err := New(dir, DefaultConfig("sn2"))
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := os.Stat(P.ConfigFile()); err != nil {
		Te.Error("New did not persist the configuration")
	}
	if n := P.CurrentFinalNEBNumber(); n != -1 {
		Te.Errorf("fresh project claims run %d exists", n)
	}
	if _, err := P.GetResult(-1); err == nil {
		Te.Error("GetResult on a fresh project should fail")
	}
	//fake two finished runs.
	for i := 0; i < 2; i++ {
		if err := os.WriteFile(P.PathFile(i), nil, 0644); err != nil {
			Te.Fatal(err)
		}
	}
	if n := P.CurrentFinalNEBNumber(); n != 1 {
		Te.Errorf("want run number 1, got %d", n)
	}
	P2, err := Open(dir)
	if err != nil {
		Te.Fatal(err)
	}
	if P2.Conf.Name != "sn2" {
		Te.Error("Open lost the configuration")
	}
}
