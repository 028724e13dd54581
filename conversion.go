/*
 * conversion.go, part of goneb.
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

import "strings"

//This provides useful conversion factors and other constants.
//Energies are kept in eV throughout the library; distances in A.

//Conversions
const (
	EV2Kcal = 23.06031    //eV to kcal/mol
	EV2KJ   = 96.48534    //eV to kJ/mol
	EV2H    = 3.674932e-2 //eV to Hartree
	H2EV    = 27.211386   //Hartree to eV
	A2Bohr  = 1.889725989
	Bohr2A  = 1 / 1.889725989
	//Hartree/Bohr to eV/A, for gradients from QM programs.
	HBohr2EVA = H2EV * A2Bohr
)

//EnergyConversion returns the multiplicative factor from eV to the
//given unit. The unit is matched case-insensitively; Hartree also
//goes by "hartrees", "au" and "a.u.". An unrecognized unit is a
//configuration error.
func EnergyConversion(unit string) (float64, error) {
	switch strings.ToLower(unit) {
	case "kcal/mol":
		return EV2Kcal, nil
	case "kj/mol":
		return EV2KJ, nil
	case "hartree", "hartrees", "au", "a.u.":
		return EV2H, nil
	case "ev":
		return 1.0, nil
	}
	return 0, NewError(ErrUnknownUnit+": "+unit, -1)
}

//symbols indexed by atomic number; index 0 is the "bq" ghost atom.
var symbols = []string{"bq",
	"H", "He", "Li", "Be", "B", "C", "N", "O", "F", "Ne", "Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca", "Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn", "Ga", "Ge", "As", "Se", "Br",
	"Kr", "Rb", "Sr", "Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd", "In", "Sn", "Sb",
	"Te", "I", "Xe", "Cs", "Ba", "La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy", "Ho",
	"Er", "Tm", "Yb", "Lu", "Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg", "Tl", "Pb", "Bi", "Po",
	"At", "Rn", "Fr", "Ra", "Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm", "Bk", "Cf", "Es", "Fm",
	"Md", "No", "Lr", "Rf", "Db", "Sg", "Bh", "Hs", "Mt", "Ds", "Rg", "Cn"}

//SymbolFromZ returns the element symbol for the atomic number z, or
//an empty string if z is out of range.
func SymbolFromZ(z int) string {
	if z < 0 || z >= len(symbols) {
		return ""
	}
	return symbols[z]
}

//ZFromSymbol returns the atomic number for the given element symbol
//(case-sensitive on the second letter, as usual), or -1 if unknown.
func ZFromSymbol(symbol string) int {
	for i, v := range symbols {
		if v == symbol {
			return i
		}
	}
	return -1
}
