/*
 * doc.go, part of goneb.
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

//Package calc provides energy/force providers backed by external
//quantum chemistry programs. Each provider owns a private working
//directory, so a band can run one provider per image concurrently
//without the programs stepping on each other's scratch files.
//
//To use the xtb provider you need the xtb program, which must be
//obtained from Prof. Stefan Grimme's group. Please cite the xtb
//references if you use it.
package calc
