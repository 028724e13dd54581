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

//Package v3 implements a set of vectors in 3D space, and the operations
//goneb needs on them. A v3.Matrix is a thin wrapper around a gonum
//mat.Dense with 3 columns; each row is the cartesian position of one
//atom, or one per-atom force. All the NEB linear algebra (tangents,
//projections, spring forces) is expressed on these matrices.
package v3
