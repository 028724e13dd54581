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

//Package traj implements the nts ("NEB trajectory") format: a
//compressed, append-only record of a whole band optimization. Every
//optimizer iteration appends one frame per node, each frame carrying
//the node's energy and its geometry encoded as fixed-precision
//integers. The compression backend is selected from the last letter
//of the file name: 's' for zstd, 'z' for gzip, 'r' for flate, with
//zstd as the default (the canonical extension is ".nts").
//
//Reading a finished (or still growing) file yields a Result, which
//groups the frames back into iterations and answers the questions one
//asks of a band: barrier, reaction energy, highest node, and
//extraction of selected geometries back to XYZ.
package traj
