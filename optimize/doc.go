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

//Package optimize contains force-only geometry optimizers for
//chain-of-states systems. They work on the generalized force returned
//by the system, never on an energy: the blended band force is not the
//gradient of any potential, so line searches and energy-based trust
//regions are off the table. What remains are the methods that only
//need the force vector itself, FIRE and a curvature-free L-BFGS.
package optimize
