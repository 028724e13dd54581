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

//Package neb implements the Nudged Elastic Band method for locating
//minimum-energy reaction paths between two molecular configurations.
//A Band is a chain of Images between two fixed endpoints; on each
//force call the per-image energies and forces are obtained from the
//images' calculators (in parallel, through a bounded worker pool),
//the local path tangents are estimated, the potential force of each
//interior image is split into parallel and perpendicular components,
//and a fictitious spring force keeps the images evenly spaced. With
//the climbing-image variant the highest image is driven to the exact
//saddle point. Several tangent/spring blends are available, mirroring
//the usual NEB method zoo (plain, improved-tangent, full-spring,
//spline and string).
//
//The expensive part, per-image energy/force evaluation, is delegated
//to external programs through the Calculator interface; see the calc
//subpackage. Optimizers live in the optimize subpackage, trajectory
//recording and path metrics in traj, and project orchestration with
//background (non-blocking) calculations in project.
package neb
