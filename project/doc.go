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

//Package project orchestrates whole reaction-path studies: a
//directory holding a JSON configuration, the endpoint and guess-path
//geometries, and a numbered series of band optimizations, each seeded
//from the last iteration of the previous one. The Supervisor runs one
//unit of work at a time in the background, with polling and forceful
//cancellation; callers such as interactive frontends never block on a
//running calculation.
package project
