/*
 * profile.go, part of goneb.
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

//Package nebplot draws energy profiles from band trajectories.
package nebplot

import (
	"fmt"
	"image/color"

	neb "goneb"
	"goneb/traj"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

func basicProfilePlot(title, unit string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Node"
	p.Y.Label.Text = fmt.Sprintf("Relative energy (%s)", unit)
	p.Add(plotter.NewGrid())
	return p
}

//profileXYs returns the energies of one iteration relative to its
//first node, converted to unit. Fails if any energy is unknown.
func profileXYs(res *traj.Result, iteration int, fac float64) (plotter.XYs, error) {
	if ok, err := res.IsEnergyCompleted(iteration); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("goneb/nebplot: iteration %d has unknown energies; complete them before plotting", iteration)
	}
	if iteration < 0 {
		iteration += res.NIterations()
	}
	e := res.Energies[iteration]
	pts := make(plotter.XYs, len(e))
	for i, v := range e {
		pts[i].X = float64(i)
		pts[i].Y = (v - e[0]) * fac
	}
	return pts, nil
}

//EnergyProfile plots the energy profile of one iteration of the band
//(-1 for the last) to the PNG file plotname.png, energies relative to
//the first node, in the given unit.
func EnergyProfile(res *traj.Result, iteration int, unit, plotname string) error {
	fac, err := neb.EnergyConversion(unit)
	if err != nil {
		return err
	}
	pts, err := profileXYs(res, iteration, fac)
	if err != nil {
		return err
	}
	p := basicProfilePlot("Reaction path energy profile", unit)
	l, s, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	l.Color = color.RGBA{B: 255, A: 255}
	s.GlyphStyle.Color = color.RGBA{B: 255, A: 255}
	p.Add(l, s)
	return p.Save(5*vg.Inch, 4*vg.Inch, fmt.Sprintf("%s.png", plotname))
}

//EnergyProfileAll overlays the energy profiles of every iteration,
//early iterations faded out and the last one in full color, showing
//how the band relaxed. Written to the PNG file plotname.png.
func EnergyProfileAll(res *traj.Result, unit, plotname string) error {
	fac, err := neb.EnergyConversion(unit)
	if err != nil {
		return err
	}
	p := basicProfilePlot("Band relaxation", unit)
	nit := res.NIterations()
	for it := 0; it < nit; it++ {
		pts, err := profileXYs(res, it, fac)
		if err != nil {
			return err
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		//fade older iterations towards white.
		fade := uint8(200 - 200*(it+1)/nit)
		l.Color = color.RGBA{R: fade, G: fade, B: 255, A: 255}
		p.Add(l)
	}
	return p.Save(5*vg.Inch, 4*vg.Inch, fmt.Sprintf("%s.png", plotname))
}
