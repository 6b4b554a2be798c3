/*
 * eqplot.go, part of goequil.
 *
 * Copyright 2021 The goEquil developers
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
 */

//Package eqplot produces plots of kinetic trajectories and of solver
//convergence traces.
package eqplot

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//Kinetics plots the amount of each species against time, one line per
//species, and saves the result as a png. amounts holds one row per
//frame, with one column per species, matching names. The extension is
//added to plotname.
func Kinetics(times []float64, amounts [][]float64, names []string, title, plotname string) error {
	if times == nil || amounts == nil {
		return fmt.Errorf("eqplot.Kinetics: given nil data")
	}
	if len(times) != len(amounts) {
		return fmt.Errorf("eqplot.Kinetics: %d times for %d frames", len(times), len(amounts))
	}
	nspecies := len(amounts[0])
	if names != nil && len(names) != nspecies {
		return fmt.Errorf("eqplot.Kinetics: %d names for %d species", len(names), nspecies)
	}
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "t / s"
	p.Y.Label.Text = "n / mol"
	p.Add(plotter.NewGrid())
	for j := 0; j < nspecies; j++ {
		pts := make(plotter.XYs, len(times))
		for i, t := range times {
			pts[i].X = t
			pts[i].Y = amounts[i][j]
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		r, g, b := colors(j, nspecies)
		l.LineStyle.Color = color.RGBA{R: r, G: g, B: b, A: 255}
		p.Add(l)
		if names != nil {
			p.Legend.Add(names[j], l)
		}
	}
	return p.Save(5*vg.Inch, 5*vg.Inch, fmt.Sprintf("%s.png", plotname))
}

//Convergence plots a solver error trace against the iteration number on
//a logarithmic vertical axis and saves the result as a png. Zero or
//negative entries are floored to keep the log scale valid.
func Convergence(errors []float64, title, plotname string) error {
	if errors == nil {
		return fmt.Errorf("eqplot.Convergence: given nil data")
	}
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "error"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())
	pts := make(plotter.XYs, len(errors))
	for i, e := range errors {
		if e <= 0 || math.IsNaN(e) {
			e = 1e-16
		}
		pts[i].X = float64(i + 1)
		pts[i].Y = e
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	r, g, b := colors(0, 1)
	l.LineStyle.Color = color.RGBA{R: r, G: g, B: b, A: 255}
	p.Add(l)
	return p.Save(4*vg.Inch, 4*vg.Inch, fmt.Sprintf("%s.png", plotname))
}

//takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func iHVS2RGB(h, v, s float64) (uint8, uint8, uint8) {
	var i, f, pp, q, t float64
	var r, g, b float64
	maxcolor := 255.0
	conversion := maxcolor * v
	if s == 0.0 {
		return uint8(conversion), uint8(conversion), uint8(conversion)
	}
	h = h / 60
	i = math.Floor(h)
	f = h - i
	pp = v * (1 - s)
	q = v * (1 - s*f)
	t = v * (1 - s*(1-f))
	switch int(i) {
	case 0:
		r = v
		g = t
		b = pp
	case 1:
		r = q
		g = v
		b = pp
	case 2:
		r = pp
		g = v
		b = t
	case 3:
		r = pp
		g = q
		b = v
	case 4:
		r = t
		g = pp
		b = v
	default: //case 5
		r = v
		g = pp
		b = q
	}
	r = r * conversion
	g = g * conversion
	b = b * conversion
	return uint8(r), uint8(g), uint8(b)
}

//spreads the hues of the lines over the color circle.
func colors(key, steps int) (r, g, b uint8) {
	norm := 260.0 / float64(steps)
	hp := float64(key)*norm + 20.0
	var h float64
	if hp < 55 {
		h = hp - 20.0
	} else {
		h = hp + 20.0
	}
	return iHVS2RGB(h, 1.0, 1.0)
}
