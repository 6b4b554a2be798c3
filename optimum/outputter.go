/*
 * outputter.go, part of goequil.
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

package optimum

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Outputter formats iteration traces as an aligned table: a header with the
// column names followed by one row per iteration. It is purely
// observational. With Active false every method is a no-op, so callers do
// not need to guard their trace code.
type Outputter struct {
	w       io.Writer
	opts    OutputOptions
	entries []string
	values  []string
}

// NewOutputter returns an outputter configured by opts, writing to
// opts.Writer or to the standard output if that is nil.
func NewOutputter(opts OutputOptions) *Outputter {
	o := new(Outputter)
	o.opts = opts
	if o.opts.Width <= 0 {
		o.opts.Width = 15
	}
	if o.opts.Precision <= 0 {
		o.opts.Precision = 6
	}
	o.w = opts.Writer
	if o.w == nil {
		o.w = os.Stdout
	}
	return o
}

// AddEntry appends a column to the table.
func (o *Outputter) AddEntry(name string) {
	if !o.opts.Active {
		return
	}
	o.entries = append(o.entries, name)
}

// AddEntries appends n columns named names[i], falling back to prefix[i]
// when no names are given.
func (o *Outputter) AddEntries(prefix string, n int, names []string) {
	if !o.opts.Active {
		return
	}
	for i := 0; i < n; i++ {
		if i < len(names) {
			o.entries = append(o.entries, names[i])
		} else {
			o.entries = append(o.entries, fmt.Sprintf("%s[%d]", prefix, i))
		}
	}
}

// AddValue appends a float value to the current row.
func (o *Outputter) AddValue(val float64) {
	if !o.opts.Active {
		return
	}
	if o.opts.Fixed {
		o.values = append(o.values, fmt.Sprintf("%*.*f", o.opts.Width, o.opts.Precision, val))
	} else {
		o.values = append(o.values, fmt.Sprintf("%*.*e", o.opts.Width, o.opts.Precision, val))
	}
}

// AddValues appends every component of vals to the current row.
func (o *Outputter) AddValues(vals []float64) {
	for _, v := range vals {
		o.AddValue(v)
	}
}

// AddValueInt appends an integer value to the current row.
func (o *Outputter) AddValueInt(val int) {
	if !o.opts.Active {
		return
	}
	o.values = append(o.values, fmt.Sprintf("%*d", o.opts.Width, val))
}

// AddBlank appends a placeholder for a value not available yet.
func (o *Outputter) AddBlank() {
	if !o.opts.Active {
		return
	}
	o.values = append(o.values, fmt.Sprintf("%*s", o.opts.Width, "---"))
}

// OutputHeader writes the bar-delimited column-name row.
func (o *Outputter) OutputHeader() {
	if !o.opts.Active {
		return
	}
	bar := strings.Repeat("=", o.opts.Width*len(o.entries))
	fmt.Fprintln(o.w, bar)
	for _, e := range o.entries {
		fmt.Fprintf(o.w, "%*s", o.opts.Width, e)
	}
	fmt.Fprintln(o.w)
	fmt.Fprintln(o.w, bar)
}

// OutputState writes the current row and resets it.
func (o *Outputter) OutputState() {
	if !o.opts.Active {
		return
	}
	for _, v := range o.values {
		fmt.Fprint(o.w, v)
	}
	fmt.Fprintln(o.w)
	o.values = o.values[:0]
}
