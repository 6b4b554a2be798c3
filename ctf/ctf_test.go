/*
 * ctf_test.go, part of goequil.
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

package ctf

import (
	"math"
	"path/filepath"
	"testing"

	equil "github.com/goequil/goequil"
)

var testFrames = [][]float64{
	{1.0, 0.0, 1e-20},
	{0.8, 0.1, 2.5e-3},
	{0.5, 0.25, 7.125e-2},
}

var testTimes = []float64{0, 0.5, 1.0}

func roundTrip(Te *testing.T, name string) {
	W, err := NewWriter(name, 3, map[string]string{"prec": "8", "system": "test"})
	if err != nil {
		Te.Fatal(err)
	}
	for i, fr := range testFrames {
		if err := W.WNext(testTimes[i], fr); err != nil {
			Te.Fatal(err)
		}
	}
	W.Close()

	R, header, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	if header["system"] != "test" {
		Te.Errorf("header lost: %v", header)
	}
	if R.Len() != 3 {
		Te.Errorf("frame length %d, want 3", R.Len())
	}
	got := make([]float64, 3)
	for i, fr := range testFrames {
		t, err := R.Next(got)
		if err != nil {
			Te.Fatal(err)
		}
		if t != testTimes[i] {
			Te.Errorf("frame %d time %v, want %v", i, t, testTimes[i])
		}
		for j, v := range fr {
			if math.Abs(got[j]-v) > math.Abs(v)*1e-7 {
				Te.Errorf("frame %d amount %d: %v, want %v", i, j, got[j], v)
			}
		}
	}
	_, err = R.Next(got)
	if err == nil {
		Te.Fatal("no error past the last frame")
	}
	if _, ok := err.(equil.LastFrameError); !ok {
		Te.Errorf("end of trajectory is not a LastFrameError: %v", err)
	}
	if R.Readable() {
		Te.Error("handle still readable after the last frame")
	}
}

func TestRoundTripZstd(Te *testing.T) {
	roundTrip(Te, filepath.Join(Te.TempDir(), "traj.ctf"))
}

func TestRoundTripGzip(Te *testing.T) {
	roundTrip(Te, filepath.Join(Te.TempDir(), "traj.ctf.gz"))
}

func TestRoundTripFlate(Te *testing.T) {
	roundTrip(Te, filepath.Join(Te.TempDir(), "traj.ctf.r"))
}

//a nil destination skips the frame but still validates it.
func TestSkipFrame(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "skip.ctf")
	W, err := NewWriter(name, 2, nil)
	if err != nil {
		Te.Fatal(err)
	}
	W.WNext(0, []float64{1, 2})
	W.WNext(1, []float64{3, 4})
	W.Close()
	R, header, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	if header != nil {
		Te.Errorf("unexpected header %v", header)
	}
	if _, err := R.Next(nil); err != nil {
		Te.Fatal(err)
	}
	got := make([]float64, 2)
	t, err := R.Next(got)
	if err != nil {
		Te.Fatal(err)
	}
	if t != 1 || got[0] != 3 || got[1] != 4 {
		Te.Errorf("second frame t=%v amounts=%v, want t=1 amounts=[3 4]", t, got)
	}
	R.Close()
}

func TestWriteErrors(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "err.ctf")
	W, err := NewWriter(name, 2, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if err := W.WNext(0, []float64{1}); err == nil {
		Te.Error("wrong frame length accepted")
	}
	if err := W.WNext(0, nil); err == nil {
		Te.Error("nil amounts accepted")
	}
	W.Close()
	err = W.WNext(0, []float64{1, 2})
	if err == nil {
		Te.Fatal("write after Close accepted")
	}
	terr, ok := err.(equil.TrajError)
	if !ok {
		Te.Errorf("error does not implement TrajError: %v", err)
	} else if terr.FileName() != name || !terr.Critical() {
		Te.Errorf("bad error metadata: file %s critical %v", terr.FileName(), terr.Critical())
	}
}

//a header with a malformed prec must be rejected, and the rejection
//must not leave the just-created file open: reopening it for writing
//afterwards has to work.
func TestWriteBadPrecision(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "prec.ctf")
	_, err := NewWriter(name, 2, map[string]string{"prec": "eight"})
	if err == nil {
		Te.Fatal("malformed precision accepted")
	}
	if terr, ok := err.(equil.TrajError); !ok || !terr.Critical() {
		Te.Errorf("bad error for malformed precision: %v", err)
	}
	W, err := NewWriter(name, 2, map[string]string{"prec": "8"})
	if err != nil {
		Te.Fatal(err)
	}
	if err := W.WNext(0, []float64{1, 2}); err != nil {
		Te.Fatal(err)
	}
	W.Close()
}

func TestWriteState(Te *testing.T) {
	var ed equil.Editor
	ed.AddPhase("Gas",
		&equil.Species{Name: "A", Formula: map[string]float64{"X": 1}, G0: equil.ConstG0(0)},
		&equil.Species{Name: "B", Formula: map[string]float64{"X": 1}, G0: equil.ConstG0(0)},
	)
	sys, err := ed.Build()
	if err != nil {
		Te.Fatal(err)
	}
	state, _ := equil.NewChemicalState(sys)
	state.SetSpeciesAmountsVec([]float64{0.25, 0.75})
	name := filepath.Join(Te.TempDir(), "state.ctf")
	W, err := NewWriter(name, sys.NumSpecies(), nil)
	if err != nil {
		Te.Fatal(err)
	}
	if err := W.WNextState(2.5, state); err != nil {
		Te.Fatal(err)
	}
	W.Close()
	R, _, err := New(name)
	if err != nil {
		Te.Fatal(err)
	}
	got := make([]float64, 2)
	t, err := R.Next(got)
	if err != nil {
		Te.Fatal(err)
	}
	if t != 2.5 || math.Abs(got[0]-0.25) > 1e-7 || math.Abs(got[1]-0.75) > 1e-7 {
		Te.Errorf("state frame t=%v amounts=%v", t, got)
	}
	R.Close()
}
