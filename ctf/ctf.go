/*
 * ctf.go, part of goequil.
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

//Package ctf implements a compressed, text-based trajectory format for
//chemical compositions. Each frame holds the species amounts at one
//point in time, one amount per line, terminated by a '*' line carrying
//the time stamp. A header of key=value lines precedes the frames, closed
//by a '** N' line with the number of species. The compression backend
//is selected from the last letter of the file name: 'z' for gzip, 'r'
//for raw deflate, anything else for zstd.
package ctf

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	equil "github.com/goequil/goequil"
)

//Write!
type CtfW struct {
	f         *os.File
	h         io.WriteCloser
	nspecies  int
	filename  string
	writeable bool
	prec      int
}

//NewWriter creates a composition trajectory with nspecies amounts per
//frame. The header map, if non-nil, is written as key=value lines; a
//"prec" key sets the number of significant digits kept per amount.
func NewWriter(name string, nspecies int, header map[string]string, compressionLevel ...int) (*CtfW, error) {
	level := 9
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	W := new(CtfW)
	var err error
	W.f, err = os.Create(name)
	if err != nil {
		return nil, err
	}
	W.h, err = newCompressor(W.f, name, level)
	if err != nil {
		W.f.Close()
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"NewWriter"}, true}
	}
	W.nspecies = nspecies
	W.filename = name
	W.writeable = true
	W.prec = 6
	if header != nil {
		if p, ok := header["prec"]; ok {
			prec, err := strconv.Atoi(p)
			if err != nil {
				W.h.Close()
				W.f.Close()
				return nil, Error{"invalid precision in header: " + p, name, []string{"NewWriter"}, true}
			}
			W.prec = prec
		}
		for k, v := range header {
			fmt.Fprintf(W.h, "%s=%v\n", k, v)
		}
	}
	fmt.Fprintf(W.h, "** %d\n", W.nspecies)
	return W, nil
}

func newCompressor(f io.Writer, name string, level int) (io.WriteCloser, error) {
	switch strings.ToLower(name)[len(name)-1] {
	case 'z':
		return gzip.NewWriterLevel(f, level)
	case 'r':
		return flate.NewWriter(f, level)
	default:
		return zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
}

//WNext writes one frame: the species amounts followed by the terminator
//line with the time stamp.
func (W *CtfW) WNext(time float64, amounts []float64) error {
	if !W.writeable {
		return Error{TrajUnIniWrite, W.filename, []string{"WNext"}, true}
	}
	if amounts == nil {
		return Error{NilAmounts, W.filename, []string{"WNext"}, true}
	}
	if len(amounts) != W.nspecies {
		return Error{fmt.Sprintf("%d amounts given, but %d expected", len(amounts), W.nspecies), W.filename, []string{"WNext"}, true}
	}
	for _, v := range amounts {
		W.h.Write([]byte(strconv.FormatFloat(v, 'e', W.prec, 64)))
		W.h.Write([]byte{'\n'})
	}
	fmt.Fprintf(W.h, "* %s\n", strconv.FormatFloat(time, 'e', W.prec, 64))
	return nil
}

//WNextState writes the species amounts of a chemical state as one frame.
func (W *CtfW) WNextState(time float64, state *equil.ChemicalState) error {
	if state == nil {
		return Error{NilAmounts, W.filename, []string{"WNextState"}, true}
	}
	err := W.WNext(time, state.SpeciesAmounts())
	if err != nil {
		return errDecorate(err, "WNextState")
	}
	return nil
}

//Len returns the number of species per frame.
func (W *CtfW) Len() int { return W.nspecies }

//Close flushes and closes the trajectory. The handle is unusable after
//this call.
func (W *CtfW) Close() {
	if W == nil || !W.writeable {
		return
	}
	W.h.Close()
	W.f.Close()
	W.writeable = false
}

//Read!
type CtfR struct {
	f        *os.File
	z        io.ReadCloser
	h        *bufio.Reader
	nspecies int
	filename string
	readable bool
}

//zstd.Decoder.Close returns nothing, so it does not satisfy
//io.ReadCloser on its own.
type zstdql struct {
	closeql func()
	*zstd.Decoder
}

func (z zstdql) Close() error {
	z.closeql()
	return nil
}

//New opens a composition trajectory for reading. It returns the handle,
//the header metadata (nil when the file has none) and error or nil.
func New(name string) (*CtfR, map[string]string, error) {
	R := new(CtfR)
	R.nspecies = -1
	R.filename = name
	var err error
	R.f, err = os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	buf := bufio.NewReader(R.f)
	switch strings.ToLower(name)[len(name)-1] {
	case 'z':
		R.z, err = gzip.NewReader(buf)
	case 'r':
		R.z = flate.NewReader(buf)
	default:
		var d *zstd.Decoder
		d, err = zstd.NewReader(buf)
		if err == nil {
			R.z = zstdql{d.Close, d}
		}
	}
	if err != nil {
		return nil, nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"New"}, true}
	}
	R.h = bufio.NewReader(R.z)
	var m map[string]string
	for {
		str, err := R.h.ReadString('\n')
		if err != nil {
			return nil, nil, Error{"can't read header: " + err.Error(), name, []string{"New"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			fields := strings.Fields(str)
			if len(fields) < 2 {
				return nil, nil, Error{"can't read species number from '" + str + "'", name, []string{"New"}, true}
			}
			R.nspecies, err = strconv.Atoi(fields[1])
			if err != nil {
				return nil, nil, Error{"can't read species number from '" + fields[1] + "'", name, []string{"New"}, true}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			return nil, nil, Error{"malformed header line: " + str, name, []string{"New"}, true}
		}
		if m == nil {
			m = map[string]string{}
		}
		m[kv[0]] = kv[1]
	}
	R.readable = true
	return R, m, nil
}

//Readable returns true if it is possible to call Next on the handle.
func (R *CtfR) Readable() bool { return R.readable }

//Len returns the number of species per frame.
func (R *CtfR) Len() int { return R.nspecies }

//Next reads the next frame into amounts and returns its time stamp.
//A nil amounts skips the frame, still checking it for correctness.
//When the trajectory ends cleanly the returned error implements
//equil.LastFrameError.
func (R *CtfR) Next(amounts []float64) (float64, error) {
	if !R.readable {
		return 0, Error{TrajUnIniRead, R.filename, []string{"Next"}, true}
	}
	if amounts != nil && len(amounts) != R.nspecies {
		return 0, Error{fmt.Sprintf("%d amounts wanted, but frames hold %d", len(amounts), R.nspecies), R.filename, []string{"Next"}, true}
	}
	for i := 0; i < R.nspecies; i++ {
		b, err := R.h.ReadBytes('\n')
		if err != nil {
			// EOF at the first amount is a clean end of trajectory
			if err == io.EOF && i == 0 {
				R.Close()
				return 0, newlastFrameError(R.filename, "Next")
			}
			return 0, Error{err.Error(), R.filename, []string{"Next"}, true}
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
		if err != nil {
			return 0, Error{"can't parse amount: " + err.Error(), R.filename, []string{"Next"}, true}
		}
		if amounts != nil {
			amounts[i] = v
		}
	}
	s, err := R.h.ReadString('\n')
	if err != nil {
		return 0, Error{"can't read the frame termination mark: " + err.Error(), R.filename, []string{"Next"}, true}
	}
	fields := strings.Fields(s)
	if len(fields) != 2 || fields[0] != "*" {
		return 0, Error{WrongFormat + ": bad terminator '" + strings.TrimSpace(s) + "'", R.filename, []string{"Next"}, true}
	}
	t, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, Error{"can't parse time stamp: " + err.Error(), R.filename, []string{"Next"}, true}
	}
	return t, nil
}

//Close closes the handle and marks it unreadable.
func (R *CtfR) Close() {
	if !R.readable {
		return
	}
	R.z.Close()
	R.f.Close()
	R.readable = false
}

//errDecorate asserts that the error implements equil.Error and decorates
//it with the caller's name before passing it up.
func errDecorate(err error, caller string) error {
	err2 := err.(equil.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for composition trajectory errors. It
//fulfills equil.Error and equil.TrajError.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("ctf file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file to which the failing trajectory was associated.
func (err Error) FileName() string { return err.filename }

//Format returns the format associated to the error (always "ctf").
func (err Error) Format() string { return "ctf" }

//Critical returns true if the error is critical, false otherwise.
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	UnableToOpen   = "Unable to open file"
	NilAmounts     = "Given nil amounts"
	WrongFormat    = "Wrong format in the CTF file or frame"
)

//lastFrameError implements equil.LastFrameError.
type lastFrameError struct {
	deco     []string
	fileName string
}

func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "ctf" }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}
