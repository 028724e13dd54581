/*
 * nts.go, part of goneb.
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

package traj

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	neb "goneb"
	v3 "goneb/v3"
)

//DefaultPrec is the number of decimals kept per coordinate. 1e-5 A is
//well below anything an external quantum chemistry code resolves.
const DefaultPrec = 5

//Writer appends band iterations to an nts file.
type Writer struct {
	f         *os.File
	h         io.WriteCloser
	natoms    int
	nnodes    int
	filename  string
	writeable bool
	prec      int
}

//NewWriter creates the nts file name and writes its header: the given
//key=value pairs plus the topology symbols and the coordinate
//precision, then the "** natoms nnodes" separator. extra may be nil.
//compressionLevel applies to the gzip and flate backends only.
func NewWriter(name string, atoms []neb.Atom, nnodes int, extra map[string]string, compressionLevel ...int) (*Writer, error) {
	level := 9
	if len(compressionLevel) > 0 {
		level = compressionLevel[0]
	}
	if nnodes < 3 {
		return nil, Error{neb.ErrTooFewImages, name, []string{"NewWriter"}, true}
	}
	W := new(Writer)
	var err error
	W.f, err = os.Create(name)
	if err != nil {
		return nil, err
	}
	W.h, err = newCompressor(W.f, name, level)
	if err != nil {
		return nil, Error{"can't set up compression: " + err.Error(), name, []string{"NewWriter"}, true}
	}
	W.natoms = len(atoms)
	W.nnodes = nnodes
	W.filename = name
	W.prec = DefaultPrec
	if p, ok := extra["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			W.prec = prec
		} else {
			log.Printf("Invalid precision %q for trajectory %s, using the default", p, name)
		}
	}
	headerstr := fmt.Sprintf("prec=%d\nsymbols=%s\n", W.prec, symbolsString(atoms))
	for k, v := range extra {
		if k == "prec" || k == "symbols" {
			continue
		}
		headerstr += fmt.Sprintf("%s=%v\n", k, v)
	}
	W.h.Write([]byte(headerstr))
	W.h.Write([]byte(fmt.Sprintf("** %d %d\n", W.natoms, W.nnodes)))
	W.writeable = true
	return W, nil
}

func symbolsString(atoms []neb.Atom) string {
	s := make([]string, len(atoms))
	for i, a := range atoms {
		s[i] = a.Symbol
	}
	return strings.Join(s, " ")
}

//WNext appends one frame: the node energy (NaN for unknown) and its
//geometry. The caller is responsible for writing exactly nnodes
//frames per iteration, in node order; see WSnapshot.
func (W *Writer) WNext(energy float64, coord *v3.Matrix) error {
	if !W.writeable {
		return Error{TrajUnIniWrite, W.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, W.filename, []string{"WNext"}, true}
	}
	if v := coord.NVecs(); v != W.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, W.natoms), W.filename, []string{"WNext"}, true}
	}
	if math.IsNaN(energy) {
		W.h.Write([]byte("e nan\n"))
	} else {
		W.h.Write([]byte(fmt.Sprintf("e %.10g\n", energy)))
	}
	var temp [3]int
	var floats [3]float64
	for i := 0; i < W.natoms; i++ {
		floats[0] = coord.At(i, 0)
		floats[1] = coord.At(i, 1)
		floats[2] = coord.At(i, 2)
		W.h.Write([]byte(coordsEncode(floats, temp, W.prec)))
	}
	W.h.Write([]byte("*\n"))
	return nil
}

//WSnapshot appends one whole iteration: nnodes frames in node order.
//The data is encoded before returning, so the caller may keep
//mutating the coordinates afterwards.
func (W *Writer) WSnapshot(energies []float64, coords []*v3.Matrix) error {
	if len(energies) != W.nnodes || len(coords) != W.nnodes {
		return Error{fmt.Sprintf("snapshot has %d energies and %d geometries, want %d of each",
			len(energies), len(coords), W.nnodes), W.filename, []string{"WSnapshot"}, true}
	}
	for i := 0; i < W.nnodes; i++ {
		if err := W.WNext(energies[i], coords[i]); err != nil {
			return errDecorate(err, "WSnapshot")
		}
	}
	return nil
}

//Len returns the number of atoms per frame.
func (W *Writer) Len() int { return W.natoms }

//NNodes returns the number of frames per iteration.
func (W *Writer) NNodes() int { return W.nnodes }

//Close flushes the compressor and closes the file. The Writer can not
//be used afterwards.
func (W *Writer) Close() {
	if W == nil || !W.writeable {
		return
	}
	W.h.Close()
	W.f.Close()
	W.writeable = false
}

func coordsEncode(f [3]float64, temp [3]int, prec int) string {
	p := math.Pow(10.0, float64(prec))
	for i, v := range f {
		temp[i] = int(math.RoundToEven(v * p))
	}
	return fmt.Sprintf("%d %d %d\n", temp[0], temp[1], temp[2])
}

func coordsDecode(str string, temp *[3]float64, prec int) error {
	p := math.Pow(10.0, float64(prec))
	s := strings.Fields(str)
	if len(s) != 3 {
		return fmt.Errorf("ill-formatted coordinate line in nts: %q", str)
	}
	for i, v := range s {
		f, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("can't parse coordinate %d (%s): %s", i, v, err.Error())
		}
		temp[i] = float64(f) / p
	}
	return nil
}

func newCompressor(f io.Writer, name string, level int) (io.WriteCloser, error) {
	switch strings.ToLower(name)[len(name)-1] {
	case 'z':
		return gzip.NewWriterLevel(f, level)
	case 'r':
		return flate.NewWriter(f, level)
	default: //'s' and everything else
		return zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	}
}

//zstd.Decoder.Close returns nothing, so it doesn't satisfy
//io.ReadCloser on its own.
type zstdql struct {
	closeql func()
	*zstd.Decoder
}

func (z zstdql) Close() error {
	z.closeql()
	return nil
}

func newDecompressor(f io.Reader, name string) (io.ReadCloser, error) {
	switch strings.ToLower(name)[len(name)-1] {
	case 'z':
		return gzip.NewReader(f)
	case 'r':
		return flate.NewReader(f), nil
	default:
		r, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		return &zstdql{r.Close, r}, nil
	}
}

//Reader reads an nts file frame by frame.
type Reader struct {
	f        *os.File
	z        io.ReadCloser
	h        *bufio.Reader
	natoms   int
	nnodes   int
	atoms    []neb.Atom
	filename string
	prec     int
	readable bool
}

//New opens an nts file for reading, parses the header and returns the
//handle plus the header metadata.
func New(name string) (*Reader, map[string]string, error) {
	R := new(Reader)
	R.natoms = -1
	R.filename = name
	var err error
	R.f, err = os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	R.z, err = newDecompressor(bufio.NewReader(R.f), name)
	if err != nil {
		return nil, nil, Error{"can't set up decompression: " + err.Error(), name, []string{"New"}, true}
	}
	R.h = bufio.NewReader(R.z)
	m := map[string]string{}
	for {
		str, err := R.h.ReadString('\n')
		if err != nil {
			return nil, nil, Error{"can't read header: " + err.Error(), name, []string{"New"}, true}
		}
		str = strings.TrimSuffix(str, "\n")
		if strings.HasPrefix(str, "**") {
			fields := strings.Fields(str)
			if len(fields) != 3 {
				return nil, nil, Error{fmt.Sprintf("malformed separator line %q", str), name, []string{"New"}, true}
			}
			R.natoms, err = strconv.Atoi(fields[1])
			if err == nil {
				R.nnodes, err = strconv.Atoi(fields[2])
			}
			if err != nil {
				return nil, nil, Error{fmt.Sprintf("can't read sizes from %q: %s", str, err.Error()), name, []string{"New"}, true}
			}
			break
		}
		kv := strings.SplitN(str, "=", 2)
		if len(kv) != 2 {
			return nil, nil, Error{fmt.Sprintf("malformed header line %q", str), name, []string{"New"}, true}
		}
		m[kv[0]] = kv[1]
	}
	R.prec = DefaultPrec
	if p, ok := m["prec"]; ok {
		prec, err := strconv.Atoi(p)
		if err == nil && prec > 0 {
			R.prec = prec
		} else {
			log.Printf("Invalid precision in trajectory %s, assuming the default", name)
		}
	}
	if s, ok := m["symbols"]; ok {
		for _, sym := range strings.Fields(s) {
			R.atoms = append(R.atoms, neb.Atom{Symbol: sym})
		}
		if len(R.atoms) != R.natoms {
			return nil, nil, Error{fmt.Sprintf("header lists %d symbols for %d atoms", len(R.atoms), R.natoms), name, []string{"New"}, true}
		}
	}
	R.readable = true
	return R, m, nil
}

//Readable returns whether Next can still be called on the handle.
func (R *Reader) Readable() bool { return R.readable }

//Len returns the number of atoms per frame.
func (R *Reader) Len() int { return R.natoms }

//NNodes returns the number of frames per iteration.
func (R *Reader) NNodes() int { return R.nnodes }

//Atoms returns the topology from the header, or nil if the header
//carried no symbols.
func (R *Reader) Atoms() []neb.Atom { return R.atoms }

//Next puts the coordinates of the next frame in c (which may be nil
//to skip the frame) and returns its energy, NaN if it was recorded as
//unknown. At the end of the trajectory a LastFrameError is returned;
//that is a normal termination, not a failure.
func (R *Reader) Next(c *v3.Matrix) (float64, error) {
	if !R.readable {
		return 0, Error{TrajUnIniRead, R.filename, []string{"Next"}, true}
	}
	eline, err := R.h.ReadString('\n')
	if err != nil {
		if err == io.EOF && eline == "" {
			R.Close()
			return 0, newLastFrameError(R.filename, "Next")
		}
		return 0, Error{err.Error(), R.filename, []string{"Next"}, true}
	}
	fields := strings.Fields(eline)
	if len(fields) != 2 || fields[0] != "e" {
		return 0, Error{fmt.Sprintf("malformed energy line %q", eline), R.filename, []string{"Next"}, true}
	}
	energy := math.NaN()
	if fields[1] != "nan" {
		energy, err = strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return 0, Error{fmt.Sprintf("can't parse energy %q", fields[1]), R.filename, []string{"Next"}, true}
		}
	}
	var temp [3]float64
	for i := 0; i < R.natoms; i++ {
		b, err := R.h.ReadString('\n')
		if err != nil {
			return 0, Error{"truncated frame: " + err.Error(), R.filename, []string{"Next"}, true}
		}
		if err := coordsDecode(strings.TrimSuffix(b, "\n"), &temp, R.prec); err != nil {
			return 0, Error{err.Error(), R.filename, []string{"Next"}, true}
		}
		if c == nil {
			continue
		}
		for j, v := range temp {
			c.Set(i, j, v)
		}
	}
	s, err := R.h.ReadString('\n')
	if err != nil || s[0] != '*' {
		return 0, Error{"missing frame termination mark", R.filename, []string{"Next"}, true}
	}
	return energy, nil
}

//Close closes the handle and marks it unreadable.
func (R *Reader) Close() {
	if !R.readable {
		return
	}
	R.z.Close()
	R.f.Close()
	R.readable = false
}

//errDecorate asserts that err implements neb.DecoratedError and
//decorates it with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2 := err.(neb.DecoratedError)
	err2.Decorate(caller)
	return err2
}

//Error is the concrete error type of this package. It implements
//neb.DecoratedError.
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("nts file %s error: %s", err.filename, err.message)
}

//Decorate adds new information to the error.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//FileName returns the file the failing trajectory was associated with.
func (err Error) FileName() string { return err.filename }

//Critical returns whether the error is critical.
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "nts handle not initialized for reading"
	TrajUnIniWrite = "nts handle not initialized for writing"
	NilCoordinates = "given nil coordinates"
)

//LastFrameError signals the normal end of a trajectory.
type LastFrameError struct {
	deco     []string
	fileName string
}

//NormalLastFrameTermination distinguishes this from real errors.
func (E *LastFrameError) NormalLastFrameTermination() {}

func (E *LastFrameError) FileName() string { return E.fileName }

func (E *LastFrameError) Error() string { return "EOF" }

func (E *LastFrameError) Critical() bool { return false }

func (E *LastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newLastFrameError(filename, caller string) *LastFrameError {
	return &LastFrameError{fileName: filename, deco: []string{caller}}
}
