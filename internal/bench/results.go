// File: internal/bench/results.go
// Author: momentics <momentics@gmail.com>
//
// Result rows persisted as zstd-compressed CSV.

package bench

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/zstd"
	"github.com/momentics/hioload-pool/api"
	"github.com/pkg/errors"
)

// Columns is the header of every results file.
var Columns = []string{"platform", "allocator", "pattern", "size_bytes", "iteration", "total_ns", "latency_ns"}

// Result is one measurement row.
type Result struct {
	Platform  string
	Allocator string
	Pattern   string
	SizeBytes uint32
	Iteration uint32
	TotalNs   uint64
	LatencyNs uint64
}

func (r Result) record() []string {
	return []string{
		r.Platform,
		r.Allocator,
		r.Pattern,
		strconv.FormatUint(uint64(r.SizeBytes), 10),
		strconv.FormatUint(uint64(r.Iteration), 10),
		strconv.FormatUint(r.TotalNs, 10),
		strconv.FormatUint(r.LatencyNs, 10),
	}
}

// FileName is the results file name for a platform label.
func FileName(platform string) string {
	return "benchmark_" + platform + ".csv.zst"
}

// Writer streams results into a compressed CSV.
type Writer struct {
	file io.Closer
	zw   *zstd.Encoder
	cw   *csv.Writer
	rows int
}

// Create opens dir/FileName(platform), creating dir if needed.
func Create(dir, platform string) (*Writer, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", errors.Wrapf(err, "create results dir %s", dir)
	}
	path := filepath.Join(dir, FileName(platform))
	f, err := os.Create(path)
	if err != nil {
		return nil, "", errors.Wrap(err, "create results file")
	}
	w, err := NewWriter(f)
	if err != nil {
		f.Close()
		return nil, "", err
	}
	w.file = f
	return w, path, nil
}

// NewWriter writes the header to out. Close does not close out.
func NewWriter(out io.Writer) (*Writer, error) {
	zw, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, errors.Wrap(err, "zstd writer")
	}
	w := &Writer{zw: zw, cw: csv.NewWriter(zw)}
	if err := w.cw.Write(Columns); err != nil {
		return nil, errors.Wrap(err, "write header")
	}
	return w, nil
}

// Write appends one row.
func (w *Writer) Write(r Result) error {
	if err := w.cw.Write(r.record()); err != nil {
		return errors.Wrap(err, "write result")
	}
	w.rows++
	return nil
}

// Rows is the number of results written so far.
func (w *Writer) Rows() int { return w.rows }

// Close flushes everything and closes the file opened by Create.
func (w *Writer) Close() error {
	w.cw.Flush()
	err := w.cw.Error()
	if cerr := w.zw.Close(); err == nil {
		err = cerr
	}
	if w.file != nil {
		if ferr := w.file.Close(); err == nil {
			err = ferr
		}
	}
	return errors.Wrap(err, "close results")
}

// ReadResults decodes a stream produced by Writer.
func ReadResults(in io.Reader) ([]Result, error) {
	zr, err := zstd.NewReader(in)
	if err != nil {
		return nil, errors.Wrap(err, "zstd reader")
	}
	defer zr.Close()

	cr := csv.NewReader(zr)
	cr.FieldsPerRecord = len(Columns)
	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	for i, c := range Columns {
		if header[i] != c {
			return nil, errors.Wrapf(api.ErrInvalidArgument, "column %d is %q, want %q", i, header[i], c)
		}
	}

	var out []Result
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "read row")
		}
		r, err := parseRecord(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", len(out)+1)
		}
		out = append(out, r)
	}
}

// ReadFile reads a results file from disk.
func ReadFile(path string) ([]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open results")
	}
	defer f.Close()
	return ReadResults(f)
}

func parseRecord(rec []string) (Result, error) {
	var (
		r    = Result{Platform: rec[0], Allocator: rec[1], Pattern: rec[2]}
		nums [4]uint64
	)
	for i := range nums {
		bits := 64
		if i < 2 {
			bits = 32
		}
		n, err := strconv.ParseUint(rec[3+i], 10, bits)
		if err != nil {
			return r, errors.Wrapf(err, "column %s", Columns[3+i])
		}
		nums[i] = n
	}
	r.SizeBytes, r.Iteration = uint32(nums[0]), uint32(nums[1])
	r.TotalNs, r.LatencyNs = nums[2], nums[3]
	return r, nil
}
