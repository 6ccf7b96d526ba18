package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pable/gdl-match-report/internal/model"
)

// ErrWrite marks failures creating or writing the CSV report.
var ErrWrite = errors.New("write report")

// maxNameAttempts bounds the _n suffix search for same-second runs.
const maxNameAttempts = 1000

// CSVWriter appends match records to a freshly created report file. Every
// row is flushed as soon as it is written.
type CSVWriter struct {
	path string
	f    *os.File
	w    *csv.Writer
	rows int
}

// ReportName returns the base report file name for t, with an optional
// collision suffix n (0 means none).
func ReportName(t time.Time, n int) string {
	name := "testOutput_" + strconv.FormatInt(t.Unix(), 10)
	if n > 0 {
		name += "_" + strconv.Itoa(n)
	}
	return name + ".csv"
}

// CreateCSV creates {dir}testOutput_{unix}.csv and writes the header. dir is
// used verbatim as a prefix. An existing report is never overwritten: a
// numeric suffix is added until the name is free.
func CreateCSV(dir string, now time.Time) (*CSVWriter, error) {
	var (
		f    *os.File
		path string
		err  error
	)
	for n := 0; n < maxNameAttempts; n++ {
		path = dir + ReportName(now, n)
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: create %s: %v", ErrWrite, path, err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: no free report name in %s: %v", ErrWrite, dir, err)
	}

	w := csv.NewWriter(f)
	w.UseCRLF = true
	cw := &CSVWriter{path: path, f: f, w: w}
	if err := cw.writeRow(model.Columns); err != nil {
		f.Close()
		return nil, err
	}
	return cw, nil
}

// Path returns the report file path.
func (cw *CSVWriter) Path() string { return cw.path }

// Rows returns the number of data rows written so far.
func (cw *CSVWriter) Rows() int { return cw.rows }

// Write appends one record.
func (cw *CSVWriter) Write(rec model.MatchRecord) error {
	if err := cw.writeRow(rec.Row()); err != nil {
		return err
	}
	cw.rows++
	return nil
}

func (cw *CSVWriter) writeRow(fields []string) error {
	if err := cw.w.Write(fields); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, cw.path, err)
	}
	cw.w.Flush()
	if err := cw.w.Error(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, cw.path, err)
	}
	return nil
}

// Close flushes and closes the file. Safe to call more than once.
func (cw *CSVWriter) Close() error {
	if cw.f == nil {
		return nil
	}
	cw.w.Flush()
	flushErr := cw.w.Error()
	closeErr := cw.f.Close()
	cw.f = nil
	if flushErr != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, cw.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("%w: close %s: %v", ErrWrite, cw.path, closeErr)
	}
	return nil
}
