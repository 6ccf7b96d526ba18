// Package builder turns a range of harness run directories into one CSV report.
package builder

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pable/gdl-match-report/internal/model"
	"github.com/pable/gdl-match-report/internal/parser"
	"github.com/pable/gdl-match-report/internal/report"
)

// ErrInvalidArgs marks unusable build options. It is always reported before
// any output file is created.
var ErrInvalidArgs = errors.New("invalid arguments")

// SinglePerspectiveVersion is the gdl_version value whose runs are stored
// without a perspective suffix. The comparison is on the trimmed string.
const SinglePerspectiveVersion = "1"

// FinalStateFile is the per-run result file name.
const FinalStateFile = "finalstate.xml"

// Options configure a build. OutputDir and FilePrefix are concatenated
// verbatim, so OutputDir normally ends with a path separator.
type Options struct {
	OutputDir   string
	FilePrefix  string
	Start       int // inclusive
	End         int // exclusive
	GameName    string
	GDLVersion  string
	PlayClock   string
	Perspective string // required unless GDLVersion is "1"

	// SkipMalformed logs and skips unparsable files instead of failing.
	SkipMalformed bool
}

// SinglePerspective reports whether run directories carry no perspective suffix.
func (o Options) SinglePerspective() bool {
	return strings.TrimSpace(o.GDLVersion) == SinglePerspectiveVersion
}

// Validate checks the options without touching the filesystem.
func (o Options) Validate() error {
	if o.OutputDir == "" {
		return fmt.Errorf("%w: output dir is empty", ErrInvalidArgs)
	}
	if o.End < o.Start {
		return fmt.Errorf("%w: end index %d is before start index %d", ErrInvalidArgs, o.End, o.Start)
	}
	if !o.SinglePerspective() && strings.TrimSpace(o.Perspective) == "" {
		return fmt.Errorf("%w: gdl version %q needs a player perspective name", ErrInvalidArgs, o.GDLVersion)
	}
	return nil
}

// RunDirName returns the run directory name for index i.
func (o Options) RunDirName(i int) string {
	name := o.FilePrefix + strconv.Itoa(i)
	if o.SinglePerspective() {
		return name
	}
	return name + "-" + strings.ToUpper(o.Perspective)
}

// SourcePath returns the expected finalstate.xml path for index i.
func (o Options) SourcePath(i int) string {
	return o.OutputDir + o.RunDirName(i) + "/" + FinalStateFile
}

// Result summarizes a finished build.
type Result struct {
	CSVPath   string
	Rows      int
	Skipped   []int    // indices with no finalstate.xml
	Malformed []string // paths skipped under SkipMalformed
	Records   []model.MatchRecord
}

// Builder runs one build. It owns the CSV report for the duration of Run.
type Builder struct {
	opts Options
	log  *zap.Logger
	now  func() time.Time
}

// New returns a Builder. A nil logger is replaced with a no-op one.
func New(opts Options, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{opts: opts, log: log, now: time.Now}
}

// Run validates the options, creates the report and appends one row per
// existing finalstate.xml in [Start, End), in ascending index order. On a
// fatal error the report keeps the rows written so far and is closed.
func (b *Builder) Run() (res *Result, err error) {
	if err := b.opts.Validate(); err != nil {
		return nil, err
	}

	cw, err := report.CreateCSV(b.opts.OutputDir, b.now())
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := cw.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	res = &Result{CSVPath: cw.Path()}
	b.log.Info("building report",
		zap.String("csv", cw.Path()),
		zap.Int("start", b.opts.Start),
		zap.Int("end", b.opts.End),
		zap.Bool("single_perspective", b.opts.SinglePerspective()))

	for i := b.opts.Start; i < b.opts.End; i++ {
		path := b.opts.SourcePath(i)
		if !isFile(path) {
			b.log.Debug("no finalstate, skipping", zap.Int("index", i), zap.String("path", path))
			res.Skipped = append(res.Skipped, i)
			continue
		}

		rec, perr := parser.ParseFile(path)
		if perr != nil {
			if b.opts.SkipMalformed && errors.Is(perr, parser.ErrMalformed) {
				b.log.Warn("skipping malformed match file", zap.Int("index", i), zap.Error(perr))
				res.Malformed = append(res.Malformed, path)
				continue
			}
			return res, perr
		}

		rec.Index = i
		rec.GameName = b.opts.GameName
		rec.GDLVersion = b.opts.GDLVersion
		rec.PlayClock = b.opts.PlayClock
		if err := cw.Write(*rec); err != nil {
			return res, err
		}
		res.Records = append(res.Records, *rec)
		res.Rows = cw.Rows()
		b.log.Debug("row written", zap.Int("index", i), zap.String("match_id", rec.MatchID))
	}

	b.log.Info("report complete",
		zap.String("csv", res.CSVPath),
		zap.Int("rows", res.Rows),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("malformed", len(res.Malformed)))
	return res, nil
}

// isFile reports whether path exists and is a regular file (or a link to one).
func isFile(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.Mode().IsRegular()
}
