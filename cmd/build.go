package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/gdl-match-report/internal/builder"
	"github.com/pable/gdl-match-report/internal/model"
	"github.com/pable/gdl-match-report/internal/report"
	"github.com/pable/gdl-match-report/internal/storage"
)

var (
	buildStore         bool
	buildSkipMalformed bool
	buildPrint         bool
)

var buildCmd = &cobra.Command{
	Use:   "build <output_dir> <file_prefix> <test_start_num> <test_end_num> <game_name> <gdl_version> <play_clock> [player_perspective_name]",
	Short: "Build a CSV report from a range of finalstate.xml files",
	Long: `Visit test runs start..end-1 under output_dir and write one CSV row per
finalstate.xml found to {output_dir}testOutput_{unix_time}.csv.

With gdl_version "1" runs live in {output_dir}{file_prefix}{i}/. Any other
version reads {output_dir}{file_prefix}{i}-{PERSPECTIVE}/ and requires
player_perspective_name. output_dir is used as a prefix, so end it with "/".

Indices may be negative; put flags first and "--" before the arguments so a
leading "-" is not read as a flag.

Example:
  matchreport build /tmp/out/ game 1 101 tictactoe 2 15 xplayer
  matchreport build --store -- /tmp/out/ game -5 5 tictactoe 1 15`,
	Args: cobra.RangeArgs(7, 8),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildStore, "store", false, "also record the run in the match store")
	buildCmd.Flags().BoolVar(&buildSkipMalformed, "skip-malformed", false, "skip unparsable files instead of aborting")
	buildCmd.Flags().BoolVar(&buildPrint, "print", false, "print the extracted rows as a table")
}

// parseBuildArgs maps positional arguments onto builder options.
func parseBuildArgs(args []string) (builder.Options, error) {
	start, err := strconv.Atoi(args[2])
	if err != nil {
		return builder.Options{}, fmt.Errorf("%w: test_start_num %q is not an integer", builder.ErrInvalidArgs, args[2])
	}
	end, err := strconv.Atoi(args[3])
	if err != nil {
		return builder.Options{}, fmt.Errorf("%w: test_end_num %q is not an integer", builder.ErrInvalidArgs, args[3])
	}
	opts := builder.Options{
		OutputDir:  args[0],
		FilePrefix: args[1],
		Start:      start,
		End:        end,
		GameName:   args[4],
		GDLVersion: args[5],
		PlayClock:  args[6],
	}
	if len(args) > 7 {
		opts.Perspective = args[7]
	}
	return opts, opts.Validate()
}

func runBuild(cmd *cobra.Command, args []string) error {
	opts, err := parseBuildArgs(args)
	if err != nil {
		return err
	}
	opts.SkipMalformed = cfg.SkipMalformed
	if cmd.Flags().Changed("skip-malformed") {
		opts.SkipMalformed = buildSkipMalformed
	}
	store := cfg.Store
	if cmd.Flags().Changed("store") {
		store = buildStore
	}

	started := time.Now()
	res, err := builder.New(opts, logger).Run()
	if err != nil {
		if res != nil {
			cWarn.Fprintf(os.Stderr, "aborted after %d row(s); partial report kept at %s\n", res.Rows, res.CSVPath)
		}
		return fmt.Errorf("build report: %w", err)
	}

	size := "?"
	if fi, statErr := os.Stat(res.CSVPath); statErr == nil {
		size = humanize.Bytes(uint64(fi.Size()))
	}
	cOK.Fprintf(os.Stdout, "Wrote %s", res.CSVPath)
	cMuted.Fprintf(os.Stdout, "  (%d of %d runs, %s, %s)\n",
		res.Rows, opts.End-opts.Start, size, time.Since(started).Round(time.Millisecond))
	if n := len(res.Malformed); n > 0 {
		cWarn.Fprintf(os.Stderr, "skipped %d malformed file(s):\n", n)
		for _, p := range res.Malformed {
			fmt.Fprintf(os.Stderr, "  %s\n", p)
		}
	}

	run := model.Run{
		CSVPath:    res.CSVPath,
		CreatedAt:  started.UTC().Format(time.RFC3339),
		GameName:   opts.GameName,
		GDLVersion: opts.GDLVersion,
		PlayClock:  opts.PlayClock,
		StartIndex: opts.Start,
		EndIndex:   opts.End,
		Rows:       res.Rows,
	}
	if buildPrint {
		report.PrintRunSummary(os.Stdout, run)
		report.PrintRecordTable(os.Stdout, res.Records)
	}
	if !store {
		return nil
	}

	runID, reimported, err := storeRun(run, res.Records)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Stored as run %d in %s", runID, dbPath)
	if reimported > 0 {
		cMuted.Fprintf(os.Stdout, "  (%d match(es) were already stored and moved to this run)", reimported)
	}
	fmt.Fprintln(os.Stdout)
	return nil
}

// storeRun records the run and its matches, returning the run id and how
// many matches had been stored by an earlier run.
func storeRun(run model.Run, recs []model.MatchRecord) (runID int64, reimported int, err error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return 0, 0, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return 0, 0, fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	for _, r := range recs {
		exists, err := db.MatchExists(r.Fingerprint)
		if err != nil {
			return 0, 0, fmt.Errorf("check match: %w", err)
		}
		if exists {
			reimported++
			logger.Debug("match already stored", zap.Int("index", r.Index), zap.String("fingerprint", r.Fingerprint))
		}
	}

	runID, err = db.InsertRun(run)
	if err != nil {
		return 0, 0, fmt.Errorf("insert run: %w", err)
	}
	if err := db.InsertMatches(runID, recs); err != nil {
		return 0, 0, fmt.Errorf("insert matches: %w", err)
	}
	return runID, reimported, nil
}
