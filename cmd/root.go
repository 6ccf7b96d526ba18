package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pable/gdl-match-report/internal/config"
	"github.com/pable/gdl-match-report/internal/logging"
)

var (
	dbPath  string
	cfgPath string
	verbose bool

	cfg    config.Config
	logger = zap.NewNop()
)

var (
	cOK    = color.New(color.FgGreen, color.Bold)
	cMuted = color.New(color.Faint)
	cWarn  = color.New(color.FgYellow)
)

var rootCmd = &cobra.Command{
	Use:   "matchreport",
	Short: "GDL match result report tool",
	Long:  "Convert per-match finalstate.xml files from a GDL test harness into one CSV report.",

	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite match store (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
}

// loadSettings merges config file, environment and flags, then builds the
// logger. Flags given explicitly always win.
func loadSettings(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("db") {
		cfg.DB = dbPath
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}
	dbPath = cfg.DB

	logger, err = logging.New(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}
