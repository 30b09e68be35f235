// Package app contains the Cobra command tree for reposcan.
package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/reposcan/internal/scanner"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

// ErrBudgetExceeded is returned by a --fail scan whose report violates a budget.
var ErrBudgetExceeded = errors.New("budget exceeded")

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
	flagWorkers int
	flagTimeout string

	flagFail bool
	flagDot  string
	flagOut  string
)

var rootCmd = &cobra.Command{
	Use:   "reposcan [root]",
	Short: "Source-tree health scanner",
	Long: `reposcan walks a project tree and reports line totals by file group and
top-level module, the largest files, the longest functions, the most complex
script files, TODO/FIXME/HACK markers, and the local import graph.

The report is printed for humans (or as JSON with --json) and saved to
repo_scan.json. With --fail the exit status is 1 when a budget is exceeded.

Budgets come from the config file and the SCAN_MAX_FN, SCAN_MAX_FILE and
SCAN_COMPLEXITY environment variables.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScan,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/reposcan/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "Files evaluated concurrently (default: config value or number of CPUs)")
	rootCmd.PersistentFlags().StringVar(&flagTimeout, "timeout", "", "Abort the scan after this duration (e.g. 30s)")

	rootCmd.Flags().BoolVar(&flagFail, "fail", false, "Exit non-zero on budget violations")
	rootCmd.Flags().StringVar(&flagDot, "dot", "", "Write a Graphviz DOT graph of local imports to `PATH`")
	rootCmd.Flags().StringVar(&flagOut, "out", scanner.ReportFileName, "Where to save the JSON report")
}
