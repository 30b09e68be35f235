package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/reposcan/internal/config"
	"github.com/blackwell-systems/reposcan/internal/output"
	"github.com/blackwell-systems/reposcan/internal/scanner"
	"github.com/blackwell-systems/reposcan/internal/store"
	"github.com/blackwell-systems/reposcan/internal/watcher"
)

var doctorDB string

var doctorCmd = &cobra.Command{
	Use:   "doctor [root]",
	Short: "Check whether the reposcan setup is healthy",
	Long: `Run a series of health checks against the reposcan configuration, the
scan root, the history database and the watch daemon. Prints a pass/fail
line for each check and a summary of how many checks passed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorDB, "db", "", "History database path (default: ~/.config/reposcan/reposcan.db)")
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		output.SetNoColor(true)
	}

	var checks []doctorCheck

	// A broken config is a finding, not a command failure.
	cfg, cfgCheck := checkConfig()
	checks = append(checks, cfgCheck)
	if cfg != nil {
		checks = append(checks, checkExcludes(cfg.Exclude))
	}

	checks = append(checks, checkScanRoot(args))
	checks = append(checks, checkReportWritable(scanner.ReportFileName))

	dbPath := doctorDB
	if dbPath == "" {
		dbPath = config.DBPath()
	}
	checks = append(checks, checkDatabase(dbPath))
	checks = append(checks, checkWatchDaemon())
	checks = append(checks, checkNotifier())

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		})
	}

	fmt.Fprintln(out, output.Section("Doctor"))
	fmt.Fprintln(out)
	for _, c := range checks {
		renderDoctorCheck(out, c)
	}

	fmt.Fprintln(out)
	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		fmt.Fprintf(out, " %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		fmt.Fprintf(out, " %s\n\n", output.StyleWarning.Render(summary))
	}
	return nil
}

// renderDoctorCheck prints a single check result line.
func renderDoctorCheck(w io.Writer, c doctorCheck) {
	indicator := output.StyleWarning.Render("✗")
	if c.Passed {
		indicator = output.StyleSuccess.Render("✓")
	}
	fmt.Fprintf(w, "  %s  %-30s %s\n", indicator, output.StyleBold.Render(c.Name), output.StyleMuted.Render(c.Message))
}

// checkConfig loads the configuration and reports the effective budgets.
func checkConfig() (*config.Config, doctorCheck) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, doctorCheck{Name: "Configuration", Message: err.Error()}
	}
	return cfg, doctorCheck{
		Name:   "Configuration",
		Passed: true,
		Message: fmt.Sprintf("file %d lines, function %d lines, complexity %d",
			cfg.Budgets.MaxFileLines, cfg.Budgets.MaxFunctionLines, cfg.Budgets.ComplexityWarn),
	}
}

// checkExcludes verifies that every exclude pattern compiles.
func checkExcludes(patterns []string) doctorCheck {
	if _, err := scanner.CompileExcludes(patterns); err != nil {
		return doctorCheck{Name: "Exclude patterns", Message: err.Error()}
	}
	return doctorCheck{
		Name:    "Exclude patterns",
		Passed:  true,
		Message: fmt.Sprintf("%d pattern(s)", len(patterns)),
	}
}

// checkScanRoot verifies the root argument exists.
func checkScanRoot(args []string) doctorCheck {
	root, err := resolveRoot(args)
	if err != nil {
		return doctorCheck{Name: "Scan root", Message: err.Error()}
	}
	return doctorCheck{Name: "Scan root", Passed: true, Message: root}
}

// checkReportWritable verifies the report's directory accepts new files.
func checkReportWritable(path string) doctorCheck {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".reposcan-doctor-*")
	if err != nil {
		return doctorCheck{
			Name:    "Report location",
			Message: fmt.Sprintf("cannot write to %s: %v", dir, err),
		}
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	return doctorCheck{Name: "Report location", Passed: true, Message: path}
}

// checkDatabase opens the history database and reports its schema version.
func checkDatabase(dbPath string) doctorCheck {
	if _, err := os.Stat(dbPath); err != nil {
		return doctorCheck{
			Name:    "History database",
			Message: fmt.Sprintf("not found at %s (run 'reposcan track' to create)", dbPath),
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return doctorCheck{Name: "History database", Message: fmt.Sprintf("cannot open: %v", err)}
	}
	defer func() { _ = db.Close() }()

	version, err := db.SchemaVersion()
	if err != nil {
		return doctorCheck{Name: "History database", Message: fmt.Sprintf("cannot read schema: %v", err)}
	}
	return doctorCheck{
		Name:    "History database",
		Passed:  true,
		Message: fmt.Sprintf("%s (schema v%d)", dbPath, version),
	}
}

// checkWatchDaemon checks whether the watch daemon PID file exists and the process is running.
func checkWatchDaemon() doctorCheck {
	pid, err := readPID()
	if err != nil {
		return doctorCheck{Name: "Watch daemon", Message: "not running (no PID file)"}
	}
	if !processExists(pid) {
		return doctorCheck{
			Name:    "Watch daemon",
			Message: fmt.Sprintf("PID %d is not running (stale PID file)", pid),
		}
	}
	return doctorCheck{Name: "Watch daemon", Passed: true, Message: fmt.Sprintf("running (PID %d)", pid)}
}

// checkNotifier reports which desktop notifier watch alerts will use.
func checkNotifier() doctorCheck {
	name, ok := watcher.Notifier()
	switch {
	case name == "":
		return doctorCheck{Name: "Desktop notifications", Message: "unsupported platform, alerts go to stderr"}
	case !ok:
		return doctorCheck{Name: "Desktop notifications", Message: name + " not found, alerts go to stderr"}
	}
	return doctorCheck{Name: "Desktop notifications", Passed: true, Message: name}
}
