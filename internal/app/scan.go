package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/reposcan/internal/config"
	"github.com/blackwell-systems/reposcan/internal/output"
	"github.com/blackwell-systems/reposcan/internal/report"
	"github.com/blackwell-systems/reposcan/internal/scanner"
)

func runScan(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}

	root, err := resolveRoot(args)
	if err != nil {
		return err
	}

	s, err := newScanner(cfg, logger, nil)
	if err != nil {
		return err
	}

	ctx, cancel, err := scanContext(cmd.Context())
	if err != nil {
		return err
	}
	defer cancel()

	r, err := scanReport(ctx, s, root, budgetsFrom(cfg))
	if err != nil {
		return err
	}
	verdict := report.Evaluate(r, exclusionsFrom(cfg))

	if flagDot != "" && r.ImportEdgeCount > 0 {
		if err := report.WriteDOTFile(flagDot, r.ImportEdges); err != nil {
			return fmt.Errorf("writing dot graph: %w", err)
		}
		logger.Debug("dot graph written", "path", flagDot, "edges", r.ImportEdgeCount)
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		if err := report.WriteJSON(out, r, false); err != nil {
			return err
		}
	} else {
		output.RenderReport(out, r, verdict)
		fmt.Fprintln(out, output.Section("JSON (machine-readable)"))
		if err := report.WriteJSON(out, r, true); err != nil {
			return err
		}
	}

	// Saving the report is best-effort.
	if err := report.WriteJSONFile(flagOut, r); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Could not write %s: %v\n", flagOut, err)
		logger.Warn("report not saved", "path", flagOut, "error", err)
	}

	if flagFail && verdict.Failed() {
		return fmt.Errorf("%w: %s", ErrBudgetExceeded, strings.Join(verdict.Violations(), ", "))
	}
	return nil
}

// setup loads config and prepares logging and color for a command.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	if flagNoColor || !cfg.Output.Color || !output.IsTerminal(os.Stdout) {
		output.SetNoColor(true)
	}

	return cfg, newLogger(cmd.ErrOrStderr()), nil
}

// newLogger returns a text logger at debug level with --verbose and warn
// level otherwise.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// resolveRoot returns the absolute scan root from the positional argument.
func resolveRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root %q: %w", root, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("scan root: %w", err)
	}
	return abs, nil
}

func newScanner(cfg *config.Config, logger *slog.Logger, cache scanner.ResultCache) (*scanner.Scanner, error) {
	workers := cfg.Workers
	if flagWorkers > 0 {
		workers = flagWorkers
	}
	s, err := scanner.New(scanner.Options{
		Workers: workers,
		Exclude: cfg.Exclude,
		Cache:   cache,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring scanner: %w", err)
	}
	return s, nil
}

// scanContext cancels on SIGINT/SIGTERM and after --timeout, when set.
func scanContext(parent context.Context) (context.Context, context.CancelFunc, error) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, shutdownSignals...)
	if flagTimeout == "" {
		return ctx, stop, nil
	}

	d, err := time.ParseDuration(flagTimeout)
	if err != nil || d <= 0 {
		stop()
		return nil, nil, fmt.Errorf("invalid timeout %q", flagTimeout)
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	return ctx, func() { cancel(); stop() }, nil
}

func scanReport(ctx context.Context, s *scanner.Scanner, root string, budgets report.Budgets) (*report.Report, error) {
	results, err := s.Scan(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return report.Aggregate(root, results, budgets), nil
}

func budgetsFrom(cfg *config.Config) report.Budgets {
	return report.Budgets{
		MaxFileLines:     cfg.Budgets.MaxFileLines,
		MaxFunctionLines: cfg.Budgets.MaxFunctionLines,
		ComplexityWarn:   cfg.Budgets.ComplexityWarn,
	}
}

func exclusionsFrom(cfg *config.Config) report.FailExclusions {
	return report.FailExclusions{
		Functions:  cfg.FailExclude.Functions,
		Complexity: cfg.FailExclude.Complexity,
	}
}
