package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/reposcan/internal/config"
	"github.com/blackwell-systems/reposcan/internal/mcp"
)

var mcpDB string

var mcpCmd = &cobra.Command{
	Use:   "mcp [root]",
	Short: "Run an MCP stdio server exposing scan results",
	Long: `Start a Model Context Protocol stdio server that editors and agents can
query. Every call rescans the requested tree. The server exposes:

  get_repo_summary  Totals, counts, and budget verdict
  get_hotspots      Largest files, longest functions, or most complex files
  get_import_graph  Local import edges and their most connected nodes
  get_suggestions   Ranked refactoring suggestions
  get_history       Recent tracked snapshots with metrics

Example MCP configuration:
  {"mcpServers":{"reposcan":{"command":"reposcan","args":["mcp","/path/to/repo"]}}}`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpDB, "db", "", "History database path (default: ~/.config/reposcan/reposcan.db)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
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

	dbPath := mcpDB
	if dbPath == "" {
		dbPath = config.DBPath()
	}

	srv := mcp.NewServer(mcp.Options{
		Root:       root,
		Scanner:    s,
		Budgets:    budgetsFrom(cfg),
		Exclusions: exclusionsFrom(cfg),
		DBPath:     dbPath,
		Version:    appVersion,
		Logger:     logger,
	})

	ctx, cancel := signalContext()
	defer cancel()
	return srv.Run(ctx, os.Stdin, cmd.OutOrStdout())
}
