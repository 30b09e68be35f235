package app

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/reposcan/internal/heuristics"
	"github.com/blackwell-systems/reposcan/internal/output"
	"github.com/blackwell-systems/reposcan/internal/scanner"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List file groups and their extensions",
	Long: `Print the extension table used to classify files. Extensions not listed
fall into the "other" group and do not count toward line totals.`,
	Args: cobra.NoArgs,
	RunE: runGroups,
}

func init() {
	rootCmd.AddCommand(groupsCmd)
}

func runGroups(cmd *cobra.Command, args []string) error {
	if flagNoColor || !output.IsTerminal(os.Stdout) {
		output.SetNoColor(true)
	}

	table := scanner.ExtensionTable()
	out := cmd.OutOrStdout()

	if flagJSON {
		m := make(map[string][]string, len(table))
		for _, g := range table {
			m[string(g.Group)] = g.Extensions
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	}

	tbl := output.NewTable("Group", "Extensions", "Heuristics")
	for _, g := range table {
		var families []string
		for _, e := range g.Extensions {
			f := string(scanner.FamilyOf("file" + e))
			if f != string(heuristics.FamilyNone) && !slices.Contains(families, f) {
				families = append(families, f)
			}
		}
		tbl.AddRow(string(g.Group), strings.Join(g.Extensions, " "), strings.Join(families, ", "))
	}

	fmt.Fprintln(out, output.Section("File groups"))
	fmt.Fprintln(out)
	return tbl.Fprint(out)
}
