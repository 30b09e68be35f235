package report

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// dotQuoter escapes text for a double-quoted DOT identifier.
var dotQuoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// WriteDOT writes a Graphviz digraph with one edge statement per import edge.
func WriteDOT(w io.Writer, edges []ImportEdge) error {
	var sb strings.Builder
	sb.WriteString("digraph imports {\n")
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [shape=box, fontsize=10];\n")
	for _, e := range edges {
		fmt.Fprintf(&sb, "  \"%s\" -> \"%s\";\n", dotQuoter.Replace(e.Source), dotQuoter.Replace(e.Target))
	}
	sb.WriteString("}\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteDOTFile writes the DOT graph for edges to path.
func WriteDOTFile(path string, edges []ImportEdge) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dot file: %w", err)
	}
	if err := WriteDOT(f, edges); err != nil {
		_ = f.Close()
		return fmt.Errorf("write dot file: %w", err)
	}
	return f.Close()
}
