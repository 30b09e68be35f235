package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/reposcan/internal/report"
	"github.com/blackwell-systems/reposcan/internal/scanner"
)

// resetFlags restores every package-level flag variable, since cobra only
// assigns flags that appear on the command line.
func resetFlags() {
	flagNoColor, flagJSON, flagVerbose = true, false, false
	flagConfig, flagTimeout = "", ""
	flagWorkers = 0
	flagFail, flagDot, flagOut = false, "", scanner.ReportFileName
	trackCompare, trackHistory, trackKeep, trackDB = 1, 0, 0, ""
	suggestLimit, suggestCategory, suggestTrend, suggestDB = 10, "", false, ""
	doctorDB = ""
}

// execute runs the root command with args and an empty config file.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	cfg := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("workers: 2\n"), 0o644))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append([]string{"--config", cfg, "--no-color"}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, root, rel string, lines int, line string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat(line+"\n", lines)), 0o644))
}

func TestCommands_Registered(t *testing.T) {
	want := map[string]bool{
		"track": false, "watch": false, "groups": false,
		"suggest": false, "doctor": false, "mcp": false,
	}
	for _, cmd := range rootCmd.Commands() {
		name := strings.Fields(cmd.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("%s subcommand not registered on rootCmd", name)
		}
	}
}

func TestScan_JSONOutputAndPersistence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", 3, "import x from './util';")
	writeFile(t, root, "node_modules/dep/index.js", 500, "const a = 1;")
	writeFile(t, root, "README.md", 2, "# hi")
	out := filepath.Join(t.TempDir(), "out", "repo_scan.json")

	stdout, err := execute(t, "--json", "--out", out, root)
	require.NoError(t, err)

	var r report.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &r))
	assert.Equal(t, 5, r.TotalLines())
	assert.Equal(t, 2, r.FileCount)
	assert.Equal(t, 3, r.ImportEdgeCount)

	saved, err := os.ReadFile(out)
	require.NoError(t, err)
	var persisted report.Report
	require.NoError(t, json.Unmarshal(saved, &persisted))
	assert.Equal(t, r.TotalsByGroup, persisted.TotalsByGroup)
}

func TestScan_HumanOutput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app.ts", 3, "// TODO tidy")

	stdout, err := execute(t, "--out", filepath.Join(t.TempDir(), "r.json"), root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Repo Health")
	assert.Contains(t, stdout, "Debt markers: 3")
	assert.Contains(t, stdout, "JSON (machine-readable)")
	assert.Contains(t, stdout, `"debt_marker_count": 3`)
}

func TestScan_FailOnBudget(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", 700, "x;")
	writeFile(t, root, "src/b.ts", 700, "y;")
	out := filepath.Join(t.TempDir(), "r.json")

	_, err := execute(t, "--json", "--fail", "--out", out, root)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBudgetExceeded))
	assert.Contains(t, err.Error(), "file size")

	// The report is saved even when the budget check fails.
	_, statErr := os.Stat(out)
	assert.NoError(t, statErr)

	// Without --fail the same tree exits cleanly.
	_, err = execute(t, "--json", "--out", out, root)
	assert.NoError(t, err)
}

func TestScan_EnvBudgetOverride(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", 50, "x;")
	t.Setenv("SCAN_MAX_FILE", "40")

	_, err := execute(t, "--json", "--fail", "--out", filepath.Join(t.TempDir(), "r.json"), root)
	assert.True(t, errors.Is(err, ErrBudgetExceeded))
}

func TestScan_DotWrittenOnlyWithEdges(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", 1, `import b from "./b";`)
	dot := filepath.Join(t.TempDir(), "graph.dot")

	_, err := execute(t, "--json", "--dot", dot, "--out", filepath.Join(t.TempDir(), "r.json"), root)
	require.NoError(t, err)
	content, err := os.ReadFile(dot)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"src/a.ts" -> "./b";`)

	empty := t.TempDir()
	writeFile(t, empty, "README.md", 1, "# none")
	noDot := filepath.Join(t.TempDir(), "none.dot")
	_, err = execute(t, "--json", "--dot", noDot, "--out", filepath.Join(t.TempDir(), "r.json"), empty)
	require.NoError(t, err)
	_, err = os.Stat(noDot)
	assert.True(t, os.IsNotExist(err))
}

func TestScan_PersistFailureIsNotFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.ts", 1, "x;")
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	// The parent of the output path is a regular file.
	out, err := execute(t, "--json", "--out", filepath.Join(blocker, "r.json"), root)
	require.NoError(t, err)
	assert.Contains(t, out, "Could not write")
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := execute(t, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestScan_InvalidTimeout(t *testing.T) {
	_, err := execute(t, "--timeout", "soon", t.TempDir())
	assert.ErrorContains(t, err, "invalid timeout")
}

func TestGroups_JSON(t *testing.T) {
	stdout, err := execute(t, "groups", "--json")
	require.NoError(t, err)

	var groups map[string][]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &groups))
	assert.Contains(t, groups["script"], ".ts")
	assert.Contains(t, groups["docs"], ".md")
}

func TestTrack_ComparesSnapshots(t *testing.T) {
	root := t.TempDir()
	db := filepath.Join(t.TempDir(), "history.db")
	writeFile(t, root, "src/a.ts", 2, "// TODO one")

	stdout, err := execute(t, "track", "--db", db, root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "First snapshot recorded")

	writeFile(t, root, "src/b.ts", 1, "// FIXME two")
	stdout, err = execute(t, "track", "--db", db, "--json", root)
	require.NoError(t, err)

	var result struct {
		Diff struct {
			Deltas []struct {
				Name      string `json:"name"`
				Delta     int    `json:"delta"`
				Direction string `json:"direction"`
			} `json:"deltas"`
		} `json:"diff"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))

	found := false
	for _, d := range result.Diff.Deltas {
		if d.Name == "debt_markers" {
			found = true
			assert.Equal(t, 1, d.Delta)
			assert.Equal(t, "regressed", d.Direction)
		}
	}
	assert.True(t, found, "expected debt_markers delta")

	stdout, err = execute(t, "track", "--db", db, "--history", "5", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Showing 3 most recent snapshots")
}

func TestTrack_RejectsBadCompare(t *testing.T) {
	_, err := execute(t, "track", "--compare", "0", t.TempDir())
	assert.ErrorContains(t, err, "--compare")
}

func TestSuggest_JSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/big.ts", 700, "x;")
	writeFile(t, root, "src/small.ts", 10, "y;")

	stdout, err := execute(t, "suggest", "--json", root)
	require.NoError(t, err)

	var suggestions []struct {
		Category string `json:"category"`
		Title    string `json:"title"`
		Path     string `json:"path"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &suggestions))
	require.Len(t, suggestions, 1)
	assert.Equal(t, "size", suggestions[0].Category)
	assert.Equal(t, "src/big.ts", suggestions[0].Path)
}

func TestSuggest_NoneWithinBudget(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.ts", 3, "x;")

	stdout, err := execute(t, "suggest", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No suggestions")
}

func TestSuggest_TrendUsesHistory(t *testing.T) {
	root := t.TempDir()
	db := filepath.Join(t.TempDir(), "history.db")
	writeFile(t, root, "src/a.ts", 1, "// TODO one")

	_, err := execute(t, "track", "--db", db, root)
	require.NoError(t, err)

	writeFile(t, root, "src/b.ts", 1, "// TODO two")
	stdout, err := execute(t, "suggest", "--trend", "--db", db, "--category", "trend", "--json", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Investigate growth in debt markers")
}

func TestDoctor_JSON(t *testing.T) {
	stdout, err := execute(t, "doctor", "--json", "--db", filepath.Join(t.TempDir(), "none.db"), t.TempDir())
	require.NoError(t, err)

	var result struct {
		Checks []struct {
			Name   string `json:"name"`
			Passed bool   `json:"passed"`
		} `json:"checks"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, len(result.Checks), result.Total)

	status := map[string]bool{}
	for _, c := range result.Checks {
		status[c.Name] = c.Passed
	}
	assert.True(t, status["Configuration"])
	assert.True(t, status["Scan root"])
	assert.False(t, status["History database"])
}
