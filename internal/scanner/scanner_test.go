package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/blackwell-systems/reposcan/internal/heuristics"
)

// writeFixtureFile creates a file with the given content under root.
func writeFixtureFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func scan(t *testing.T, root string, opts Options) []FileResult {
	t.Helper()
	s, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	results, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return results
}

func paths(results []FileResult) map[string]FileResult {
	m := make(map[string]FileResult, len(results))
	for _, r := range results {
		m[r.Path] = r
	}
	return m
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want Group
	}{
		{"src/App.TSX", GroupScript},
		{"Main.java", GroupScript},
		{"config.YAML", GroupMarkupConfig},
		{"README.md", GroupDocs},
		{"site.scss", GroupStyle},
		{"index.html", GroupWeb},
		{"build.gradle", GroupBuild},
		{"main.go", GroupOther},
		{"Makefile", GroupOther},
	}
	for _, tt := range tests {
		if got := Classify(tt.path); got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestIncluded(t *testing.T) {
	for _, p := range []string{"a.ts", "a.md", "a.json", "a.gradle", "a.css", "a.html", "A.KT"} {
		if !Included(p) {
			t.Errorf("Included(%q) = false, want true", p)
		}
	}
	for _, p := range []string{"a.go", "a.py", "LICENSE", "a.png"} {
		if Included(p) {
			t.Errorf("Included(%q) = true, want false", p)
		}
	}
}

func TestFamilyOf(t *testing.T) {
	if FamilyOf("x.mjs") != heuristics.FamilyClosure {
		t.Error("expected .mjs to use the closure family")
	}
	if FamilyOf("x.kt") != heuristics.FamilyBraceMethod {
		t.Error("expected .kt to use the brace-method family")
	}
	if FamilyOf("x.json") != heuristics.FamilyNone {
		t.Error("expected .json to get no structural analysis")
	}
}

func TestDenied_ByBaseName(t *testing.T) {
	for _, p := range []string{"package-lock.json", "web/pnpm-lock.yaml", "yarn.lock", "a/b/repo_scan.json"} {
		if !Denied(p) {
			t.Errorf("Denied(%q) = false, want true", p)
		}
	}
	if Denied("package.json") {
		t.Error("package.json should not be denied")
	}
}

func TestExtensionTable_SortedAndComplete(t *testing.T) {
	table := ExtensionTable()
	total := 0
	for i, g := range table {
		if i > 0 && table[i-1].Group >= g.Group {
			t.Errorf("groups not sorted: %q before %q", table[i-1].Group, g.Group)
		}
		total += len(g.Extensions)
	}
	if total != len(extGroups) {
		t.Errorf("table lists %d extensions, want %d", total, len(extGroups))
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"", 0},
		{"a\nb\n", 2},
		{"a\n\n   \n\tb", 2},
		{"a\r\n\r\nb\r\n", 2},
		{"  x  ", 1},
	}
	for _, tt := range tests {
		if got := CountLines(tt.content); got != tt.want {
			t.Errorf("CountLines(%q) = %d, want %d", tt.content, got, tt.want)
		}
	}
}

func TestIsText(t *testing.T) {
	dir := t.TempDir()
	text := writeFixtureFile(t, dir, "a.ts", "const a = 1;\n")
	binary := writeFixtureFile(t, dir, "b.ts", "abc\x00def")
	lateNUL := writeFixtureFile(t, dir, "c.ts", strings.Repeat("a", sniffSize)+"\x00")

	if !IsText(text) {
		t.Error("plain file should be text")
	}
	if IsText(binary) {
		t.Error("file with NUL should be binary")
	}
	if !IsText(lateNUL) {
		t.Error("NUL beyond the sniff window should be ignored")
	}
	if IsText(filepath.Join(dir, "missing.ts")) {
		t.Error("missing file should not be text")
	}
}

func TestReadText_LossyDecode(t *testing.T) {
	dir := t.TempDir()
	path := writeFixtureFile(t, dir, "a.ts", "\xEF\xBB\xBFok\xFFend")

	got, err := ReadText(path)
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	if got != "ok\uFFFDend" {
		t.Errorf("ReadText = %q, want BOM stripped and invalid byte replaced", got)
	}
}

func TestCompileExcludes_Invalid(t *testing.T) {
	if _, err := CompileExcludes([]string{"[unclosed"}); err == nil {
		t.Error("expected error for invalid pattern")
	}
	if _, err := New(Options{Exclude: []string{"[unclosed"}}); err == nil {
		t.Error("expected New to reject invalid pattern")
	}
}

func TestScan_IgnoredDirsContributeNothing(t *testing.T) {
	root := t.TempDir()
	writeFixtureFile(t, root, "src/app.ts", "a\nb\n")
	writeFixtureFile(t, root, "node_modules/lib/index.js", strings.Repeat("x\n", 100))
	writeFixtureFile(t, root, "src/dist/out.js", "x\n")
	writeFixtureFile(t, root, ".git/config.json", "{}\n")

	got := paths(scan(t, root, Options{Workers: 2}))
	if len(got) != 1 {
		t.Fatalf("expected only src/app.ts, got %v", got)
	}
	if got["src/app.ts"].Lines != 2 {
		t.Errorf("lines = %d, want 2", got["src/app.ts"].Lines)
	}
}

func TestScan_SkipsDeniedBinaryAndExcluded(t *testing.T) {
	root := t.TempDir()
	writeFixtureFile(t, root, "package-lock.json", "{}\n")
	writeFixtureFile(t, root, "repo_scan.json", "{}\n")
	writeFixtureFile(t, root, "bin.js", "\x00\x01")
	writeFixtureFile(t, root, "gen/api.ts", "x\n")
	writeFixtureFile(t, root, "src/a.test.ts", "x\n")
	writeFixtureFile(t, root, "src/a.ts", "x\n")
	writeFixtureFile(t, root, "main.go", "package main\n")

	got := paths(scan(t, root, Options{Exclude: []string{"gen", "*.test.ts"}}))
	if len(got) != 1 {
		t.Fatalf("expected only src/a.ts, got %v", got)
	}
	if _, ok := got["src/a.ts"]; !ok {
		t.Errorf("src/a.ts missing from %v", got)
	}
}

func TestScan_EvaluatesScriptAndNonScript(t *testing.T) {
	root := t.TempDir()
	writeFixtureFile(t, root, "src/a.ts", "import b from './b';\nfunction f() {\n  if (x) {}\n}\n// TODO later\n")
	writeFixtureFile(t, root, "docs/notes.md", "# FIXME docs\n")

	got := paths(scan(t, root, Options{}))

	a := got["src/a.ts"]
	if !a.IsScript() || a.Group != GroupScript {
		t.Errorf("src/a.ts should be a script, got %+v", a)
	}
	if a.Complexity != 2 {
		t.Errorf("complexity = %d, want 2", a.Complexity)
	}
	if len(a.Imports) != 1 || a.Imports[0] != "./b" {
		t.Errorf("imports = %v, want [./b]", a.Imports)
	}
	if len(a.Debt) != 1 || a.Debt[0].Line != 5 {
		t.Errorf("debt = %+v, want one marker on line 5", a.Debt)
	}

	md := got["docs/notes.md"]
	if md.IsScript() || md.Complexity != 0 || len(md.Functions) != 0 {
		t.Errorf("markdown should get no structural analysis, got %+v", md)
	}
	if len(md.Debt) != 1 {
		t.Errorf("markdown debt = %d, want 1", len(md.Debt))
	}
}

func TestScan_SingleFileRoot(t *testing.T) {
	root := t.TempDir()
	file := writeFixtureFile(t, root, "only.ts", "a\nb\nc\n")

	results := scan(t, file, Options{})
	if len(results) != 1 || results[0].Path != "only.ts" || results[0].Lines != 3 {
		t.Errorf("unexpected results %+v", results)
	}
}

func TestScan_MissingRoot(t *testing.T) {
	s, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Scan(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestScan_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeFixtureFile(t, root, "a.ts", "x\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Scan(ctx, root); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// mapCache is a minimal ResultCache for tests.
type mapCache struct {
	mu   sync.Mutex
	m    map[string]FileResult
	hits int
}

func (c *mapCache) Get(key string) (FileResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.m[key]
	if ok {
		c.hits++
	}
	return r, ok
}

func (c *mapCache) Add(key string, r FileResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = r
}

func TestScan_ReusesCachedResults(t *testing.T) {
	root := t.TempDir()
	writeFixtureFile(t, root, "a.ts", "x\n")
	writeFixtureFile(t, root, "b.ts", "y\n")

	cache := &mapCache{m: make(map[string]FileResult)}
	first := scan(t, root, Options{Cache: cache})
	if len(cache.m) != 2 || cache.hits != 0 {
		t.Fatalf("after first scan: %d entries, %d hits", len(cache.m), cache.hits)
	}

	second := scan(t, root, Options{Cache: cache})
	if cache.hits != 2 {
		t.Errorf("expected 2 cache hits, got %d", cache.hits)
	}
	if len(first) != len(second) {
		t.Errorf("cached scan returned %d results, want %d", len(second), len(first))
	}
}

func TestScan_Idempotent(t *testing.T) {
	root := t.TempDir()
	for i, name := range []string{"a.ts", "b/c.js", "d/e.java", "f.md"} {
		writeFixtureFile(t, root, name, strings.Repeat("line\n", i+1))
	}

	sum := func(rs []FileResult) int {
		n := 0
		for _, r := range rs {
			n += r.Lines
		}
		return n
	}
	a := sum(scan(t, root, Options{Workers: 1}))
	b := sum(scan(t, root, Options{Workers: 8}))
	if a != b || a != 10 {
		t.Errorf("totals differ or wrong: %d vs %d, want 10", a, b)
	}
}
