package watcher

import (
	"testing"

	"github.com/blackwell-systems/reposcan/internal/scanner"
)

func TestCache_Evicts(t *testing.T) {
	c, err := NewCache(2)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}

	c.Add("a", scanner.Evaluate("a.ts", "a\n"))
	c.Add("b", scanner.Evaluate("b.ts", "b\n"))
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}
	c.Add("c", scanner.Evaluate("c.ts", "c\n"))

	// b was least recently used.
	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if r, ok := c.Get("a"); !ok || r.Path != "a.ts" {
		t.Errorf("Get(a) = %+v, %v", r, ok)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestNewCache_RejectsZeroSize(t *testing.T) {
	if _, err := NewCache(0); err == nil {
		t.Error("expected error for zero size")
	}
}

// Cache satisfies the scanner's cache contract.
var _ scanner.ResultCache = (*Cache)(nil)
