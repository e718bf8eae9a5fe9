package search

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindMseedWalksSDSTree(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "2019", "GE", "MORC", "BHE.D")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(dir, "GE.MORC..BHE.D.2019.121")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	other := filepath.Join(root, "README.txt")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FindMseed(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 match, got %d: %v", len(got), got)
	}
}
