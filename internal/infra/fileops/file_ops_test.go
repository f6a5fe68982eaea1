package fileops

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileCreatesParentsAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "template.json")

	if err := WriteFile(path, []byte("first")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteFile(path, []byte("second")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	assertFile(t, path, "second", 0o644)
	assertNoTempFiles(t, filepath.Dir(path))
}

func TestWriteWithKeepsOldContentOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.zip")
	if err := WriteFile(path, []byte("original")); err != nil {
		t.Fatalf("write: %v", err)
	}

	boom := errors.New("boom")
	err := WriteWith(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	assertFile(t, path, "original", 0o644)
	assertNoTempFiles(t, filepath.Dir(path))
}

func TestExistsHelpers(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	if err := WriteFile(file, []byte("a")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if !FileExists(file) || FileExists(dir) || FileExists(filepath.Join(dir, "missing")) {
		t.Fatalf("unexpected FileExists results")
	}
	if !DirExists(dir) || DirExists(file) {
		t.Fatalf("unexpected DirExists results")
	}
}

func assertFile(t *testing.T, path, wantContent string, wantPerm os.FileMode) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if string(data) != wantContent {
		t.Fatalf("content mismatch for %s: got %q want %q", path, string(data), wantContent)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if got := info.Mode().Perm(); got != wantPerm {
		t.Fatalf("perm mismatch for %s: got %o want %o", path, got, wantPerm)
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		names := []string{}
		for _, entry := range entries {
			names = append(names, entry.Name())
		}
		t.Fatalf("expected only the target file, got %v", names)
	}
}
