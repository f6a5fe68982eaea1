// Where: internal/infra/asset/asset.go
// What: Code asset staging (fingerprint + deterministic zip).
// Why: Give every distinct code tree one stable object key.
package asset

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/poruru-code/canary-topology/internal/infra/fileops"
	"github.com/poruru-code/canary-topology/internal/meta"
)

var (
	errSourceRequired = errors.New("asset source dir is required")
	errOutputRequired = errors.New("asset output dir is required")
	errSourceEmpty    = errors.New("asset source contains no files")
)

// zipEpoch is the fixed modification time stamped on every zip entry.
var zipEpoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Asset is a staged code bundle.
type Asset struct {
	// Path is the absolute source directory.
	Path string
	// Hash is the hex sha256 fingerprint of the source tree.
	Hash string
	// ZipPath is the local bundle written under the output directory.
	ZipPath string
	// Key is the object key the bundle is published under.
	Key string
}

// Stage fingerprints sourceDir and writes <outDir>/assets/<hash>.zip.
// An existing bundle with the same hash is reused.
func Stage(sourceDir, outDir string) (Asset, error) {
	if strings.TrimSpace(sourceDir) == "" {
		return Asset{}, errSourceRequired
	}
	if strings.TrimSpace(outDir) == "" {
		return Asset{}, errOutputRequired
	}
	root, err := filepath.Abs(sourceDir)
	if err != nil {
		return Asset{}, fmt.Errorf("resolve asset source: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return Asset{}, fmt.Errorf("stat asset source: %w", err)
	}
	if !info.IsDir() {
		return Asset{}, fmt.Errorf("asset source is not a directory: %s", root)
	}

	outAbs, err := filepath.Abs(outDir)
	if err != nil {
		return Asset{}, fmt.Errorf("resolve asset output: %w", err)
	}

	files, err := listFiles(root, outAbs)
	if err != nil {
		return Asset{}, err
	}
	if len(files) == 0 {
		return Asset{}, fmt.Errorf("%w: %s", errSourceEmpty, root)
	}
	hash, err := Fingerprint(root, files)
	if err != nil {
		return Asset{}, err
	}

	key := ObjectKey(hash)
	zipPath := filepath.Join(outDir, filepath.FromSlash(key))
	if !fileops.FileExists(zipPath) {
		if err := writeZip(root, files, zipPath); err != nil {
			return Asset{}, err
		}
	}
	return Asset{Path: root, Hash: hash, ZipPath: zipPath, Key: key}, nil
}

// ObjectKey returns the publish key for a bundle hash.
func ObjectKey(hash string) string {
	return path.Join(meta.AssetDir, hash+".zip")
}

// Fingerprint hashes the slash-separated relative paths and contents of
// files under root. files must be relative and sorted.
func Fingerprint(root string, files []string) (string, error) {
	hasher := sha256.New()
	for _, rel := range files {
		_, _ = hasher.Write([]byte(rel))
		_, _ = hasher.Write([]byte{0})
		f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return "", fmt.Errorf("open asset file: %w", err)
		}
		_, err = io.Copy(hasher, f)
		_ = f.Close()
		if err != nil {
			return "", fmt.Errorf("hash asset file %s: %w", rel, err)
		}
		_, _ = hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// listFiles returns the slash-separated files under root, leaving out the
// output directory and project files that never belong in a bundle.
func listFiles(root, outDir string) ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(root, func(entryPath string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if entryPath == root {
				return nil
			}
			if skipDir(entry.Name()) || entryPath == outDir || entryPath == filepath.Join(outDir, meta.AssetDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() || skipFile(entry.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, entryPath)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk asset source: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func skipDir(name string) bool {
	switch name {
	case "__pycache__", ".git", meta.OutputDir:
		return true
	}
	return false
}

func skipFile(name string) bool {
	return name == meta.ConfigFile || name == ".env" || strings.HasPrefix(name, ".env.")
}

func writeZip(root string, files []string, zipPath string) error {
	return fileops.WriteWith(zipPath, func(out io.Writer) error {
		zw := zip.NewWriter(out)
		for _, rel := range files {
			if err := addZipEntry(zw, root, rel); err != nil {
				_ = zw.Close()
				return err
			}
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("finalize asset bundle: %w", err)
		}
		return nil
	})
}

func addZipEntry(zw *zip.Writer, root, rel string) error {
	header := &zip.FileHeader{Name: rel, Method: zip.Deflate, Modified: zipEpoch}
	header.SetMode(0o644)
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("add %s to asset bundle: %w", rel, err)
	}
	f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return fmt.Errorf("open asset file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copy %s into asset bundle: %w", rel, err)
	}
	return nil
}
