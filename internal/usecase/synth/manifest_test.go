// Where: internal/usecase/synth/manifest_test.go
// What: Manifest round trip and schema guard.
// Why: Keep manifest.json readable by tooling that checks schemaVersion.
package synth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readManifest(path string) (Manifest, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(payload, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if manifest.SchemaVersion != ManifestSchemaVersion {
		return Manifest{}, fmt.Errorf("unsupported manifest schema version %d", manifest.SchemaVersion)
	}
	return manifest, nil
}

func TestWriteManifestRejectsUnknownSchemaOnRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := WriteManifest(path, Manifest{SchemaVersion: ManifestSchemaVersion + 1, Stack: "app"}); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	_, err := readManifest(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported manifest schema version") {
		t.Fatalf("expected schema version error, got %v", err)
	}
}
