// Where: internal/infra/config/project_test.go
// What: Tests for project config load/save and mapping.
// Why: Ensure canary.yaml round-trips and maps onto topology settings.
package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/poruru-code/canary-topology/internal/meta"
)

func TestProjectConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), meta.ConfigFile)
	cfg := DefaultProjectConfig()
	cfg.Publish.Bucket = "canary-assets"
	cfg.Context = map[string]string{"owner": "team-a"}

	if err := SaveProjectConfig(path, cfg); err != nil {
		t.Fatalf("save project config: %v", err)
	}
	loaded, err := LoadProjectConfig(path)
	if err != nil {
		t.Fatalf("load project config: %v", err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Fatalf("config mismatch: expected %#v, got %#v", cfg, loaded)
	}
}

func TestSaveProjectConfigReplacesFileInPlace(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	path := filepath.Join(dir, meta.ConfigFile)

	first := DefaultProjectConfig()
	if err := SaveProjectConfig(path, first); err != nil {
		t.Fatalf("save project config: %v", err)
	}
	second := DefaultProjectConfig()
	second.Stack.Name = "Replaced"
	if err := SaveProjectConfig(path, second); err != nil {
		t.Fatalf("resave project config: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != meta.ConfigFile {
		t.Fatalf("expected only %s, got %v", meta.ConfigFile, entries)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("perm = %o", info.Mode().Perm())
	}
	loaded, err := LoadProjectConfig(path)
	if err != nil {
		t.Fatalf("load project config: %v", err)
	}
	if loaded.Stack.Name != "Replaced" {
		t.Fatalf("stack = %q", loaded.Stack.Name)
	}
}

func TestLoadProjectConfigKeepsExplicitEmptyAbortAlarms(t *testing.T) {
	path := filepath.Join(t.TempDir(), meta.ConfigFile)
	content := "version: 1\nstack:\n  name: Demo\nrollout:\n  abort_alarms: []\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadProjectConfig(path)
	if err != nil {
		t.Fatalf("load project config: %v", err)
	}
	abort := cfg.TopologyConfig().AbortAlarms
	if abort == nil || len(abort) != 0 {
		t.Fatalf("explicit empty abort list must survive, got %#v", abort)
	}

	if err := os.WriteFile(path, []byte("version: 1\nstack:\n  name: Demo\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = LoadProjectConfig(path)
	if err != nil {
		t.Fatalf("load project config: %v", err)
	}
	if cfg.TopologyConfig().AbortAlarms != nil {
		t.Fatalf("missing abort list must stay nil")
	}
}

func TestLoadProjectConfigRejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), meta.ConfigFile)
	if err := os.WriteFile(path, []byte("version: 9\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadProjectConfig(path); err == nil || !strings.Contains(err.Error(), "newer") {
		t.Fatalf("expected version error, got %v", err)
	}
}

func TestTopologyConfigMapping(t *testing.T) {
	cfg := DefaultProjectConfig()
	cfg.Alarm.Threshold = 5
	cfg.Rollout.Schedule = "Linear10PercentEvery1Minute"
	got := cfg.TopologyConfig()
	if got.AlarmThreshold != 5 || got.Schedule != "Linear10PercentEvery1Minute" {
		t.Fatalf("unexpected mapping: %+v", got)
	}
	if got.AliasName != "live" || got.Runtime != "python3.9" {
		t.Fatalf("defaults not mapped: %+v", got)
	}
}

func TestProjectConfigPathUsesProjectRoot(t *testing.T) {
	root := t.TempDir()
	got, err := ProjectConfigPath(root)
	if err != nil {
		t.Fatalf("project config path: %v", err)
	}
	if got != filepath.Join(root, meta.ConfigFile) {
		t.Fatalf("unexpected path %s", got)
	}
	if _, err := ProjectConfigPath(" "); err == nil {
		t.Fatalf("expected empty root to fail")
	}
}
