// Where: internal/usecase/synth/manifest.go
// What: Synth manifest (manifest.json) model and IO.
// Why: Record what a synth run produced so publish can upload it as-is.
package synth

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"
)

const ManifestSchemaVersion = 1

// Manifest describes one synth output directory.
type Manifest struct {
	SchemaVersion int               `json:"schemaVersion"`
	Stack         string            `json:"stack"`
	VersionLabel  string            `json:"versionLabel"`
	Schedule      string            `json:"schedule"`
	CreatedAt     string            `json:"createdAt"`
	Template      ManifestFile      `json:"template"`
	Assets        []ManifestAsset   `json:"assets"`
	Outputs       map[string]string `json:"outputs"`
	Order         []string          `json:"order"`
	Context       map[string]string `json:"context,omitempty"`
}

// ManifestFile is a file relative to the output directory plus its
// publish key.
type ManifestFile struct {
	Path string `json:"path"`
	Key  string `json:"key"`
}

// ManifestAsset is a staged code bundle.
type ManifestAsset struct {
	ManifestFile
	Hash   string `json:"hash"`
	Source string `json:"source"`
}

func buildManifest(result Result, outDir string) Manifest {
	graph := result.Graph
	order := make([]string, 0, len(graph.Order()))
	for _, id := range graph.Order() {
		order = append(order, string(id))
	}
	outputs := map[string]string{}
	for _, output := range graph.Outputs() {
		outputs[output.Name] = output.Value.String()
	}
	return Manifest{
		SchemaVersion: ManifestSchemaVersion,
		Stack:         graph.Scope.ID,
		VersionLabel:  graph.Version.Label,
		Schedule:      graph.Rollout.Schedule.Name,
		CreatedAt:     graph.Version.CreatedAt.UTC().Format(time.RFC3339),
		Template:      ManifestFile{Path: relTo(outDir, result.TemplatePath), Key: result.TemplateKey},
		Assets: []ManifestAsset{{
			ManifestFile: ManifestFile{Path: relTo(outDir, result.Asset.ZipPath), Key: result.Asset.Key},
			Hash:         result.Asset.Hash,
			Source:       graph.Unit.CodeSource,
		}},
		Outputs: outputs,
		Order:   order,
		Context: graph.Scope.ContextValues(),
	}
}

func relTo(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

// WriteManifest writes manifest as indented JSON.
func WriteManifest(path string, manifest Manifest) error {
	payload, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return writeFile(path, append(payload, '\n'))
}
