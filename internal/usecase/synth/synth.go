// Where: internal/usecase/synth/synth.go
// What: Synth workflow orchestration.
// Why: Turn project config into a validated template and manifest on disk.
package synth

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/poruru-code/canary-topology/internal/domain/topology"
	"github.com/poruru-code/canary-topology/internal/infra/asset"
	"github.com/poruru-code/canary-topology/internal/infra/config"
	"github.com/poruru-code/canary-topology/internal/infra/fileops"
	synthinfra "github.com/poruru-code/canary-topology/internal/infra/synth"
	"github.com/poruru-code/canary-topology/internal/infra/ui"
	"github.com/poruru-code/canary-topology/internal/meta"
)

var (
	errStackNameRequired   = errors.New("stack name is required")
	errProjectRootRequired = errors.New("project root is required")
	errStagerNotConfigured = errors.New("asset stager is not configured")
)

// Request captures the inputs of one synth run.
type Request struct {
	ProjectRoot string
	Config      config.ProjectConfig
	// OutputDir and Format override the config when set.
	OutputDir string
	Format    string
	Clock     func() time.Time
}

// Result is what a synth run produced.
type Result struct {
	Graph        *topology.Graph
	Template     *synthinfra.Template
	Asset        asset.Asset
	OutputDir    string
	TemplatePath string
	TemplateKey  string
	ManifestPath string
	Manifest     Manifest
}

// Workflow runs synth. StageAsset is injectable for tests.
type Workflow struct {
	StageAsset    func(sourceDir, outDir string) (asset.Asset, error)
	UserInterface ui.UserInterface
}

// NewWorkflow returns a Workflow staging assets on the local filesystem.
func NewWorkflow(userInterface ui.UserInterface) Workflow {
	return Workflow{StageAsset: asset.Stage, UserInterface: userInterface}
}

// Run declares the topology, stages its code, synthesizes and validates
// the template, then writes the template and manifest.
func (w Workflow) Run(req Request) (Result, error) {
	if w.StageAsset == nil {
		return Result{}, errStagerNotConfigured
	}
	if strings.TrimSpace(req.ProjectRoot) == "" {
		return Result{}, errProjectRootRequired
	}
	cfg := req.Config
	stack := strings.TrimSpace(cfg.Stack.Name)
	if stack == "" {
		return Result{}, errStackNameRequired
	}
	format := firstNonEmpty(req.Format, cfg.Stack.Format, synthinfra.FormatJSON)
	if format != synthinfra.FormatJSON && format != synthinfra.FormatYAML {
		return Result{}, fmt.Errorf("unsupported format %q (json/yaml)", format)
	}
	outDir := resolvePath(req.ProjectRoot, firstNonEmpty(req.OutputDir, cfg.Stack.OutputDir, meta.OutputDir))

	graph, err := declare(stack, cfg, req.Clock)
	if err != nil {
		return Result{}, err
	}
	topoCfg := cfg.TopologyConfig()
	for _, warning := range topoCfg.Warnings() {
		w.warn(warning)
	}

	staged, err := w.StageAsset(resolvePath(req.ProjectRoot, graph.Unit.CodeSource), outDir)
	if err != nil {
		return Result{}, fmt.Errorf("stage code asset: %w", err)
	}

	tmpl, err := synthinfra.Synthesize(graph, synthinfra.Options{
		Asset:       synthinfra.Asset{Key: staged.Key, Hash: staged.Hash},
		Description: cfg.Stack.Description,
	})
	if err != nil {
		return Result{}, fmt.Errorf("synthesize: %w", err)
	}
	content, err := tmpl.Render(format)
	if err != nil {
		return Result{}, err
	}
	if err := synthinfra.Validate(content); err != nil {
		return Result{}, fmt.Errorf("validate template: %w", err)
	}

	fileName := stack + meta.TemplateSuffix + "." + format
	templatePath := filepath.Join(outDir, fileName)
	if err := writeFile(templatePath, content); err != nil {
		return Result{}, err
	}

	result := Result{
		Graph:        graph,
		Template:     tmpl,
		Asset:        staged,
		OutputDir:    outDir,
		TemplatePath: templatePath,
		TemplateKey:  path.Join(firstNonEmpty(cfg.Publish.Prefix, config.DefaultPublishPrefix), graph.Version.Label, fileName),
		ManifestPath: filepath.Join(outDir, meta.ManifestFile),
	}
	result.Manifest = buildManifest(result, outDir)
	if err := WriteManifest(result.ManifestPath, result.Manifest); err != nil {
		return Result{}, err
	}

	w.report(result)
	return result, nil
}

func declare(stack string, cfg config.ProjectConfig, clock func() time.Time) (*topology.Graph, error) {
	scope, err := topology.NewScope(stack, topology.WithClock(clock), topology.WithContext(cfg.Context))
	if err != nil {
		return nil, err
	}
	graph, err := topology.Declare(scope, cfg.TopologyConfig())
	if err != nil {
		return nil, fmt.Errorf("declare topology: %w", err)
	}
	return graph, nil
}

func (w Workflow) report(result Result) {
	if w.UserInterface == nil {
		return
	}
	graph := result.Graph
	rows := []ui.KeyValue{
		{Key: "Stack", Value: graph.Scope.ID},
		{Key: "Version label", Value: graph.Version.Label},
		{Key: "Alias", Value: graph.Alias.Name},
		{Key: "Schedule", Value: graph.Rollout.Schedule.DeploymentConfigName()},
		{Key: "Abort alarms", Value: len(graph.Rollout.AbortAlarms)},
		{Key: "Asset", Value: result.Asset.Key},
		{Key: "Resources", Value: len(result.Template.Resources)},
	}
	summary := result.Template.Summary()
	types := make([]string, 0, len(summary))
	for resourceType := range summary {
		types = append(types, resourceType)
	}
	sort.Strings(types)
	for _, resourceType := range types {
		rows = append(rows, ui.KeyValue{Key: "  " + resourceType, Value: summary[resourceType]})
	}
	for _, output := range graph.Outputs() {
		rows = append(rows, ui.KeyValue{Key: output.Name, Value: output.Value.String()})
	}
	w.UserInterface.Block("🧬", "Synthesized", rows)
	w.UserInterface.Success(fmt.Sprintf("Wrote %s", result.TemplatePath))
}

func (w Workflow) warn(msg string) {
	if w.UserInterface != nil {
		w.UserInterface.Warn(msg)
	}
}

func resolvePath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

func writeFile(path string, content []byte) error {
	if err := fileops.WriteFile(path, content); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
