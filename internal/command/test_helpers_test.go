package command

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poruru-code/canary-topology/internal/constants"
	"github.com/poruru-code/canary-topology/internal/infra/config"
	"github.com/poruru-code/canary-topology/internal/infra/interaction"
	publishinfra "github.com/poruru-code/canary-topology/internal/infra/publish"
	"github.com/poruru-code/canary-topology/internal/usecase/publish"
)

var fixedNow = time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		constants.EnvProjectDir,
		constants.EnvStackName,
		constants.EnvOutputDir,
		constants.EnvEmoji,
		constants.EnvAssetBucket,
		constants.EnvBuildTable,
		constants.EnvAWSEndpoint,
		constants.EnvAWSRegion,
		constants.EnvAWSDefaultRegion,
		"NO_EMOJI",
	} {
		t.Setenv(key, "")
	}
}

// newProject writes canary.yaml plus a handler and returns the root.
func newProject(t *testing.T, mutate func(*config.ProjectConfig)) string {
	t.Helper()
	root := t.TempDir()
	cfg := config.DefaultProjectConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	if err := config.SaveProjectConfig(filepath.Join(root, "canary.yaml"), cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	code := filepath.Join(root, "lambda")
	if err := os.MkdirAll(code, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(code, "handler.py"), []byte("def lambda_handler(e, c):\n    return {}\n"), 0o644); err != nil {
		t.Fatalf("write handler: %v", err)
	}
	return root
}

func testDeps(root string, out *bytes.Buffer) Dependencies {
	return Dependencies{
		Out:           out,
		ErrOut:        out,
		Getwd:         func() (string, error) { return root, nil },
		Clock:         func() time.Time { return fixedNow },
		IsInteractive: func() bool { return false },
	}
}

type fakePrompter struct {
	inputs  []string
	selects []string
	confirm bool
	titles  []string
}

func (p *fakePrompter) Input(title string, suggestions []string) (string, error) {
	p.titles = append(p.titles, title)
	if len(p.inputs) == 0 {
		return suggestions[0], nil
	}
	value := p.inputs[0]
	p.inputs = p.inputs[1:]
	return value, nil
}

func (p *fakePrompter) SelectValue(title string, options []interaction.SelectOption) (string, error) {
	p.titles = append(p.titles, title)
	if len(p.selects) == 0 {
		return options[0].Value, nil
	}
	value := p.selects[0]
	p.selects = p.selects[1:]
	return value, nil
}

func (p *fakePrompter) Confirm(title, _ string) (bool, error) {
	p.titles = append(p.titles, title)
	return p.confirm, nil
}

type recordPublisher struct {
	bundles []publishinfra.Bundle
}

func (r *recordPublisher) Publish(_ context.Context, bundle publishinfra.Bundle) (publishinfra.Result, error) {
	r.bundles = append(r.bundles, bundle)
	return publishinfra.Result{BuildID: "build-1", Uploaded: []string{bundle.Asset.Key}}, nil
}

func publisherFactory(rec *recordPublisher, seen *config.PublishConfig) func(context.Context, config.PublishConfig) (publish.Publisher, error) {
	return func(_ context.Context, cfg config.PublishConfig) (publish.Publisher, error) {
		*seen = cfg
		return rec, nil
	}
}
