// Where: internal/usecase/publish/publish_test.go
// What: Tests for the publish workflow.
// Why: Verify confirmation gating and bundle assembly.
package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/poruru-code/canary-topology/internal/infra/asset"
	"github.com/poruru-code/canary-topology/internal/infra/config"
	"github.com/poruru-code/canary-topology/internal/infra/interaction"
	publishinfra "github.com/poruru-code/canary-topology/internal/infra/publish"
	"github.com/poruru-code/canary-topology/internal/infra/ui"
	"github.com/poruru-code/canary-topology/internal/usecase/synth"
)

type testUI struct {
	success []string
	warn    []string
	blocks  []string
}

func (u *testUI) Success(msg string) { u.success = append(u.success, msg) }
func (u *testUI) Info(string)        {}
func (u *testUI) Warn(msg string)    { u.warn = append(u.warn, msg) }
func (u *testUI) Block(_, title string, _ []ui.KeyValue) {
	u.blocks = append(u.blocks, title)
}

type fakePrompter struct {
	answer bool
	err    error
	asked  int
}

func (p *fakePrompter) Input(string, []string) (string, error) { return "", nil }
func (p *fakePrompter) SelectValue(string, []interaction.SelectOption) (string, error) {
	return "", nil
}

func (p *fakePrompter) Confirm(string, string) (bool, error) {
	p.asked++
	return p.answer, p.err
}

type recordPublisher struct {
	bundles []publishinfra.Bundle
	err     error
}

func (r *recordPublisher) Publish(_ context.Context, bundle publishinfra.Bundle) (publishinfra.Result, error) {
	r.bundles = append(r.bundles, bundle)
	if r.err != nil {
		return publishinfra.Result{}, r.err
	}
	return publishinfra.Result{BuildID: "build-1", Uploaded: []string{bundle.Asset.Key}}, nil
}

func fakeSynth(calls *int) func(synth.Request) (synth.Result, error) {
	return func(synth.Request) (synth.Result, error) {
		*calls++
		return synth.Result{
			Asset:        asset.Asset{Hash: "abc", Key: "assets/abc.zip", ZipPath: "/out/assets/abc.zip"},
			TemplatePath: "/out/Stack.template.json",
			ManifestPath: "/out/manifest.json",
			Manifest: synth.Manifest{
				Stack:        "Stack",
				VersionLabel: "v1",
				Schedule:     "Canary10Percent5Minutes",
				Template:     synth.ManifestFile{Path: "Stack.template.json", Key: "builds/v1/Stack.template.json"},
			},
		}, nil
	}
}

func newWorkflow(calls *int, publisher *recordPublisher, prompter interaction.Prompter, out ui.UserInterface) Workflow {
	return Workflow{
		Synth: fakeSynth(calls),
		NewPublisher: func(context.Context, config.PublishConfig) (Publisher, error) {
			return publisher, nil
		},
		Prompter:      prompter,
		UserInterface: out,
	}
}

func requestWithBucket() Request {
	cfg := config.DefaultProjectConfig()
	cfg.Publish.Bucket = "canary-assets"
	return Request{Synth: synth.Request{Config: cfg}}
}

func TestRunWithYesSkipsPrompt(t *testing.T) {
	calls := 0
	publisher := &recordPublisher{}
	prompter := &fakePrompter{}
	out := &testUI{}
	req := requestWithBucket()
	req.Yes = true

	result, err := newWorkflow(&calls, publisher, prompter, out).Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if prompter.asked != 0 {
		t.Fatalf("--yes must skip the prompt")
	}
	if result.BuildID != "build-1" || len(publisher.bundles) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	bundle := publisher.bundles[0]
	if bundle.Template.Key != "builds/v1/Stack.template.json" || bundle.Asset.ContentType != "application/zip" {
		t.Fatalf("unexpected bundle %+v", bundle)
	}
	if len(bundle.Extra) != 1 || bundle.Extra[0].Key != "builds/v1/manifest.json" {
		t.Fatalf("manifest must be published next to the template: %+v", bundle.Extra)
	}
	if len(out.blocks) != 1 || len(out.success) != 1 {
		t.Fatalf("expected report output")
	}
}

func TestRunInteractiveConfirmation(t *testing.T) {
	calls := 0
	publisher := &recordPublisher{}
	req := requestWithBucket()
	req.Interactive = true

	declined := &fakePrompter{answer: false}
	if _, err := newWorkflow(&calls, publisher, declined, nil).Run(context.Background(), req); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if len(publisher.bundles) != 0 {
		t.Fatalf("declined publish must not upload")
	}

	accepted := &fakePrompter{answer: true}
	if _, err := newWorkflow(&calls, publisher, accepted, nil).Run(context.Background(), req); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if accepted.asked != 1 || len(publisher.bundles) != 1 {
		t.Fatalf("expected one prompt and one upload")
	}
}

func TestRunNonInteractiveRequiresYes(t *testing.T) {
	calls := 0
	publisher := &recordPublisher{}
	_, err := newWorkflow(&calls, publisher, &fakePrompter{answer: true}, nil).Run(context.Background(), requestWithBucket())
	if !errors.Is(err, errConfirmationRequired) {
		t.Fatalf("expected errConfirmationRequired, got %v", err)
	}
}

func TestRunRequiresBucketBeforeSynth(t *testing.T) {
	calls := 0
	req := Request{Synth: synth.Request{Config: config.DefaultProjectConfig()}, Yes: true}
	_, err := newWorkflow(&calls, &recordPublisher{}, nil, nil).Run(context.Background(), req)
	if !errors.Is(err, errBucketRequired) {
		t.Fatalf("expected errBucketRequired, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("synth must not run without a bucket")
	}
}

func TestRunWrapsPublishError(t *testing.T) {
	calls := 0
	uploadErr := errors.New("access denied")
	req := requestWithBucket()
	req.Yes = true
	_, err := newWorkflow(&calls, &recordPublisher{err: uploadErr}, nil, nil).Run(context.Background(), req)
	if !errors.Is(err, uploadErr) {
		t.Fatalf("expected upload error, got %v", err)
	}
}

func TestRunRequiresDependencies(t *testing.T) {
	if _, err := (Workflow{}).Run(context.Background(), requestWithBucket()); !errors.Is(err, errSynthNotConfigured) {
		t.Fatalf("expected errSynthNotConfigured, got %v", err)
	}
	calls := 0
	w := Workflow{Synth: fakeSynth(&calls)}
	if _, err := w.Run(context.Background(), requestWithBucket()); !errors.Is(err, errPublisherNotConfigured) {
		t.Fatalf("expected errPublisherNotConfigured, got %v", err)
	}
}
