// Where: internal/usecase/publish/publish.go
// What: Publish workflow orchestration.
// Why: Synthesize, confirm, then upload and record the build.
package publish

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/poruru-code/canary-topology/internal/infra/config"
	"github.com/poruru-code/canary-topology/internal/infra/interaction"
	publishinfra "github.com/poruru-code/canary-topology/internal/infra/publish"
	"github.com/poruru-code/canary-topology/internal/infra/ui"
	"github.com/poruru-code/canary-topology/internal/usecase/synth"
)

var (
	errSynthNotConfigured     = errors.New("synth is not configured")
	errPublisherNotConfigured = errors.New("publisher is not configured")
	errBucketRequired         = errors.New("asset bucket is required (publish.bucket or CANARY_ASSET_BUCKET)")
	errConfirmationRequired   = errors.New("publish needs confirmation: rerun with --yes when not interactive")

	// ErrCancelled is returned when the user declines the confirmation.
	ErrCancelled = errors.New("publish cancelled")
)

// Publisher uploads a bundle.
type Publisher interface {
	Publish(ctx context.Context, bundle publishinfra.Bundle) (publishinfra.Result, error)
}

// Request captures the inputs of one publish run.
type Request struct {
	Synth       synth.Request
	Yes         bool
	Interactive bool
}

// Workflow runs publish.
type Workflow struct {
	Synth         func(synth.Request) (synth.Result, error)
	NewPublisher  func(ctx context.Context, cfg config.PublishConfig) (Publisher, error)
	Prompter      interaction.Prompter
	UserInterface ui.UserInterface
}

// Run synthesizes req, asks for confirmation unless req.Yes, and
// publishes the result.
func (w Workflow) Run(ctx context.Context, req Request) (publishinfra.Result, error) {
	if w.Synth == nil {
		return publishinfra.Result{}, errSynthNotConfigured
	}
	if w.NewPublisher == nil {
		return publishinfra.Result{}, errPublisherNotConfigured
	}
	publishCfg := req.Synth.Config.Publish
	if strings.TrimSpace(publishCfg.Bucket) == "" {
		return publishinfra.Result{}, errBucketRequired
	}

	synthesized, err := w.Synth(req.Synth)
	if err != nil {
		return publishinfra.Result{}, err
	}
	bundle := bundleOf(synthesized)

	if !req.Yes {
		if err := w.confirm(req, publishCfg, bundle); err != nil {
			return publishinfra.Result{}, err
		}
	}

	publisher, err := w.NewPublisher(ctx, publishCfg)
	if err != nil {
		return publishinfra.Result{}, err
	}
	result, err := publisher.Publish(ctx, bundle)
	if err != nil {
		return result, fmt.Errorf("publish %s: %w", bundle.Stack, err)
	}
	w.report(publishCfg, bundle, result)
	return result, nil
}

func (w Workflow) confirm(req Request, cfg config.PublishConfig, bundle publishinfra.Bundle) error {
	if !req.Interactive || w.Prompter == nil {
		return errConfirmationRequired
	}
	description := fmt.Sprintf("%s %s to s3://%s", bundle.Stack, bundle.VersionLabel, cfg.Bucket)
	ok, err := w.Prompter.Confirm("Publish this build?", description)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}
	return nil
}

func bundleOf(result synth.Result) publishinfra.Bundle {
	manifest := result.Manifest
	contentType := "application/json"
	if strings.EqualFold(filepath.Ext(result.TemplatePath), ".yaml") {
		contentType = "application/yaml"
	}
	manifestKey := ""
	if manifest.Template.Key != "" {
		manifestKey = path.Join(path.Dir(manifest.Template.Key), filepath.Base(result.ManifestPath))
	}
	return publishinfra.Bundle{
		Stack:        manifest.Stack,
		VersionLabel: manifest.VersionLabel,
		Schedule:     manifest.Schedule,
		AssetHash:    result.Asset.Hash,
		Asset:        publishinfra.File{Path: result.Asset.ZipPath, Key: result.Asset.Key, ContentType: "application/zip"},
		Template:     publishinfra.File{Path: result.TemplatePath, Key: manifest.Template.Key, ContentType: contentType},
		Extra: []publishinfra.File{
			{Path: result.ManifestPath, Key: manifestKey, ContentType: "application/json"},
		},
	}
}

func (w Workflow) report(cfg config.PublishConfig, bundle publishinfra.Bundle, result publishinfra.Result) {
	if w.UserInterface == nil {
		return
	}
	rows := []ui.KeyValue{
		{Key: "Build", Value: result.BuildID},
		{Key: "Bucket", Value: cfg.Bucket},
		{Key: "Template", Value: bundle.Template.Key},
		{Key: "Uploaded", Value: len(result.Uploaded)},
		{Key: "Skipped", Value: len(result.Skipped)},
	}
	if result.BucketCreated {
		rows = append(rows, ui.KeyValue{Key: "Bucket created", Value: true})
	}
	if result.Recorded {
		rows = append(rows, ui.KeyValue{Key: "Ledger", Value: cfg.Table})
	}
	w.UserInterface.Block("📦", "Published", rows)
	w.UserInterface.Success(fmt.Sprintf("Published %s %s", bundle.Stack, bundle.VersionLabel))
}
