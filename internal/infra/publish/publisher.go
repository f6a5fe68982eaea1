// Where: internal/infra/publish/publisher.go
// What: Upload synthesized bundles and record builds.
// Why: Make the asset bucket the single source the deployment engine reads.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const timeLayout = time.RFC3339

var (
	errBucketRequired = errors.New("asset bucket is required")
	errStoreRequired  = errors.New("object store is required")
	errLedgerRequired = errors.New("build ledger is required when a table is configured")
)

// ObjectStore is the subset of S3 used for publishing.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	CreateBucket(ctx context.Context, bucket string) error
	ObjectExists(ctx context.Context, bucket, key string) (bool, error)
	PutObject(ctx context.Context, bucket, key, contentType string, body io.Reader) error
}

// BuildLedger records published builds.
type BuildLedger interface {
	PutBuild(ctx context.Context, table string, record BuildRecord) error
}

// BuildRecord is one row of the build ledger.
type BuildRecord struct {
	BuildID      string
	Stack        string
	VersionLabel string
	Schedule     string
	TemplateKey  string
	AssetKey     string
	AssetHash    string
	CreatedAt    time.Time
}

// File is a local file published under Key.
type File struct {
	Path        string
	Key         string
	ContentType string
}

// Bundle is the output of one synth run.
type Bundle struct {
	Stack        string
	VersionLabel string
	Schedule     string
	AssetHash    string
	Asset        File
	Template     File
	Extra        []File
}

// Result summarizes a publish run.
type Result struct {
	BuildID       string
	BucketCreated bool
	Uploaded      []string
	Skipped       []string
	Recorded      bool
}

// Publisher uploads bundles to Bucket and, when Table is set, records
// them in Ledger.
type Publisher struct {
	Store  ObjectStore
	Ledger BuildLedger
	Bucket string
	Table  string

	Now   func() time.Time
	NewID func() string
}

// Publish ensures the bucket exists, uploads every file of bundle that is
// not already stored, then records the build.
func (p Publisher) Publish(ctx context.Context, bundle Bundle) (Result, error) {
	bucket := strings.TrimSpace(p.Bucket)
	if bucket == "" {
		return Result{}, errBucketRequired
	}
	if p.Store == nil {
		return Result{}, errStoreRequired
	}
	table := strings.TrimSpace(p.Table)
	if table != "" && p.Ledger == nil {
		return Result{}, errLedgerRequired
	}

	result := Result{BuildID: p.newID()}
	exists, err := p.Store.BucketExists(ctx, bucket)
	if err != nil {
		return result, fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := p.Store.CreateBucket(ctx, bucket); err != nil {
			return result, fmt.Errorf("create bucket %s: %w", bucket, err)
		}
		result.BucketCreated = true
	}

	files := append([]File{bundle.Asset, bundle.Template}, bundle.Extra...)
	for _, file := range files {
		if strings.TrimSpace(file.Key) == "" {
			continue
		}
		uploaded, err := p.upload(ctx, bucket, file)
		if err != nil {
			return result, err
		}
		if uploaded {
			result.Uploaded = append(result.Uploaded, file.Key)
		} else {
			result.Skipped = append(result.Skipped, file.Key)
		}
	}

	if table == "" {
		return result, nil
	}
	record := BuildRecord{
		BuildID:      result.BuildID,
		Stack:        bundle.Stack,
		VersionLabel: bundle.VersionLabel,
		Schedule:     bundle.Schedule,
		TemplateKey:  bundle.Template.Key,
		AssetKey:     bundle.Asset.Key,
		AssetHash:    bundle.AssetHash,
		CreatedAt:    p.now(),
	}
	if err := p.Ledger.PutBuild(ctx, table, record); err != nil {
		return result, fmt.Errorf("record build %s: %w", record.BuildID, err)
	}
	result.Recorded = true
	return result, nil
}

// upload stores file unless the key already exists. Keys are content
// addressed or build scoped, so an existing object is never rewritten.
func (p Publisher) upload(ctx context.Context, bucket string, file File) (bool, error) {
	exists, err := p.Store.ObjectExists(ctx, bucket, file.Key)
	if err != nil {
		return false, fmt.Errorf("check object %s: %w", file.Key, err)
	}
	if exists {
		return false, nil
	}
	f, err := os.Open(file.Path)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", file.Path, err)
	}
	defer f.Close()
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := p.Store.PutObject(ctx, bucket, file.Key, contentType, f); err != nil {
		return false, fmt.Errorf("upload %s: %w", file.Key, err)
	}
	return true, nil
}

func (p Publisher) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p Publisher) newID() string {
	if p.NewID != nil {
		return p.NewID()
	}
	return uuid.NewString()
}

// NewPublisher wires a Publisher from factory. The ledger client is only
// created when table is set.
func NewPublisher(ctx context.Context, factory ClientFactory, bucket, table string) (Publisher, error) {
	if factory == nil {
		return Publisher{}, fmt.Errorf("client factory is nil")
	}
	store, err := factory.S3(ctx)
	if err != nil {
		return Publisher{}, fmt.Errorf("create s3 client: %w", err)
	}
	publisher := Publisher{Store: store, Bucket: bucket, Table: table}
	if strings.TrimSpace(table) != "" {
		ledger, err := factory.DynamoDB(ctx)
		if err != nil {
			return Publisher{}, fmt.Errorf("create dynamodb client: %w", err)
		}
		publisher.Ledger = ledger
	}
	return publisher, nil
}
