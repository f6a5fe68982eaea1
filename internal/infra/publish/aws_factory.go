// Where: internal/infra/publish/aws_factory.go
// What: AWS client factory for asset storage and the build ledger.
// Why: Encapsulate SDK configuration, credentials and local endpoints.
package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const DefaultRegion = "us-east-1"

// ClientFactory builds the storage and ledger clients used by Publisher.
type ClientFactory interface {
	S3(ctx context.Context) (ObjectStore, error)
	DynamoDB(ctx context.Context) (BuildLedger, error)
}

// AWSSettings configures SDK clients. Empty credentials fall back to the
// SDK default chain; Endpoint targets an S3/DynamoDB-compatible local stack.
type AWSSettings struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewClientFactory returns an aws-sdk-go-v2 backed factory.
func NewClientFactory(settings AWSSettings) ClientFactory {
	return awsClientFactory{settings: settings}
}

type awsClientFactory struct {
	settings AWSSettings
}

func (f awsClientFactory) S3(ctx context.Context) (ObjectStore, error) {
	cfg, err := loadAWSConfig(ctx, f.settings)
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimSpace(f.settings.Endpoint)
	client := s3.NewFromConfig(cfg, func(options *s3.Options) {
		if endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
			options.UsePathStyle = true
		}
	})
	return awsS3Client{client: client, region: cfg.Region}, nil
}

func (f awsClientFactory) DynamoDB(ctx context.Context) (BuildLedger, error) {
	cfg, err := loadAWSConfig(ctx, f.settings)
	if err != nil {
		return nil, err
	}
	endpoint := strings.TrimSpace(f.settings.Endpoint)
	client := dynamodb.NewFromConfig(cfg, func(options *dynamodb.Options) {
		if endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
		}
	})
	return awsDynamoClient{client: client}, nil
}

func loadAWSConfig(ctx context.Context, settings AWSSettings) (aws.Config, error) {
	region := strings.TrimSpace(settings.Region)
	if region == "" {
		region = DefaultRegion
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if settings.AccessKey != "" && settings.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(settings.AccessKey, settings.SecretKey, "")
		opts = append(opts, config.WithCredentialsProvider(creds))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}
