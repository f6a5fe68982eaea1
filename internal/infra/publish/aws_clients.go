// Where: internal/infra/publish/aws_clients.go
// What: AWS SDK adapters for S3 and DynamoDB.
// Why: Map publish types to SDK calls behind small interfaces.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithy "github.com/aws/smithy-go"
)

type awsS3Client struct {
	client *s3.Client
	region string
}

func (c awsS3Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if c.client == nil {
		return false, fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func (c awsS3Client) CreateBucket(ctx context.Context, bucket string) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.CreateBucket(ctx, createBucketInput(bucket, c.region))
	return err
}

// createBucketInput adds a location constraint outside us-east-1, which
// rejects an explicit one.
func createBucketInput(bucket, region string) *s3.CreateBucketInput {
	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	if region != "" && region != DefaultRegion {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(region),
		}
	}
	return input
}

func (c awsS3Client) ObjectExists(ctx context.Context, bucket, key string) (bool, error) {
	if c.client == nil {
		return false, fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

func (c awsS3Client) PutObject(ctx context.Context, bucket, key, contentType string, body io.Reader) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	return err
}

func isNotFound(err error) bool {
	var notFound *s3types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var noSuchKey *s3types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	return false
}

type awsDynamoClient struct {
	client *dynamodb.Client
}

func (c awsDynamoClient) PutBuild(ctx context.Context, table string, record BuildRecord) error {
	if c.client == nil {
		return fmt.Errorf("dynamodb client is nil")
	}
	_, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(table),
		Item:                buildItem(record),
		ConditionExpression: aws.String("attribute_not_exists(BuildId)"),
	})
	return err
}

func buildItem(record BuildRecord) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"BuildId":      &types.AttributeValueMemberS{Value: record.BuildID},
		"Stack":        &types.AttributeValueMemberS{Value: record.Stack},
		"VersionLabel": &types.AttributeValueMemberS{Value: record.VersionLabel},
		"TemplateKey":  &types.AttributeValueMemberS{Value: record.TemplateKey},
		"AssetKey":     &types.AttributeValueMemberS{Value: record.AssetKey},
		"AssetHash":    &types.AttributeValueMemberS{Value: record.AssetHash},
		"Schedule":     &types.AttributeValueMemberS{Value: record.Schedule},
		"CreatedAt":    &types.AttributeValueMemberS{Value: record.CreatedAt.UTC().Format(timeLayout)},
		"CreatedAtUnix": &types.AttributeValueMemberN{
			Value: strconv.FormatInt(record.CreatedAt.Unix(), 10),
		},
	}
}
