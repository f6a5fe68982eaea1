// Where: internal/constants/env.go
// What: Environment variable naming constants.
// Why: Centralize environment variable names to avoid typos and inconsistencies.
package constants

const (
	// Project Configuration
	EnvProjectDir = "CANARY_PROJECT_DIR"
	EnvStackName  = "CANARY_STACK_NAME"
	EnvOutputDir  = "CANARY_OUTPUT_DIR"
	EnvEmoji      = "CANARY_EMOJI"

	// Publish Configuration
	EnvAssetBucket = "CANARY_ASSET_BUCKET"
	EnvBuildTable  = "CANARY_BUILD_TABLE"
	EnvAWSEndpoint = "CANARY_AWS_ENDPOINT"

	// AWS SDK
	EnvAWSRegion          = "AWS_REGION"
	EnvAWSDefaultRegion   = "AWS_DEFAULT_REGION"
	EnvAWSAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvAWSSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
)
