// Where: internal/infra/config/env.go
// What: Environment overrides and .env loading.
// Why: Let CI override stack and publish settings without editing canary.yaml.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poruru-code/canary-topology/internal/constants"
)

// LoadEnvFile loads path into the process environment. Existing variables
// win. When path is empty, .env in the working directory is loaded if
// present. It reports whether a file was loaded.
func LoadEnvFile(path string) (bool, error) {
	if strings.TrimSpace(path) != "" {
		if err := godotenv.Load(path); err != nil {
			return false, fmt.Errorf("load env file %s: %w", path, err)
		}
		return true, nil
	}
	if _, err := os.Stat(".env"); err != nil {
		return false, nil
	}
	if err := godotenv.Load(); err != nil {
		return false, fmt.Errorf("load .env: %w", err)
	}
	return true, nil
}

// ApplyEnv returns cfg with environment overrides applied.
func ApplyEnv(cfg ProjectConfig, getenv func(string) string) ProjectConfig {
	if getenv == nil {
		getenv = os.Getenv
	}
	set := func(target *string, keys ...string) {
		for _, key := range keys {
			if value := strings.TrimSpace(getenv(key)); value != "" {
				*target = value
				return
			}
		}
	}
	set(&cfg.Stack.Name, constants.EnvStackName)
	set(&cfg.Stack.OutputDir, constants.EnvOutputDir)
	set(&cfg.Publish.Bucket, constants.EnvAssetBucket)
	set(&cfg.Publish.Table, constants.EnvBuildTable)
	set(&cfg.Publish.Endpoint, constants.EnvAWSEndpoint)
	set(&cfg.Publish.Region, constants.EnvAWSRegion, constants.EnvAWSDefaultRegion)
	return cfg
}

// MergeContext overlays values onto cfg.Context.
func MergeContext(cfg ProjectConfig, values map[string]string) ProjectConfig {
	merged := make(map[string]string, len(cfg.Context)+len(values))
	for key, value := range cfg.Context {
		merged[key] = value
	}
	for key, value := range values {
		merged[key] = value
	}
	cfg.Context = merged
	return cfg
}

// ParseContextPairs parses repeated key=value flags.
func ParseContextPairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid context %q: expected key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}
