// Where: internal/infra/config/project.go
// What: Project config (canary.yaml) load/save and defaults.
// Why: Keep stack settings in one versioned file next to the code.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poruru-code/canary-topology/internal/domain/topology"
	"github.com/poruru-code/canary-topology/internal/infra/fileops"
	"github.com/poruru-code/canary-topology/internal/meta"
	"gopkg.in/yaml.v3"
)

const configVersion = 1

// DefaultPublishPrefix is the object key prefix for published builds.
const DefaultPublishPrefix = "builds"

// ProjectConfig represents <project_root>/canary.yaml.
type ProjectConfig struct {
	Version  int               `yaml:"version"`
	Stack    StackConfig       `yaml:"stack"`
	Function FunctionConfig    `yaml:"function"`
	API      APIConfig         `yaml:"api"`
	Alarm    AlarmConfig       `yaml:"alarm"`
	Rollout  RolloutConfig     `yaml:"rollout"`
	Publish  PublishConfig     `yaml:"publish,omitempty"`
	Context  map[string]string `yaml:"context,omitempty"`
}

// StackConfig names the stack and where synthesized output lands.
type StackConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	OutputDir   string `yaml:"output_dir,omitempty"`
	Format      string `yaml:"format,omitempty"`
}

// FunctionConfig describes the compute unit.
type FunctionConfig struct {
	Runtime  string   `yaml:"runtime"`
	Handler  string   `yaml:"handler"`
	Code     string   `yaml:"code"`
	Policies []string `yaml:"policies,omitempty"`
}

// APIConfig describes the public endpoint.
type APIConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Stage       string `yaml:"stage,omitempty"`
}

// AlarmConfig describes the error alarm gating the rollout.
type AlarmConfig struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	Threshold   int    `yaml:"threshold,omitempty"`
	Periods     int    `yaml:"periods,omitempty"`
}

// RolloutConfig describes the traffic shift. AbortAlarms left unset
// selects the declared alarm; an explicit empty list is rejected.
type RolloutConfig struct {
	Application string   `yaml:"application,omitempty"`
	Alias       string   `yaml:"alias,omitempty"`
	Schedule    string   `yaml:"schedule,omitempty"`
	AbortAlarms []string `yaml:"abort_alarms,omitempty"`
}

// PublishConfig locates the asset bucket and build ledger.
type PublishConfig struct {
	Bucket   string `yaml:"bucket,omitempty"`
	Table    string `yaml:"table,omitempty"`
	Region   string `yaml:"region,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

// DefaultProjectConfig returns the workshop stack.
func DefaultProjectConfig() ProjectConfig {
	d := topology.DefaultConfig()
	return ProjectConfig{
		Version: configVersion,
		Stack: StackConfig{
			Name:      "CdkWorkshopStack",
			OutputDir: meta.OutputDir,
			Format:    "json",
		},
		Function: FunctionConfig{
			Runtime:  d.Runtime,
			Handler:  d.Handler,
			Code:     d.CodeSource,
			Policies: append([]string(nil), d.ManagedPolicies...),
		},
		API: APIConfig{Name: d.APIName, Description: d.APIDescription, Stage: d.Stage},
		Alarm: AlarmConfig{
			Name:        d.AlarmName,
			Description: d.AlarmDescription,
			Threshold:   d.AlarmThreshold,
			Periods:     d.AlarmPeriods,
		},
		Rollout: RolloutConfig{
			Application: d.ApplicationName,
			Alias:       d.AliasName,
			Schedule:    d.Schedule,
		},
		Publish: PublishConfig{Prefix: DefaultPublishPrefix},
	}
}

// TopologyConfig maps the file onto the topology declaration settings.
func (c ProjectConfig) TopologyConfig() topology.Config {
	var abort []string
	if c.Rollout.AbortAlarms != nil {
		abort = append([]string{}, c.Rollout.AbortAlarms...)
	}
	return topology.Config{
		Runtime:          c.Function.Runtime,
		Handler:          c.Function.Handler,
		CodeSource:       c.Function.Code,
		ManagedPolicies:  append([]string(nil), c.Function.Policies...),
		AliasName:        c.Rollout.Alias,
		AlarmName:        c.Alarm.Name,
		AlarmDescription: c.Alarm.Description,
		AlarmThreshold:   c.Alarm.Threshold,
		AlarmPeriods:     c.Alarm.Periods,
		ApplicationName:  c.Rollout.Application,
		Schedule:         c.Rollout.Schedule,
		AbortAlarms:      abort,
		APIName:          c.API.Name,
		APIDescription:   c.API.Description,
		Stage:            c.API.Stage,
	}
}

// ProjectConfigPath returns the path to the project config file.
func ProjectConfigPath(projectRoot string) (string, error) {
	root := strings.TrimSpace(projectRoot)
	if root == "" {
		return "", fmt.Errorf("project root is required")
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return filepath.Join(root, meta.ConfigFile), nil
}

// LoadProjectConfig reads and parses a project configuration file.
// Unset fields keep their zero value; topology defaults apply later.
func LoadProjectConfig(path string) (ProjectConfig, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return ProjectConfig{}, fmt.Errorf("read project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return ProjectConfig{}, fmt.Errorf("decode project config: %w", err)
	}
	if cfg.Version > configVersion {
		return ProjectConfig{}, fmt.Errorf("project config version %d is newer than supported %d", cfg.Version, configVersion)
	}
	if cfg.Context == nil {
		cfg.Context = map[string]string{}
	}
	return cfg, nil
}

// SaveProjectConfig writes cfg to path.
func SaveProjectConfig(path string, cfg ProjectConfig) error {
	if cfg.Version == 0 {
		cfg.Version = configVersion
	}
	payload, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("encode project config: %w", err)
	}
	if err := fileops.WriteFile(path, payload); err != nil {
		return fmt.Errorf("write project config: %w", err)
	}
	return nil
}
