// Where: internal/infra/synth/template.go
// What: CloudFormation template model, intrinsics and rendering.
// Why: Give synthesis a typed document that renders to JSON or YAML.
package synth

import (
	"encoding/json"
	"fmt"

	"github.com/poruru-code/canary-topology/internal/domain/topology"
	"sigs.k8s.io/yaml"
)

const templateFormatVersion = "2010-09-09"

// Template is a CloudFormation template document.
type Template struct {
	AWSTemplateFormatVersion string               `json:"AWSTemplateFormatVersion"`
	Description              string               `json:"Description,omitempty"`
	Parameters               map[string]Parameter `json:"Parameters,omitempty"`
	Resources                map[string]Resource  `json:"Resources"`
	Outputs                  map[string]Output    `json:"Outputs,omitempty"`

	logicalIDs map[topology.ResourceID]string
}

// Parameter is a template input parameter.
type Parameter struct {
	Type        string `json:"Type"`
	Description string `json:"Description,omitempty"`
	Default     string `json:"Default,omitempty"`
}

// Resource is a single template resource.
type Resource struct {
	Type         string         `json:"Type"`
	Properties   map[string]any `json:"Properties,omitempty"`
	DependsOn    []string       `json:"DependsOn,omitempty"`
	UpdatePolicy map[string]any `json:"UpdatePolicy,omitempty"`
	Metadata     map[string]any `json:"Metadata,omitempty"`
}

// Output is a published template value.
type Output struct {
	Description string `json:"Description,omitempty"`
	Value       any    `json:"Value"`
}

// LogicalID returns the logical id synthesized for a topology entity.
func (t *Template) LogicalID(id topology.ResourceID) (string, bool) {
	logical, ok := t.logicalIDs[id]
	return logical, ok
}

// JSON renders the template as indented JSON.
func (t *Template) JSON() ([]byte, error) {
	payload, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode template json: %w", err)
	}
	return append(payload, '\n'), nil
}

// YAML renders the template as YAML.
func (t *Template) YAML() ([]byte, error) {
	payload, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode template json: %w", err)
	}
	out, err := yaml.JSONToYAML(payload)
	if err != nil {
		return nil, fmt.Errorf("convert template to yaml: %w", err)
	}
	return out, nil
}

// Render encodes the template in format ("json" or "yaml").
func (t *Template) Render(format string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return t.JSON()
	case FormatYAML:
		return t.YAML()
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedFormat, format)
	}
}

func ref(name string) map[string]any {
	return map[string]any{"Ref": name}
}

func getAtt(name, attribute string) map[string]any {
	return map[string]any{"Fn::GetAtt": []any{name, attribute}}
}

func join(parts ...any) map[string]any {
	return map[string]any{"Fn::Join": []any{"", parts}}
}
