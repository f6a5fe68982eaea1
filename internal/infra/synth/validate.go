// Where: internal/infra/synth/validate.go
// What: Schema and reference validation for synthesized templates.
// Why: Catch malformed output before it reaches the deployment engine.
package synth

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/poruru-code/canary-topology/internal/domain/dag"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"sigs.k8s.io/yaml"
)

const schemaURL = "template.schema.json"

//go:embed schema/template.schema.json
var schemaSource []byte

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema

	errDanglingReference = errors.New("dangling reference")
)

// Validate checks a rendered template (JSON or YAML) against the embedded
// schema, then checks that every Ref, GetAtt and DependsOn target exists
// and that resources do not reference each other in a cycle.
func Validate(content []byte) error {
	sch, err := loadSchema()
	if err != nil {
		return err
	}

	jsonData, err := yaml.YAMLToJSON(content)
	if err != nil {
		return fmt.Errorf("convert yaml to json: %w", err)
	}
	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return fmt.Errorf("decode template json: %w", err)
	}
	if err := sch.Validate(document); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	var tmpl Template
	if err := json.Unmarshal(jsonData, &tmpl); err != nil {
		return fmt.Errorf("decode template: %w", err)
	}
	return checkReferences(tmpl)
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaSource)); err != nil {
			schemaErr = fmt.Errorf("load template schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile template schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// checkReferences resolves every intrinsic target and builds a dependency
// graph of resources. UpdatePolicy references are excluded because the
// engine does not treat them as creation dependencies.
func checkReferences(tmpl Template) error {
	known := func(name string) bool {
		if strings.HasPrefix(name, "AWS::") {
			return true
		}
		if _, ok := tmpl.Resources[name]; ok {
			return true
		}
		_, ok := tmpl.Parameters[name]
		return ok
	}

	names := make([]string, 0, len(tmpl.Resources))
	for name := range tmpl.Resources {
		names = append(names, name)
	}
	sort.Strings(names)

	graph := dag.NewDirectedAcyclicGraph[string]()
	for i, name := range names {
		if err := graph.AddVertex(name, i); err != nil {
			return err
		}
	}

	problems := []string{}
	for _, name := range names {
		resource := tmpl.Resources[name]
		targets := append([]string{}, resource.DependsOn...)
		targets = append(targets, collectTargets(resource.Properties)...)
		for _, target := range collectTargets(resource.UpdatePolicy) {
			if !known(target) {
				problems = append(problems, fmt.Sprintf("%s.UpdatePolicy -> %s", name, target))
			}
		}

		deps := []string{}
		for _, target := range targets {
			if !known(target) {
				problems = append(problems, fmt.Sprintf("%s -> %s", name, target))
				continue
			}
			if _, isResource := tmpl.Resources[target]; isResource && target != name {
				deps = append(deps, target)
			}
		}
		if err := graph.AddDependencies(name, deps); err != nil {
			return fmt.Errorf("resource %s: %w", name, err)
		}
	}
	for name, output := range tmpl.Outputs {
		for _, target := range collectTargets(output.Value) {
			if !known(target) {
				problems = append(problems, fmt.Sprintf("Outputs.%s -> %s", name, target))
			}
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("%w: %s", errDanglingReference, strings.Join(problems, ", "))
	}
	return nil
}

// collectTargets walks an intrinsic tree and returns Ref/GetAtt targets.
func collectTargets(value any) []string {
	out := []string{}
	var walk func(any)
	walk = func(node any) {
		switch typed := node.(type) {
		case map[string]any:
			if target, ok := typed["Ref"].(string); ok && len(typed) == 1 {
				out = append(out, target)
				return
			}
			if args, ok := typed["Fn::GetAtt"].([]any); ok && len(typed) == 1 && len(args) > 0 {
				if target, ok := args[0].(string); ok {
					out = append(out, target)
				}
				return
			}
			for _, child := range typed {
				walk(child)
			}
		case []any:
			for _, child := range typed {
				walk(child)
			}
		}
	}
	walk(value)
	return out
}
