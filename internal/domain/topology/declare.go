// Where: internal/domain/topology/declare.go
// What: The fixed canary deployment topology.
// Why: Declare role, function, version, alias, alarm, rollout and API in one pass.
package topology

import (
	"fmt"
	"strings"

	"github.com/poruru-code/canary-topology/internal/domain/rollout"
)

// Construct ids of the declared topology.
const (
	IDExecutionRole   ResourceID = "LambdaExecutionRole"
	IDFunction        ResourceID = "LambdaFunction"
	IDVersion         ResourceID = "LambdaVersion"
	IDAlias           ResourceID = "LambdaAlias"
	IDErrorAlarm      ResourceID = "LambdaErrorAlarm"
	IDApplication     ResourceID = "CodeDeployApplication"
	IDDeploymentGroup ResourceID = "DeploymentGroup"
	IDRestAPI         ResourceID = "RestAPI"
)

const (
	DefaultAliasName   = "live"
	DefaultBasicPolicy = "service-role/AWSLambdaBasicExecutionRole"
)

// Config is the optional configuration passed through to Declare. Zero
// values fall back to the workshop defaults.
type Config struct {
	Runtime         string
	Handler         string
	CodeSource      string
	ManagedPolicies []string

	AliasName string

	AlarmName        string
	AlarmDescription string
	AlarmThreshold   int
	AlarmPeriods     int

	ApplicationName string
	Schedule        string
	// AbortAlarms names the alarms that gate the rollout. nil selects the
	// declared error alarm; a non-nil list is resolved by alarm name, so
	// an empty list or an unknown name fails the build.
	AbortAlarms []string

	APIName        string
	APIDescription string
	Stage          string
}

// DefaultConfig returns the workshop topology settings.
func DefaultConfig() Config {
	return Config{
		Runtime:          "python3.9",
		Handler:          "handler.lambda_handler",
		CodeSource:       "lambda",
		ManagedPolicies:  []string{DefaultBasicPolicy},
		AliasName:        DefaultAliasName,
		AlarmName:        string(IDErrorAlarm),
		AlarmDescription: "Triggers if Lambda errors exceed 1.",
		AlarmThreshold:   1,
		AlarmPeriods:     1,
		ApplicationName:  "LambdaCanaryApplication",
		Schedule:         rollout.Default.Name,
		APIName:          string(IDRestAPI),
		APIDescription:   "Example API Gateway",
		Stage:            "prod",
	}
}

// WithDefaults fills unset fields from DefaultConfig. AbortAlarms is
// copied as-is so an explicit empty list survives.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	pick := func(value, fallback string) string {
		if strings.TrimSpace(value) == "" {
			return fallback
		}
		return value
	}
	out := c
	out.Runtime = pick(c.Runtime, d.Runtime)
	out.Handler = pick(c.Handler, d.Handler)
	out.CodeSource = pick(c.CodeSource, d.CodeSource)
	if len(c.ManagedPolicies) == 0 {
		out.ManagedPolicies = d.ManagedPolicies
	}
	out.AliasName = pick(c.AliasName, d.AliasName)
	out.AlarmName = pick(c.AlarmName, d.AlarmName)
	out.AlarmDescription = pick(c.AlarmDescription, d.AlarmDescription)
	if c.AlarmThreshold == 0 {
		out.AlarmThreshold = d.AlarmThreshold
	}
	if c.AlarmPeriods == 0 {
		out.AlarmPeriods = d.AlarmPeriods
	}
	out.ApplicationName = pick(c.ApplicationName, d.ApplicationName)
	out.Schedule = pick(c.Schedule, d.Schedule)
	out.APIName = pick(c.APIName, d.APIName)
	out.APIDescription = pick(c.APIDescription, d.APIDescription)
	out.Stage = pick(c.Stage, d.Stage)
	return out
}

// Warnings flags settings that are legal but unusual.
func (c Config) Warnings() []string {
	cfg := c.WithDefaults()
	warnings := []string{}
	if cfg.AlarmThreshold == 1 && cfg.AlarmPeriods == 1 {
		warnings = append(warnings, "alarm threshold 1 over 1 period aborts the rollout on any single error")
	}
	return warnings
}

// Declare builds the canary topology inside scope. It either returns a
// complete graph or an error; no partial graph escapes.
func Declare(scope *Scope, cfg Config) (*Graph, error) {
	if scope == nil {
		return nil, errScopeIDRequired
	}
	cfg = cfg.WithDefaults()
	schedule, err := rollout.Lookup(cfg.Schedule)
	if err != nil {
		return nil, declErr(KindRollout, IDDeploymentGroup, fmt.Errorf("%w: %w", ErrInvalidEntity, err))
	}

	b := NewBuilder(scope)
	role, err := b.Identity(IdentityInput{
		ID:              IDExecutionRole,
		TrustPrincipal:  ServicePrincipalLambda,
		ManagedPolicies: cfg.ManagedPolicies,
	})
	if err != nil {
		return nil, err
	}
	fn, err := b.ComputeUnit(ComputeUnitInput{
		ID:         IDFunction,
		Runtime:    cfg.Runtime,
		Handler:    cfg.Handler,
		CodeSource: cfg.CodeSource,
		Identity:   role,
	})
	if err != nil {
		return nil, err
	}
	version, err := b.Version(IDVersion, fn)
	if err != nil {
		return nil, err
	}
	alias, err := b.Alias(IDAlias, cfg.AliasName, version)
	if err != nil {
		return nil, err
	}
	alarm, err := b.Alarm(AlarmInput{
		ID:                IDErrorAlarm,
		Name:              cfg.AlarmName,
		Description:       cfg.AlarmDescription,
		Source:            fn,
		Metric:            MetricErrors,
		Threshold:         cfg.AlarmThreshold,
		EvaluationPeriods: cfg.AlarmPeriods,
	})
	if err != nil {
		return nil, err
	}
	if _, err := b.Rollout(RolloutInput{
		ID:              IDDeploymentGroup,
		ApplicationID:   IDApplication,
		ApplicationName: cfg.ApplicationName,
		Alias:           alias,
		Schedule:        schedule,
		AbortAlarms:     selectAlarms(cfg.AbortAlarms, alarm),
	}); err != nil {
		return nil, err
	}
	if _, err := b.Endpoint(EndpointInput{
		ID:          IDRestAPI,
		Name:        cfg.APIName,
		Description: cfg.APIDescription,
		Stage:       cfg.Stage,
		Target:      fn,
	}); err != nil {
		return nil, err
	}
	return b.Build()
}

// selectAlarms maps configured alarm names onto declared alarms. Unknown
// names resolve to a nil entry, which the builder rejects as undeclared.
func selectAlarms(names []string, declared ...*HealthAlarm) []*HealthAlarm {
	if names == nil {
		return declared
	}
	out := make([]*HealthAlarm, 0, len(names))
	for _, name := range names {
		var match *HealthAlarm
		for _, alarm := range declared {
			if alarm.Name == strings.TrimSpace(name) || string(alarm.ID()) == strings.TrimSpace(name) {
				match = alarm
				break
			}
		}
		out = append(out, match)
	}
	return out
}
