// Where: internal/domain/topology/builder.go
// What: Explicit builder that declares topology entities in dependency order.
// Why: Return typed, validated references and fail fast on broken links.
package topology

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/poruru-code/canary-topology/internal/domain/dag"
	"github.com/poruru-code/canary-topology/internal/domain/rollout"
)

var (
	resourceIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)
	aliasNamePattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)
	digitsPattern     = regexp.MustCompile(`^[0-9]+$`)
)

// KnownRuntimes lists the runtime identifiers a ComputeUnit may use.
var KnownRuntimes = []string{
	"python3.9", "python3.10", "python3.11", "python3.12", "python3.13",
	"nodejs18.x", "nodejs20.x", "nodejs22.x",
	"java11", "java17", "java21",
	"dotnet8", "ruby3.3",
	"provided.al2", "provided.al2023",
}

// IdentityInput declares an IdentityBinding.
type IdentityInput struct {
	ID              ResourceID
	TrustPrincipal  string
	ManagedPolicies []string
}

// ComputeUnitInput declares a ComputeUnit.
type ComputeUnitInput struct {
	ID         ResourceID
	Runtime    string
	Handler    string
	CodeSource string
	Identity   *IdentityBinding
}

// AlarmInput declares a HealthAlarm. Metric defaults to MetricErrors.
type AlarmInput struct {
	ID                ResourceID
	Name              string
	Description       string
	Source            *ComputeUnit
	Metric            string
	Threshold         int
	EvaluationPeriods int
}

// RolloutInput declares a RolloutPolicy. A zero Schedule means
// rollout.Default.
type RolloutInput struct {
	ID              ResourceID
	ApplicationID   ResourceID
	ApplicationName string
	Alias           *ComputeAlias
	Schedule        rollout.Schedule
	AbortAlarms     []*HealthAlarm
}

// EndpointInput declares a PublicEndpoint. Stage defaults to "prod".
type EndpointInput struct {
	ID          ResourceID
	Name        string
	Description string
	Stage       string
	Target      *ComputeUnit
}

// Builder declares the entities of one Scope. It is single use: after
// the first error every call returns that error, and after Build it
// rejects further declarations.
type Builder struct {
	scope    *Scope
	graph    *dag.DirectedAcyclicGraph[ResourceID]
	entities map[ResourceID]Entity
	byKind   map[Kind]Entity
	next     int
	err      error
	sealed   bool
}

// NewBuilder starts a declaration inside scope.
func NewBuilder(scope *Scope) *Builder {
	return &Builder{
		scope:    scope,
		graph:    dag.NewDirectedAcyclicGraph[ResourceID](),
		entities: map[ResourceID]Entity{},
		byKind:   map[Kind]Entity{},
	}
}

// Identity declares the execution identity.
func (b *Builder) Identity(in IdentityInput) (*IdentityBinding, error) {
	if err := b.ready(KindIdentity, in.ID); err != nil {
		return nil, err
	}
	principal := strings.TrimSpace(in.TrustPrincipal)
	if principal == "" {
		principal = ServicePrincipalLambda
	}
	if principal != ServicePrincipalLambda {
		return nil, b.fail(invalidf(KindIdentity, in.ID, "trust principal must be %s, got %s", ServicePrincipalLambda, principal))
	}
	policies := uniqueTrimmed(in.ManagedPolicies)
	if len(policies) == 0 {
		return nil, b.fail(invalidf(KindIdentity, in.ID, "at least one managed policy is required"))
	}
	identity := &IdentityBinding{id: in.ID, TrustPrincipal: principal, ManagedPolicies: policies}
	if err := b.declare(identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// ComputeUnit declares the function bound to in.Identity.
func (b *Builder) ComputeUnit(in ComputeUnitInput) (*ComputeUnit, error) {
	if err := b.ready(KindUnit, in.ID); err != nil {
		return nil, err
	}
	if in.Identity == nil || !b.declared(in.Identity) {
		return nil, b.fail(undeclaredf(KindUnit, in.ID, "identity is not declared in this build"))
	}
	runtime := strings.TrimSpace(in.Runtime)
	if !slices.Contains(KnownRuntimes, runtime) {
		return nil, b.fail(invalidf(KindUnit, in.ID, "unsupported runtime %q", in.Runtime))
	}
	handler := strings.TrimSpace(in.Handler)
	if handler == "" {
		return nil, b.fail(invalidf(KindUnit, in.ID, "entry point is required"))
	}
	code := strings.TrimSpace(in.CodeSource)
	if code == "" {
		return nil, b.fail(invalidf(KindUnit, in.ID, "code source is required"))
	}
	unit := &ComputeUnit{id: in.ID, Runtime: runtime, Handler: handler, CodeSource: code, Identity: in.Identity}
	if err := b.declare(unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// Version snapshots unit at the scope's build time. Only one version may
// be declared per build.
func (b *Builder) Version(id ResourceID, unit *ComputeUnit) (*ComputeVersion, error) {
	if err := b.ready(KindVersion, id); err != nil {
		return nil, err
	}
	if unit == nil || !b.declared(unit) {
		return nil, b.fail(undeclaredf(KindVersion, id, "compute unit is not declared in this build"))
	}
	now := b.scope.Now()
	description, err := VersionDescription(now)
	if err != nil {
		return nil, b.fail(declErr(KindVersion, id, err))
	}
	version := &ComputeVersion{
		id:          id,
		Unit:        unit,
		Label:       CreationLabel(now),
		Description: description,
		CreatedAt:   now,
	}
	if err := b.declare(version); err != nil {
		return nil, err
	}
	return version, nil
}

// Alias declares a named pointer to version.
func (b *Builder) Alias(id ResourceID, name string, version *ComputeVersion) (*ComputeAlias, error) {
	if err := b.ready(KindAlias, id); err != nil {
		return nil, err
	}
	if version == nil || !b.declared(version) {
		return nil, b.fail(undeclaredf(KindAlias, id, "version is not declared in this build"))
	}
	trimmed := strings.TrimSpace(name)
	if !aliasNamePattern.MatchString(trimmed) || digitsPattern.MatchString(trimmed) {
		return nil, b.fail(invalidf(KindAlias, id, "invalid alias name %q", name))
	}
	alias := &ComputeAlias{id: id, Name: trimmed, Version: version}
	if err := b.declare(alias); err != nil {
		return nil, err
	}
	return alias, nil
}

// Alarm declares a threshold rule over a metric of in.Source.
func (b *Builder) Alarm(in AlarmInput) (*HealthAlarm, error) {
	if err := b.ready(KindAlarm, in.ID); err != nil {
		return nil, err
	}
	if in.Source == nil || !b.declared(in.Source) {
		return nil, b.fail(undeclaredf(KindAlarm, in.ID, "metric source is not declared in this build"))
	}
	if in.Threshold <= 0 {
		return nil, b.fail(invalidf(KindAlarm, in.ID, "threshold must be positive, got %d", in.Threshold))
	}
	if in.EvaluationPeriods <= 0 {
		return nil, b.fail(invalidf(KindAlarm, in.ID, "evaluation periods must be positive, got %d", in.EvaluationPeriods))
	}
	metric := strings.TrimSpace(in.Metric)
	if metric == "" {
		metric = MetricErrors
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = string(in.ID)
	}
	alarm := &HealthAlarm{
		id:                in.ID,
		Name:              name,
		Description:       strings.TrimSpace(in.Description),
		Source:            in.Source,
		Metric:            metric,
		Threshold:         in.Threshold,
		EvaluationPeriods: in.EvaluationPeriods,
	}
	if err := b.declare(alarm); err != nil {
		return nil, err
	}
	return alarm, nil
}

// Rollout declares the deployment application and group. Every abort
// alarm must already be declared; an alarm-less policy is rejected.
func (b *Builder) Rollout(in RolloutInput) (*RolloutPolicy, error) {
	if err := b.ready(KindRollout, in.ID); err != nil {
		return nil, err
	}
	if in.Alias == nil || !b.declared(in.Alias) {
		return nil, b.fail(undeclaredf(KindRollout, in.ID, "alias is not declared in this build"))
	}
	if len(in.AbortAlarms) == 0 {
		return nil, b.fail(undeclaredf(KindRollout, in.ID, "at least one declared abort alarm is required"))
	}
	alarms := make([]*HealthAlarm, 0, len(in.AbortAlarms))
	for i, alarm := range in.AbortAlarms {
		if alarm == nil || !b.declared(alarm) {
			return nil, b.fail(undeclaredf(KindRollout, in.ID, "abort alarm #%d is not declared in this build", i))
		}
		if !slices.Contains(alarms, alarm) {
			alarms = append(alarms, alarm)
		}
	}
	appName := strings.TrimSpace(in.ApplicationName)
	if appName == "" {
		return nil, b.fail(invalidf(KindRollout, in.ID, "application name is required"))
	}
	appID := in.ApplicationID
	if appID != "" && !resourceIDPattern.MatchString(string(appID)) {
		return nil, b.fail(invalidf(KindRollout, in.ID, "invalid application id %q", appID))
	}
	schedule := in.Schedule
	if schedule.Name == "" {
		schedule = rollout.Default
	}
	policy := &RolloutPolicy{
		id:              in.ID,
		ApplicationID:   appID,
		ApplicationName: appName,
		Alias:           in.Alias,
		Schedule:        schedule,
		AbortAlarms:     alarms,
	}
	if err := b.declare(policy); err != nil {
		return nil, err
	}
	return policy, nil
}

// Endpoint declares the catch-all HTTP front door for in.Target.
func (b *Builder) Endpoint(in EndpointInput) (*PublicEndpoint, error) {
	if err := b.ready(KindEndpoint, in.ID); err != nil {
		return nil, err
	}
	if in.Target == nil || !b.declared(in.Target) {
		return nil, b.fail(undeclaredf(KindEndpoint, in.ID, "target is not declared in this build"))
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = string(in.ID)
	}
	stage := strings.TrimSpace(in.Stage)
	if stage == "" {
		stage = "prod"
	}
	endpoint := &PublicEndpoint{
		id:           in.ID,
		Name:         name,
		Description:  strings.TrimSpace(in.Description),
		RoutePattern: RouteCatchAll,
		Method:       MethodAny,
		Stage:        stage,
		Target:       in.Target,
	}
	if err := b.declare(endpoint); err != nil {
		return nil, err
	}
	return endpoint, nil
}

// Build seals the builder and returns the linked graph. It fails when any
// declaration failed or when a kind is missing.
func (b *Builder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.sealed {
		return nil, errBuilderSealed
	}
	for _, kind := range Kinds {
		if _, ok := b.byKind[kind]; !ok {
			return nil, b.fail(invalidf(kind, "", "no %s declared", kind))
		}
	}
	order, err := b.graph.TopologicalSort()
	if err != nil {
		return nil, b.fail(fmt.Errorf("link topology: %w", err))
	}
	b.sealed = true
	return &Graph{
		Scope:    b.scope,
		Identity: b.byKind[KindIdentity].(*IdentityBinding),
		Unit:     b.byKind[KindUnit].(*ComputeUnit),
		Version:  b.byKind[KindVersion].(*ComputeVersion),
		Alias:    b.byKind[KindAlias].(*ComputeAlias),
		Alarm:    b.byKind[KindAlarm].(*HealthAlarm),
		Rollout:  b.byKind[KindRollout].(*RolloutPolicy),
		Endpoint: b.byKind[KindEndpoint].(*PublicEndpoint),
		order:    order,
		entities: b.entities,
		links:    b.graph,
	}, nil
}

// ready checks builder state and the id before a declaration.
func (b *Builder) ready(kind Kind, id ResourceID) error {
	if b.err != nil {
		return b.err
	}
	if b.sealed {
		return declErr(kind, id, errBuilderSealed)
	}
	if !resourceIDPattern.MatchString(string(id)) {
		return b.fail(invalidf(kind, id, "resource id must be alphanumeric and start with a letter"))
	}
	if _, exists := b.entities[id]; exists {
		return b.fail(declErr(kind, id, fmt.Errorf("%w: id already declared", ErrDuplicateEntity)))
	}
	if existing, exists := b.byKind[kind]; exists {
		return b.fail(declErr(kind, id, fmt.Errorf("%w: %s already declared as %q", ErrDuplicateEntity, kind, existing.ID())))
	}
	return nil
}

// declared reports whether entity is the exact descriptor this builder
// registered under its id.
func (b *Builder) declared(entity Entity) bool {
	got, ok := b.entities[entity.ID()]
	return ok && got == entity
}

func (b *Builder) declare(entity Entity) error {
	id := entity.ID()
	if err := b.graph.AddVertex(id, b.next); err != nil {
		return b.fail(declErr(entity.Kind(), id, fmt.Errorf("%w: %w", ErrDuplicateEntity, err)))
	}
	b.next++
	if err := b.graph.AddDependencies(id, entity.DependsOn()); err != nil {
		return b.fail(declErr(entity.Kind(), id, fmt.Errorf("%w: %w", ErrUndeclaredReference, err)))
	}
	b.entities[id] = entity
	b.byKind[entity.Kind()] = entity
	return nil
}

func (b *Builder) fail(err error) error {
	if b.err == nil {
		b.err = err
	}
	return b.err
}

func uniqueTrimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" || slices.Contains(out, trimmed) {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
