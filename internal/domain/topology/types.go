// Where: internal/domain/topology/types.go
// What: Entity descriptors of a deployment topology.
// Why: Typed references keep the dependency chain explicit and checkable.
package topology

import (
	"time"

	"github.com/poruru-code/canary-topology/internal/domain/rollout"
)

// ResourceID names an entity inside its Scope.
type ResourceID string

// Kind is the entity type.
type Kind string

const (
	KindIdentity Kind = "IdentityBinding"
	KindUnit     Kind = "ComputeUnit"
	KindVersion  Kind = "ComputeVersion"
	KindAlias    Kind = "ComputeAlias"
	KindAlarm    Kind = "HealthAlarm"
	KindRollout  Kind = "RolloutPolicy"
	KindEndpoint Kind = "PublicEndpoint"
)

// Kinds lists every entity kind in declaration order.
var Kinds = []Kind{KindIdentity, KindUnit, KindVersion, KindAlias, KindAlarm, KindRollout, KindEndpoint}

const (
	// ServicePrincipalLambda is the only principal allowed to assume an
	// IdentityBinding.
	ServicePrincipalLambda = "lambda.amazonaws.com"

	// RouteCatchAll matches any path below the API root.
	RouteCatchAll = "{proxy+}"
	// MethodAny matches any HTTP method.
	MethodAny = "ANY"

	// MetricErrors is the Lambda error count metric.
	MetricErrors = "Errors"
)

// Entity is implemented by every descriptor.
type Entity interface {
	ID() ResourceID
	Kind() Kind
	DependsOn() []ResourceID
}

// IdentityBinding is an execution role with managed policies attached.
type IdentityBinding struct {
	id              ResourceID
	TrustPrincipal  string
	ManagedPolicies []string
}

// ComputeUnit is a function bound to an execution identity.
type ComputeUnit struct {
	id         ResourceID
	Runtime    string
	Handler    string
	CodeSource string
	Identity   *IdentityBinding
}

// ComputeVersion is an immutable snapshot of a ComputeUnit.
type ComputeVersion struct {
	id          ResourceID
	Unit        *ComputeUnit
	Label       string
	Description string
	CreatedAt   time.Time
}

// ComputeAlias is a named pointer to one version. The rollout engine
// repoints it at deploy time; nothing here mutates it.
type ComputeAlias struct {
	id      ResourceID
	Name    string
	Version *ComputeVersion
}

// HealthAlarm is a threshold rule over a metric of a ComputeUnit.
type HealthAlarm struct {
	id                ResourceID
	Name              string
	Description       string
	Source            *ComputeUnit
	Metric            string
	Threshold         int
	EvaluationPeriods int
}

// RolloutPolicy binds an alias, a traffic-shift schedule and the alarms
// that abort the rollout.
type RolloutPolicy struct {
	id              ResourceID
	ApplicationID   ResourceID
	ApplicationName string
	Alias           *ComputeAlias
	Schedule        rollout.Schedule
	AbortAlarms     []*HealthAlarm
}

// PublicEndpoint routes every path and method to a ComputeUnit.
type PublicEndpoint struct {
	id           ResourceID
	Name         string
	Description  string
	RoutePattern string
	Method       string
	Stage        string
	Target       *ComputeUnit
}

func (r *IdentityBinding) ID() ResourceID          { return r.id }
func (r *IdentityBinding) Kind() Kind              { return KindIdentity }
func (r *IdentityBinding) DependsOn() []ResourceID { return nil }

func (r *ComputeUnit) ID() ResourceID { return r.id }
func (r *ComputeUnit) Kind() Kind     { return KindUnit }
func (r *ComputeUnit) DependsOn() []ResourceID {
	return []ResourceID{r.Identity.ID()}
}

func (r *ComputeVersion) ID() ResourceID { return r.id }
func (r *ComputeVersion) Kind() Kind     { return KindVersion }
func (r *ComputeVersion) DependsOn() []ResourceID {
	return []ResourceID{r.Unit.ID()}
}

func (r *ComputeAlias) ID() ResourceID { return r.id }
func (r *ComputeAlias) Kind() Kind     { return KindAlias }
func (r *ComputeAlias) DependsOn() []ResourceID {
	return []ResourceID{r.Version.ID()}
}

func (r *HealthAlarm) ID() ResourceID { return r.id }
func (r *HealthAlarm) Kind() Kind     { return KindAlarm }
func (r *HealthAlarm) DependsOn() []ResourceID {
	return []ResourceID{r.Source.ID()}
}

func (r *RolloutPolicy) ID() ResourceID { return r.id }
func (r *RolloutPolicy) Kind() Kind     { return KindRollout }
func (r *RolloutPolicy) DependsOn() []ResourceID {
	deps := []ResourceID{r.Alias.ID()}
	for _, alarm := range r.AbortAlarms {
		deps = append(deps, alarm.ID())
	}
	return deps
}

func (r *PublicEndpoint) ID() ResourceID { return r.id }
func (r *PublicEndpoint) Kind() Kind     { return KindEndpoint }
func (r *PublicEndpoint) DependsOn() []ResourceID {
	return []ResourceID{r.Target.ID()}
}
