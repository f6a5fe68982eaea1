// Where: internal/domain/topology/builder_test.go
// What: Tests for builder referential integrity and atomic failure.
// Why: Undeclared or foreign references must fail at construction time.
package topology

import (
	"errors"
	"testing"
	"time"
)

type declared struct {
	b     *Builder
	role  *IdentityBinding
	unit  *ComputeUnit
	ver   *ComputeVersion
	alias *ComputeAlias
	alarm *HealthAlarm
}

func declareChain(t *testing.T, scope *Scope) declared {
	t.Helper()
	b := NewBuilder(scope)
	role, err := b.Identity(IdentityInput{ID: "Role", ManagedPolicies: []string{DefaultBasicPolicy}})
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	unit, err := b.ComputeUnit(ComputeUnitInput{ID: "Fn", Runtime: "python3.12", Handler: "app.handler", CodeSource: "src", Identity: role})
	if err != nil {
		t.Fatalf("ComputeUnit: %v", err)
	}
	ver, err := b.Version("Ver", unit)
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	alias, err := b.Alias("Alias", "live", ver)
	if err != nil {
		t.Fatalf("Alias: %v", err)
	}
	alarm, err := b.Alarm(AlarmInput{ID: "Alarm", Source: unit, Threshold: 1, EvaluationPeriods: 1})
	if err != nil {
		t.Fatalf("Alarm: %v", err)
	}
	return declared{b: b, role: role, unit: unit, ver: ver, alias: alias, alarm: alarm}
}

func newTestScope(t *testing.T) *Scope {
	t.Helper()
	scope, err := NewScope("Stack", WithClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }))
	if err != nil {
		t.Fatal(err)
	}
	return scope
}

func TestRolloutWithoutAlarmsFails(t *testing.T) {
	d := declareChain(t, newTestScope(t))
	_, err := d.b.Rollout(RolloutInput{ID: "Group", ApplicationName: "App", Alias: d.alias})
	if !errors.Is(err, ErrUndeclaredReference) {
		t.Fatalf("expected undeclared reference, got %v", err)
	}
	if _, buildErr := d.b.Build(); !errors.Is(buildErr, ErrUndeclaredReference) {
		t.Fatalf("Build must surface the first error, got %v", buildErr)
	}
}

func TestRolloutWithForeignAlarmFails(t *testing.T) {
	scope := newTestScope(t)
	mine := declareChain(t, scope)
	other := declareChain(t, scope)

	_, err := mine.b.Rollout(RolloutInput{
		ID:              "Group",
		ApplicationName: "App",
		Alias:           mine.alias,
		AbortAlarms:     []*HealthAlarm{other.alarm},
	})
	if !errors.Is(err, ErrUndeclaredReference) {
		t.Fatalf("expected undeclared reference for foreign alarm, got %v", err)
	}
}

func TestComputeUnitRequiresDeclaredIdentity(t *testing.T) {
	b := NewBuilder(newTestScope(t))
	stray := &IdentityBinding{id: "Role", TrustPrincipal: ServicePrincipalLambda, ManagedPolicies: []string{"x"}}
	_, err := b.ComputeUnit(ComputeUnitInput{ID: "Fn", Runtime: "python3.9", Handler: "h.h", CodeSource: "src", Identity: stray})
	if !errors.Is(err, ErrUndeclaredReference) {
		t.Fatalf("expected undeclared reference, got %v", err)
	}
}

func TestBuilderIsPoisonedAfterFailure(t *testing.T) {
	b := NewBuilder(newTestScope(t))
	_, first := b.Identity(IdentityInput{ID: "Role"})
	if !errors.Is(first, ErrInvalidEntity) {
		t.Fatalf("expected invalid identity without policies, got %v", first)
	}
	_, second := b.Identity(IdentityInput{ID: "Role2", ManagedPolicies: []string{DefaultBasicPolicy}})
	if second != first {
		t.Fatalf("expected the first error to be returned again, got %v", second)
	}
	graph, err := b.Build()
	if graph != nil || err != first {
		t.Fatalf("Build() = %v, %v; want nil and first error", graph, err)
	}
}

func TestIdentityRejectsForeignPrincipal(t *testing.T) {
	b := NewBuilder(newTestScope(t))
	_, err := b.Identity(IdentityInput{ID: "Role", TrustPrincipal: "ec2.amazonaws.com", ManagedPolicies: []string{"p"}})
	if !errors.Is(err, ErrInvalidEntity) {
		t.Fatalf("expected invalid entity, got %v", err)
	}
}

func TestIdentityDeduplicatesPolicies(t *testing.T) {
	b := NewBuilder(newTestScope(t))
	role, err := b.Identity(IdentityInput{ID: "Role", ManagedPolicies: []string{" a ", "a", "", "b"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(role.ManagedPolicies) != 2 {
		t.Fatalf("policies = %v", role.ManagedPolicies)
	}
}

func TestSecondVersionIsRejected(t *testing.T) {
	d := declareChain(t, newTestScope(t))
	_, err := d.b.Version("Ver2", d.unit)
	if !errors.Is(err, ErrDuplicateEntity) {
		t.Fatalf("expected duplicate entity, got %v", err)
	}
}

func TestDuplicateIDIsRejected(t *testing.T) {
	d := declareChain(t, newTestScope(t))
	_, err := d.b.Endpoint(EndpointInput{ID: "Fn", Target: d.unit})
	if !errors.Is(err, ErrDuplicateEntity) {
		t.Fatalf("expected duplicate entity, got %v", err)
	}
}

func TestAliasNameValidation(t *testing.T) {
	for _, name := range []string{"", "123", "bad name"} {
		b := NewBuilder(newTestScope(t))
		role, _ := b.Identity(IdentityInput{ID: "Role", ManagedPolicies: []string{"p"}})
		unit, _ := b.ComputeUnit(ComputeUnitInput{ID: "Fn", Runtime: "python3.9", Handler: "h.h", CodeSource: "s", Identity: role})
		ver, _ := b.Version("Ver", unit)
		if _, err := b.Alias("Alias", name, ver); !errors.Is(err, ErrInvalidEntity) {
			t.Fatalf("alias %q: expected invalid entity, got %v", name, err)
		}
	}
}

func TestAlarmRejectsNonPositiveValues(t *testing.T) {
	cases := []AlarmInput{
		{ID: "Alarm", Threshold: 0, EvaluationPeriods: 1},
		{ID: "Alarm", Threshold: 1, EvaluationPeriods: 0},
	}
	for _, in := range cases {
		b := NewBuilder(newTestScope(t))
		role, _ := b.Identity(IdentityInput{ID: "Role", ManagedPolicies: []string{"p"}})
		unit, _ := b.ComputeUnit(ComputeUnitInput{ID: "Fn", Runtime: "python3.9", Handler: "h.h", CodeSource: "s", Identity: role})
		in.Source = unit
		if _, err := b.Alarm(in); !errors.Is(err, ErrInvalidEntity) {
			t.Fatalf("%+v: expected invalid entity, got %v", in, err)
		}
	}
}

func TestBuildRequiresEveryKind(t *testing.T) {
	d := declareChain(t, newTestScope(t))
	_, err := d.b.Build()
	if !errors.Is(err, ErrInvalidEntity) {
		t.Fatalf("expected missing-kind error, got %v", err)
	}
}

func TestBuildSealsBuilder(t *testing.T) {
	d := declareChain(t, newTestScope(t))
	if _, err := d.b.Rollout(RolloutInput{ID: "Group", ApplicationName: "App", Alias: d.alias, AbortAlarms: []*HealthAlarm{d.alarm}}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.b.Endpoint(EndpointInput{ID: "Api", Target: d.unit}); err != nil {
		t.Fatal(err)
	}
	graph, err := d.b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if graph.Endpoint.Stage != "prod" || graph.Endpoint.Name != "Api" {
		t.Fatalf("endpoint defaults not applied: %+v", graph.Endpoint)
	}
	if _, err := d.b.Build(); err == nil {
		t.Fatal("second Build should fail")
	}
}
