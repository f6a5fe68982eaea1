// Where: internal/domain/topology/label_test.go
// What: Tests for version label and description rendering.
// Why: Labels must be unique per instant; descriptions stay human readable.
package topology

import (
	"testing"
	"time"
)

func TestVersionDescriptionUsesDayMonthYear(t *testing.T) {
	got, err := VersionDescription(time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("VersionDescription: %v", err)
	}
	if got != "Version deployed on 19-10-2026" {
		t.Fatalf("description = %q", got)
	}
}

func TestCreationLabelDiffersPerInstant(t *testing.T) {
	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	a := CreationLabel(at)
	b := CreationLabel(at.Add(time.Nanosecond))
	if a == b {
		t.Fatalf("labels should differ: %s", a)
	}
	if a != CreationLabel(at.In(time.FixedZone("JST", 9*3600))) {
		t.Fatal("label should not depend on the clock's zone")
	}
}

func TestCreationLabelIsCompactUTCTimestamp(t *testing.T) {
	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	if got := CreationLabel(at); got != "v20261019T090000Z" {
		t.Fatalf("unexpected label: %s", got)
	}
	if got := CreationLabel(at.Add(time.Nanosecond)); got != "v20261019T090000000000001Z" {
		t.Fatalf("unexpected label with fraction: %s", got)
	}
}

func TestScopeRequiresID(t *testing.T) {
	if _, err := NewScope("  "); err == nil {
		t.Fatal("expected error for blank scope id")
	}
	scope, err := NewScope("Stack", WithContext(map[string]string{"env": "dev"}))
	if err != nil {
		t.Fatal(err)
	}
	if scope.ContextValue("env", "x") != "dev" || scope.ContextValue("missing", "x") != "x" {
		t.Fatalf("unexpected context: %v", scope.Context)
	}
	if scope.Path(IDFunction) != "Stack/LambdaFunction" {
		t.Fatalf("path = %s", scope.Path(IDFunction))
	}
}
