// Where: internal/domain/dag/dag_test.go
// What: Tests for the generic dependency graph.
// Why: Guard duplicate, missing, self and cyclic edge handling plus ordering.
package dag

import (
	"errors"
	"reflect"
	"testing"
)

func mustVertices(t *testing.T, d *DirectedAcyclicGraph[string], ids ...string) {
	t.Helper()
	for i, id := range ids {
		if err := d.AddVertex(id, i); err != nil {
			t.Fatalf("AddVertex(%s): %v", id, err)
		}
	}
}

func TestAddVertexRejectsDuplicates(t *testing.T) {
	d := NewDirectedAcyclicGraph[string]()
	if err := d.AddVertex("A", 1); err != nil {
		t.Fatalf("AddVertex: %v", err)
	}
	err := d.AddVertex("A", 1)
	if !errors.Is(err, ErrDuplicateVertex) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if len(d.Vertices) != 1 {
		t.Fatalf("expected 1 vertex, got %d", len(d.Vertices))
	}
}

func TestAddDependenciesValidatesEdges(t *testing.T) {
	d := NewDirectedAcyclicGraph[string]()
	mustVertices(t, d, "A", "B")

	if err := d.AddDependencies("A", []string{"B"}); err != nil {
		t.Fatalf("AddDependencies: %v", err)
	}
	if err := d.AddDependencies("A", []string{"C"}); !errors.Is(err, ErrVertexNotFound) {
		t.Fatalf("expected missing vertex error, got %v", err)
	}
	if err := d.AddDependencies("Z", []string{"A"}); !errors.Is(err, ErrVertexNotFound) {
		t.Fatalf("expected missing source error, got %v", err)
	}
	if err := d.AddDependencies("A", []string{"A"}); !errors.Is(err, ErrSelfReference) {
		t.Fatalf("expected self reference error, got %v", err)
	}
}

func TestAddDependenciesRejectsCycleAndRollsBack(t *testing.T) {
	d := NewDirectedAcyclicGraph[string]()
	mustVertices(t, d, "A", "B", "C")
	if err := d.AddDependencies("A", []string{"B"}); err != nil {
		t.Fatal(err)
	}
	if err := d.AddDependencies("B", []string{"C"}); err != nil {
		t.Fatal(err)
	}

	err := d.AddDependencies("C", []string{"A"})
	var cycleErr *CycleError[string]
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected cycle error, got %v", err)
	}
	if len(cycleErr.Cycle) != 4 || cycleErr.Cycle[0] != cycleErr.Cycle[3] {
		t.Fatalf("unexpected cycle path: %v", cycleErr.Cycle)
	}
	if len(d.DependenciesOf("C")) != 0 {
		t.Fatalf("cyclic edge should have been rolled back: %v", d.DependenciesOf("C"))
	}
	if _, err := d.TopologicalSort(); err != nil {
		t.Fatalf("graph should still sort after rollback: %v", err)
	}
}

func TestTopologicalSortOrdersDependenciesFirst(t *testing.T) {
	d := NewDirectedAcyclicGraph[string]()
	mustVertices(t, d, "role", "function", "version", "alias", "alarm", "rollout", "api")
	edges := map[string][]string{
		"function": {"role"},
		"version":  {"function"},
		"alias":    {"version"},
		"alarm":    {"function"},
		"rollout":  {"alias", "alarm"},
		"api":      {"function"},
	}
	for from, deps := range edges {
		if err := d.AddDependencies(from, deps); err != nil {
			t.Fatalf("AddDependencies(%s): %v", from, err)
		}
	}

	got, err := d.TopologicalSort()
	if err != nil {
		t.Fatalf("TopologicalSort: %v", err)
	}
	want := []string{"role", "function", "version", "alias", "alarm", "rollout", "api"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("TopologicalSort() = %v, want %v", got, want)
	}
}

func TestTopologicalSortDetectsManualCycle(t *testing.T) {
	d := NewDirectedAcyclicGraph[string]()
	mustVertices(t, d, "A", "B")
	d.Vertices["A"].DependsOn["B"] = struct{}{}
	d.Vertices["B"].DependsOn["A"] = struct{}{}

	_, err := d.TopologicalSort()
	var cycleErr *CycleError[string]
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}
