// Where: internal/domain/dag/dag.go
// What: Generic directed acyclic graph with deterministic ordering.
// Why: Give the topology builder a referential-integrity and cycle check.
package dag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrDuplicateVertex = errors.New("vertex already exists")
	ErrVertexNotFound  = errors.New("vertex not found")
	ErrSelfReference   = errors.New("vertex cannot depend on itself")
)

// Vertex is a node of the graph. Order is the tie breaker used by
// TopologicalSort; lower values come first.
type Vertex[T comparable] struct {
	ID        T
	Order     int
	DependsOn map[T]struct{}
}

// CycleError reports the vertices forming a cycle, first vertex repeated last.
type CycleError[T comparable] struct {
	Cycle []T
}

func (e *CycleError[T]) Error() string {
	parts := make([]string, 0, len(e.Cycle))
	for _, id := range e.Cycle {
		parts = append(parts, fmt.Sprint(id))
	}
	return "graph contains a cycle: " + strings.Join(parts, " -> ")
}

// DirectedAcyclicGraph stores vertices and their dependency edges.
// An edge from A to B means A depends on B.
type DirectedAcyclicGraph[T comparable] struct {
	Vertices map[T]*Vertex[T]
}

// NewDirectedAcyclicGraph creates an empty graph.
func NewDirectedAcyclicGraph[T comparable]() *DirectedAcyclicGraph[T] {
	return &DirectedAcyclicGraph[T]{Vertices: map[T]*Vertex[T]{}}
}

// AddVertex adds a vertex. Adding the same id twice is an error.
func (d *DirectedAcyclicGraph[T]) AddVertex(id T, order int) error {
	if _, ok := d.Vertices[id]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateVertex, id)
	}
	d.Vertices[id] = &Vertex[T]{ID: id, Order: order, DependsOn: map[T]struct{}{}}
	return nil
}

// AddDependencies records that from depends on every vertex in deps.
// The call is all-or-nothing: when any edge is invalid or the new edges
// would close a cycle, the graph is left unchanged.
func (d *DirectedAcyclicGraph[T]) AddDependencies(from T, deps []T) error {
	vertex, ok := d.Vertices[from]
	if !ok {
		return fmt.Errorf("%w: %v", ErrVertexNotFound, from)
	}
	for _, dep := range deps {
		if dep == from {
			return fmt.Errorf("%w: %v", ErrSelfReference, from)
		}
		if _, ok := d.Vertices[dep]; !ok {
			return fmt.Errorf("%w: %v (dependency of %v)", ErrVertexNotFound, dep, from)
		}
	}

	added := make([]T, 0, len(deps))
	for _, dep := range deps {
		if _, exists := vertex.DependsOn[dep]; exists {
			continue
		}
		vertex.DependsOn[dep] = struct{}{}
		added = append(added, dep)
	}
	if cycle := d.findCycle(); cycle != nil {
		for _, dep := range added {
			delete(vertex.DependsOn, dep)
		}
		return &CycleError[T]{Cycle: cycle}
	}
	return nil
}

// DependenciesOf returns the direct dependencies of id in vertex order.
func (d *DirectedAcyclicGraph[T]) DependenciesOf(id T) []T {
	vertex, ok := d.Vertices[id]
	if !ok {
		return nil
	}
	out := make([]T, 0, len(vertex.DependsOn))
	for dep := range vertex.DependsOn {
		out = append(out, dep)
	}
	d.sortIDs(out)
	return out
}

// TopologicalSort returns vertices with every dependency placed before its
// dependents. Among ready vertices the lowest Order is emitted first.
func (d *DirectedAcyclicGraph[T]) TopologicalSort() ([]T, error) {
	remaining := make(map[T]int, len(d.Vertices))
	dependents := make(map[T][]T, len(d.Vertices))
	ready := []T{}
	for id, vertex := range d.Vertices {
		remaining[id] = len(vertex.DependsOn)
		for dep := range vertex.DependsOn {
			dependents[dep] = append(dependents[dep], id)
		}
		if len(vertex.DependsOn) == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]T, 0, len(d.Vertices))
	for len(ready) > 0 {
		d.sortIDs(ready)
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)
		for _, dependent := range dependents[next] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				ready = append(ready, dependent)
			}
		}
	}

	if len(order) != len(d.Vertices) {
		cycle := d.findCycle()
		return nil, &CycleError[T]{Cycle: cycle}
	}
	return order, nil
}

func (d *DirectedAcyclicGraph[T]) sortIDs(ids []T) {
	slices.SortFunc(ids, func(a, b T) int {
		oa, ob := d.Vertices[a].Order, d.Vertices[b].Order
		if oa != ob {
			return oa - ob
		}
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	})
}

// findCycle runs a colored DFS and returns the first cycle found, or nil.
func (d *DirectedAcyclicGraph[T]) findCycle() []T {
	const (
		white = iota
		grey
		black
	)
	color := make(map[T]int, len(d.Vertices))
	stack := []T{}

	var visit func(id T) []T
	visit = func(id T) []T {
		color[id] = grey
		stack = append(stack, id)
		for _, dep := range d.DependenciesOf(id) {
			switch color[dep] {
			case grey:
				start := slices.Index(stack, dep)
				cycle := append([]T{}, stack[start:]...)
				return append(cycle, dep)
			case white:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return nil
	}

	ids := make([]T, 0, len(d.Vertices))
	for id := range d.Vertices {
		ids = append(ids, id)
	}
	d.sortIDs(ids)
	for _, id := range ids {
		if color[id] != white {
			continue
		}
		if cycle := visit(id); cycle != nil {
			return cycle
		}
	}
	return nil
}
