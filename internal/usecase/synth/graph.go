// Where: internal/usecase/synth/graph.go
// What: Dependency view of the declared topology.
// Why: Show declaration order and edges without staging or writing files.
package synth

import (
	"fmt"
	"strings"

	"github.com/poruru-code/canary-topology/internal/domain/topology"
)

// GraphNode is one declared entity.
type GraphNode struct {
	ID   string
	Kind string
}

// GraphEdge means From depends on To.
type GraphEdge struct {
	From string
	To   string
}

// GraphView is the topology in topological order.
type GraphView struct {
	Stack string
	Nodes []GraphNode
	Edges []GraphEdge
}

// Describe declares the topology of req and returns its dependency view.
func Describe(req Request) (GraphView, error) {
	stack := strings.TrimSpace(req.Config.Stack.Name)
	if stack == "" {
		return GraphView{}, errStackNameRequired
	}
	graph, err := declare(stack, req.Config, req.Clock)
	if err != nil {
		return GraphView{}, err
	}
	return viewOf(graph), nil
}

func viewOf(graph *topology.Graph) GraphView {
	view := GraphView{Stack: graph.Scope.ID}
	for _, entity := range graph.Entities() {
		view.Nodes = append(view.Nodes, GraphNode{ID: string(entity.ID()), Kind: string(entity.Kind())})
		for _, dep := range graph.Dependencies(entity.ID()) {
			view.Edges = append(view.Edges, GraphEdge{From: string(entity.ID()), To: string(dep)})
		}
	}
	return view
}

// DOT renders the view in Graphviz syntax. Edges point from a dependency
// to its dependent so the layout reads in creation order.
func (v GraphView) DOT() string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", v.Stack)
	b.WriteString("  rankdir=LR;\n")
	for _, node := range v.Nodes {
		fmt.Fprintf(&b, "  %q [label=%q];\n", node.ID, node.ID+"\n"+node.Kind)
	}
	for _, edge := range v.Edges {
		fmt.Fprintf(&b, "  %q -> %q;\n", edge.To, edge.From)
	}
	b.WriteString("}\n")
	return b.String()
}
