// Where: internal/domain/topology/graph.go
// What: Read-only view of a fully linked topology.
// Why: Hand synthesis one consistent graph with its derived outputs.
package topology

import (
	"fmt"

	"github.com/poruru-code/canary-topology/internal/domain/dag"
)

// OutputAPIEndpoint is the name of the published endpoint address.
const OutputAPIEndpoint = "ApiEndpoint"

// Graph is the result of a successful Build. It is never partially
// populated.
type Graph struct {
	Scope    *Scope
	Identity *IdentityBinding
	Unit     *ComputeUnit
	Version  *ComputeVersion
	Alias    *ComputeAlias
	Alarm    *HealthAlarm
	Rollout  *RolloutPolicy
	Endpoint *PublicEndpoint

	order    []ResourceID
	entities map[ResourceID]Entity
	links    *dag.DirectedAcyclicGraph[ResourceID]
}

// Address is the public endpoint's network address. Region and URL
// suffix are only known to the deployment engine, so they stay symbolic.
type Address struct {
	API   ResourceID
	Stage string
}

// String renders the address in CloudFormation Sub syntax.
func (a Address) String() string {
	return fmt.Sprintf("https://${%s}.execute-api.${AWS::Region}.${AWS::URLSuffix}/%s/", a.API, a.Stage)
}

// Output is a named value published by the build.
type Output struct {
	Name        string
	Description string
	Value       Address
}

// Order returns resource ids with dependencies first.
func (g *Graph) Order() []ResourceID {
	return append([]ResourceID(nil), g.order...)
}

// Entities returns the descriptors in Order.
func (g *Graph) Entities() []Entity {
	out := make([]Entity, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.entities[id])
	}
	return out
}

// Dependencies returns the direct dependencies of id.
func (g *Graph) Dependencies(id ResourceID) []ResourceID {
	return g.links.DependenciesOf(id)
}

// counts tallies descriptors per kind.
func (g *Graph) counts() map[Kind]int {
	counts := make(map[Kind]int, len(Kinds))
	for _, entity := range g.entities {
		counts[entity.Kind()]++
	}
	return counts
}

// EndpointAddress is the derived address of the public endpoint.
func (g *Graph) EndpointAddress() Address {
	return Address{API: g.Endpoint.ID(), Stage: g.Endpoint.Stage}
}

// Outputs lists the values published by the build.
func (g *Graph) Outputs() []Output {
	return []Output{{
		Name:        OutputAPIEndpoint,
		Description: "The endpoint for the API",
		Value:       g.EndpointAddress(),
	}}
}
