// Package pipeline describes the fixed graph of readiness stages and the
// artifacts that connect them.
package pipeline

import (
	"fmt"
	"sort"

	"github.com/aretw0/readiness/pkg/domain"
)

// Node ids.
const (
	NodeAdapterSessionStatus   = "adapter-session-status"
	NodeAdapterRealSession     = "adapter-real-session-report"
	NodeAdapterReadiness       = "adapter-readiness"
	NodeConsumerCIAuth         = "consumer-ci-auth"
	NodeSupportBundle          = "support-bundle"
	NodeWorkflowLint           = "workflow-lint"
	NodeConsumerStartupTriage  = "consumer-startup-triage"
	NodeConsumerStartupUnblock = "consumer-startup-unblock-status"
	NodeMockConsumerAB         = "mock-consumer-ab-report"
	NodePhase5Blockers         = "phase5-blockers-readiness"
	NodePhase5ClosureStatus    = "phase5-execution-closure-status"
	NodeClosureRunReport       = "phase5-execution-closure-run-report"
	NodeExternalHandoff        = "phase5-external-handoff"
)

// NodeKind tells who produces a node's artifact.
type NodeKind string

const (
	// KindStage artifacts are rendered by a readiness stage.
	KindStage NodeKind = "stage"
	// KindExternal artifacts come from tooling outside this module.
	KindExternal NodeKind = "external"
	// KindRunReport artifacts summarize an orchestrated command plan.
	KindRunReport NodeKind = "run-report"
)

// Node is one artifact producer.
type Node struct {
	ID     string
	Kind   NodeKind
	Output string
}

// Edge says that To reads the artifact of From. A Runs edge instead says
// that the plan behind From runs To as one of its steps; no artifact flows
// along it.
type Edge struct {
	From     string
	To       string
	Optional bool
	Runs     bool
}

// Graph is the pipeline DAG.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Default returns the fixed readiness pipeline with artifacts placed by outputs.
func Default(o Outputs) Graph {
	return Graph{
		Nodes: []Node{
			{ID: NodeAdapterSessionStatus, Kind: KindStage, Output: o.AdapterSessionStatus},
			{ID: NodeAdapterRealSession, Kind: KindStage, Output: o.AdapterRealSessionReport},
			{ID: NodeAdapterReadiness, Kind: KindStage, Output: o.AdapterReadiness},
			{ID: NodeConsumerCIAuth, Kind: KindStage, Output: o.ConsumerCIAuth},
			{ID: NodeSupportBundle, Kind: KindExternal, Output: o.SupportBundle},
			{ID: NodeWorkflowLint, Kind: KindExternal, Output: o.WorkflowLint},
			{ID: NodeConsumerStartupTriage, Kind: KindRunReport, Output: o.ConsumerStartupTriage},
			{ID: NodeConsumerStartupUnblock, Kind: KindStage, Output: o.ConsumerStartupUnblock},
			{ID: NodeMockConsumerAB, Kind: KindExternal, Output: o.MockConsumerAB},
			{ID: NodePhase5Blockers, Kind: KindStage, Output: o.Phase5Blockers},
			{ID: NodePhase5ClosureStatus, Kind: KindStage, Output: o.Phase5ClosureStatus},
			{ID: NodeClosureRunReport, Kind: KindRunReport, Output: o.ClosureRunReport},
			{ID: NodeExternalHandoff, Kind: KindStage, Output: o.ExternalHandoff},
		},
		Edges: []Edge{
			{From: NodeAdapterSessionStatus, To: NodeAdapterRealSession},
			{From: NodeAdapterRealSession, To: NodeAdapterReadiness},
			{From: NodeConsumerCIAuth, To: NodeConsumerStartupUnblock},
			{From: NodeSupportBundle, To: NodeConsumerStartupUnblock},
			{From: NodeWorkflowLint, To: NodeConsumerStartupUnblock, Optional: true},
			{From: NodeConsumerStartupTriage, To: NodeConsumerStartupUnblock, Runs: true},
			{From: NodeAdapterReadiness, To: NodePhase5Blockers, Optional: true},
			{From: NodeConsumerStartupTriage, To: NodePhase5Blockers},
			{From: NodePhase5Blockers, To: NodePhase5ClosureStatus},
			{From: NodeConsumerStartupUnblock, To: NodePhase5ClosureStatus},
			{From: NodeAdapterReadiness, To: NodePhase5ClosureStatus, Optional: true},
			{From: NodePhase5ClosureStatus, To: NodeExternalHandoff},
			{From: NodePhase5Blockers, To: NodeExternalHandoff},
			{From: NodeConsumerStartupUnblock, To: NodeExternalHandoff},
			{From: NodeMockConsumerAB, To: NodeExternalHandoff, Optional: true},
			{From: NodeClosureRunReport, To: NodeExternalHandoff, Optional: true},
		},
	}
}

// Node returns the node with id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Upstream returns the artifact edges into id, in declaration order.
func (g Graph) Upstream(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.To == id && !e.Runs {
			out = append(out, e)
		}
	}
	return out
}

// RunBy returns the ids of the plans that run id as a step.
func (g Graph) RunBy(id string) []string {
	var out []string
	for _, e := range g.Edges {
		if e.To == id && e.Runs {
			out = append(out, e.From)
		}
	}
	return out
}

// Validate checks node ids and outputs are unique, that edges only
// reference known nodes, and that the graph has no cycle.
func (g Graph) Validate() error {
	var errs []error

	ids := make(map[string]bool, len(g.Nodes))
	owners := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		if ids[n.ID] {
			errs = append(errs, domain.NewConfigError(n.ID, "duplicate node id"))
		}
		ids[n.ID] = true
		if n.Output == "" {
			errs = append(errs, domain.NewConfigError(n.ID, "node has no output path"))
			continue
		}
		if owner, taken := owners[n.Output]; taken {
			errs = append(errs, domain.NewConfigError(n.ID,
				fmt.Sprintf("output %q is already written by %s", n.Output, owner)))
			continue
		}
		owners[n.Output] = n.ID
	}

	for _, e := range g.Edges {
		if !ids[e.From] {
			errs = append(errs, domain.NewConfigError(e.To, fmt.Sprintf("edge from unknown node %q", e.From)))
		}
		if !ids[e.To] {
			errs = append(errs, domain.NewConfigError(e.From, fmt.Sprintf("edge to unknown node %q", e.To)))
		}
	}

	if len(errs) == 0 {
		if _, err := g.Order(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return &domain.AggregateError{Errors: errs}
	}
	return nil
}

// Order returns the node ids in dependency order. Nodes that become ready
// at the same time keep their declaration order.
func (g Graph) Order() ([]string, error) {
	index := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n.ID] = i
	}

	indegree := make(map[string]int, len(g.Nodes))
	for _, e := range g.Edges {
		indegree[e.To]++
	}

	var ready []string
	for _, n := range g.Nodes {
		if indegree[n.ID] == 0 {
			ready = append(ready, n.ID)
		}
	}

	order := make([]string, 0, len(g.Nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for _, e := range g.Edges {
			if e.From != id {
				continue
			}
			indegree[e.To]--
			if indegree[e.To] == 0 {
				ready = append(ready, e.To)
			}
		}
		sort.SliceStable(ready, func(i, j int) bool { return index[ready[i]] < index[ready[j]] })
	}

	if len(order) != len(g.Nodes) {
		return nil, domain.NewConfigError("graph", "pipeline graph has a cycle")
	}
	return order, nil
}
