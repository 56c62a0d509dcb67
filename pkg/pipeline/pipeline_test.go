package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/readiness/pkg/adapters/memory"
	"github.com/aretw0/readiness/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOutputs(t *testing.T) {
	tests := []struct {
		outDir string
		want   string
	}{
		{".audit-reports/phase5", ".audit-reports/phase5/phase5-blockers-readiness.md"},
		{".audit-reports/phase5/", ".audit-reports/phase5/phase5-blockers-readiness.md"},
		{"", "phase5-blockers-readiness.md"},
	}
	for _, tt := range tests {
		t.Run(tt.outDir, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveOutputs(tt.outDir).Phase5Blockers)
		})
	}
}

func TestDefault_Validate(t *testing.T) {
	g := Default(ResolveOutputs("out"))
	require.NoError(t, g.Validate())

	order, err := g.Order()
	require.NoError(t, err)
	require.Len(t, order, len(g.Nodes))

	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	for _, e := range g.Edges {
		assert.Less(t, pos[e.From], pos[e.To], "%s -> %s", e.From, e.To)
	}
	assert.Equal(t, NodeExternalHandoff, order[len(order)-1])
}

func TestGraph_Upstream(t *testing.T) {
	g := Default(ResolveOutputs("out"))
	edges := g.Upstream(NodePhase5Blockers)
	require.Len(t, edges, 2)
	assert.Equal(t, Edge{From: NodeAdapterReadiness, To: NodePhase5Blockers, Optional: true}, edges[0])
	assert.Equal(t, Edge{From: NodeConsumerStartupTriage, To: NodePhase5Blockers}, edges[1])

	t.Run("Plan Edges Are Not Inputs", func(t *testing.T) {
		for _, e := range g.Upstream(NodeConsumerStartupUnblock) {
			assert.NotEqual(t, NodeConsumerStartupTriage, e.From)
		}
		assert.Equal(t, []string{NodeConsumerStartupTriage}, g.RunBy(NodeConsumerStartupUnblock))
		assert.Empty(t, g.RunBy(NodePhase5Blockers))
	})
}

func TestGraph_Validate_Errors(t *testing.T) {
	t.Run("Shared Output", func(t *testing.T) {
		g := Graph{Nodes: []Node{
			{ID: "a", Output: "x.md"},
			{ID: "b", Output: "x.md"},
		}}
		err := g.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		assert.Contains(t, err.Error(), `output "x.md" is already written by a`)
	})

	t.Run("Unknown Edge", func(t *testing.T) {
		g := Graph{
			Nodes: []Node{{ID: "a", Output: "a.md"}},
			Edges: []Edge{{From: "a", To: "ghost"}},
		}
		assert.ErrorContains(t, g.Validate(), `edge to unknown node "ghost"`)
	})

	t.Run("Cycle", func(t *testing.T) {
		g := Graph{
			Nodes: []Node{{ID: "a", Output: "a.md"}, {ID: "b", Output: "b.md"}},
			Edges: []Edge{{From: "a", To: "b"}, {From: "b", To: "a"}},
		}
		assert.ErrorContains(t, g.Validate(), "cycle")
	})
}

func TestMermaid(t *testing.T) {
	g := Default(ResolveOutputs("out"))

	t.Run("Shapes And Edges", func(t *testing.T) {
		out := Mermaid(g, nil)
		assert.True(t, strings.HasPrefix(out, "graph TD\n"))
		for _, want := range []string{
			`phase5_blockers_readiness["phase5-blockers-readiness"]`,
			`support_bundle[/"support-bundle"/]`,
			`consumer_startup_triage[["consumer-startup-triage"]]`,
			"adapter_session_status --> adapter_real_session_report",
			"adapter_readiness -. optional .-> phase5_blockers_readiness",
			"consumer_startup_triage == runs ==> consumer_startup_unblock_status",
		} {
			assert.Contains(t, out, want)
		}
		assert.NotContains(t, out, "classDef")
	})

	t.Run("Overlay", func(t *testing.T) {
		out := Mermaid(g, &Overlay{Verdicts: map[string]domain.Verdict{
			NodePhase5Blockers:         domain.VerdictBlocked,
			NodeConsumerStartupUnblock: domain.VerdictReadyForRetest,
			NodePhase5ClosureStatus:    domain.VerdictMissingInputs,
		}})
		assert.Contains(t, out, "class phase5_blockers_readiness blocked;")
		assert.Contains(t, out, "class consumer_startup_unblock_status ready;")
		assert.Contains(t, out, "class phase5_execution_closure_status missing;")
	})
}

func TestReadOverlay(t *testing.T) {
	o := ResolveOutputs("out")
	store := memory.NewStore(map[string]string{
		o.Phase5Blockers:         "# Phase 5 Blockers Readiness\n\n- verdict: BLOCKED\n",
		o.ConsumerStartupUnblock: "# Unblock\n\n- verdict: READY_FOR_RETEST\n",
		o.SupportBundle:          "no verdict in here\n",
	})

	overlay, err := ReadOverlay(context.Background(), store, Default(o))
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Verdict{
		NodePhase5Blockers:         domain.VerdictBlocked,
		NodeConsumerStartupUnblock: domain.VerdictReadyForRetest,
		NodeSupportBundle:          "",
	}, overlay.Verdicts)
}
