package workflow

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViolations(t *testing.T) {
	wf := Workflow{
		Nodes: []Node{
			{ID: "n1", Type: TypeTrigger, Data: TriggerData{}},
			{ID: "n2", Type: TypeAction, Data: ActionData{Type: "email"}},
			{ID: "n3", Type: TypeEvent, Data: JobData{}},
			{ID: "x4", Type: TypeEvent, Data: EventData{}},
		},
		Connections: []Connection{
			{ID: "c10", Source: "n1", Dest: "n2"},
			{ID: "c11", Source: "n1", Dest: "n9"},
			{ID: "c12", Source: "n3", Dest: "n2", Condition: "success"},
			{ID: "c13", Source: "n3", Dest: "n2", Condition: "success"},
			{ID: "c14", Source: "n1", Dest: "n3", Condition: "success"},
		},
		// n1 has no record; n7 has no node.
	}
	triggers := []Trigger{NewManualTrigger("n7")}

	g := Assemble(wf, triggers, nil)
	violations := g.Violations()

	reasons := make([]string, len(violations))
	for i, v := range violations {
		reasons[i] = v.Error()
	}
	joined := strings.Join(reasons, "\n")

	expected := []string{
		"node n3: data does not match type event",
		"node x4: id is not in the node namespace",
		"connection c10: trigger -> action is not allowed by pole rules",
		"connection c11: dest n9 does not exist",
		"connection c13: duplicates c12",
		`connection c14: condition "success" not allowed on trigger -> event`,
		"trigger n7: no trigger node with this id",
		"node n1: trigger node has no trigger record",
	}
	for _, want := range expected {
		assert.Contains(t, joined, want)
	}
	assert.Len(t, violations, len(expected))

	err := g.Check()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvariant))
}

func TestCheckCleanGraph(t *testing.T) {
	g := testGraph(t)
	trig := testNode(t, g, TypeTrigger)
	job := testNode(t, g, TypeJob)
	testConnect(t, g, trig, job)
	testConnect(t, g, job, testNode(t, g, TypeLimit))

	require.NoError(t, g.Check())
	assert.Empty(t, g.Violations())
}
