package workflow

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// applyOps interprets a stream of integers as graph mutations
func applyOps(g *Graph, ops []int) {
	for i := 0; i+2 < len(ops); i += 3 {
		op, a, b := ops[i]%4, ops[i+1], ops[i+2]
		ids := g.NodeIDs()

		switch op {
		case 0:
			typ := NodeTypes[a%len(NodeTypes)]
			data, _ := EmptyData(typ)
			_ = g.AddNode(Node{ID: g.NewNodeID(), Type: typ, Data: data, X: float64(a), Y: float64(b)}, nil)
		case 1:
			if len(ids) < 2 {
				continue
			}
			src, dst := ids[a%len(ids)], ids[b%len(ids)]
			sourcePole, _ := ConnectionPoles(g.NodeType(src), g.NodeType(dst))
			_, _ = g.AddConnection(Connection{Source: src, Dest: dst, Condition: DefaultCondition(g.NodeType(src), sourcePole)})
		case 2:
			if len(ids) == 0 {
				continue
			}
			_, _ = g.RemoveNode(ids[a%len(ids)])
		case 3:
			if len(ids) == 0 {
				continue
			}
			_ = g.RemoveConnectionsTouching([]string{ids[a%len(ids)], ids[b%len(ids)]})
		}
	}
}

// TestGraphInvariants uses property-based testing to verify that no sequence
// of graph operations can leave the graph inconsistent.
func TestGraphInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("every connection references live nodes and pairs are unique", prop.ForAll(
		func(ops []int) bool {
			g := NewGraph(SequenceSource())
			applyOps(g, ops)

			live := make(map[string]bool)
			for _, id := range g.NodeIDs() {
				live[id] = true
			}
			pairs := make(map[[2]string]bool)
			for _, c := range g.Connections() {
				if !live[c.Source] || !live[c.Dest] {
					return false
				}
				key := [2]string{c.Source, c.Dest}
				if pairs[key] {
					return false
				}
				pairs[key] = true
			}
			return true
		},
		gen.SliceOfN(90, gen.IntRange(0, 9999)),
	))

	properties.Property("trigger nodes and trigger records stay in lockstep", prop.ForAll(
		func(ops []int) bool {
			g := NewGraph(SequenceSource())
			applyOps(g, ops)

			triggerNodes := make(map[string]bool)
			for _, n := range g.Nodes() {
				if n.Type == TypeTrigger {
					triggerNodes[n.ID] = true
				}
			}
			records := g.Triggers()
			if len(records) != len(triggerNodes) {
				return false
			}
			for _, rec := range records {
				if !triggerNodes[rec.ID] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(90, gen.IntRange(0, 9999)),
	))

	properties.Property("Check passes after any operation sequence", prop.ForAll(
		func(ops []int) bool {
			g := NewGraph(SequenceSource())
			applyOps(g, ops)
			return g.Check() == nil
		},
		gen.SliceOfN(120, gen.IntRange(0, 9999)),
	))

	properties.TestingRun(t)
}
