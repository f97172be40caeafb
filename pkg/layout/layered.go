package layout

import (
	"slices"

	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

// LayeredLayout arranges nodes left to right by flow depth. Limit nodes are
// stacked beneath the node they constrain.
type LayeredLayout struct {
	config Config
}

// NewLayeredLayout creates a new layered layout
func NewLayeredLayout(config Config) *LayeredLayout {
	if config.NodeWidth == 0 {
		config.NodeWidth = 200
	}
	if config.NodeHeight == 0 {
		config.NodeHeight = 60
	}
	return &LayeredLayout{config: config}
}

// ComputeLayout arranges nodeIDs. Connections to nodes outside nodeIDs are
// ignored. The arranged block keeps the top-left corner of the input.
func (ll *LayeredLayout) ComputeLayout(g *workflow.Graph, nodeIDs []string) (map[string]Position, error) {
	positions := make(map[string]Position)
	if len(nodeIDs) == 0 {
		return positions, nil
	}

	in := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		if !g.HasNode(id) {
			return nil, workflow.NodeNotFoundError("ComputeLayout", id)
		}
		in[id] = true
	}

	// Split flow nodes from limits and index flow edges
	var flow []string
	limits := make(map[string][]string)
	hasIncoming := make(map[string]bool)
	outgoing := make(map[string][]string)
	for _, c := range g.Connections() {
		if !in[c.Source] || !in[c.Dest] {
			continue
		}
		if g.NodeType(c.Dest) == workflow.TypeLimit {
			limits[c.Source] = append(limits[c.Source], c.Dest)
			continue
		}
		outgoing[c.Source] = append(outgoing[c.Source], c.Dest)
		hasIncoming[c.Dest] = true
	}
	attached := make(map[string]bool)
	for _, ls := range limits {
		for _, l := range ls {
			attached[l] = true
		}
	}
	for _, id := range nodeIDs {
		if !attached[id] {
			flow = append(flow, id)
		}
	}

	// Find root nodes (nodes with no incoming flow)
	roots := make([]string, 0)
	for _, id := range flow {
		if !hasIncoming[id] {
			roots = append(roots, id)
		}
	}
	if len(roots) == 0 && len(flow) > 0 {
		roots = []string{flow[0]}
	}

	// Build levels using BFS
	levels := make([][]string, 0)
	visited := make(map[string]bool)
	for _, id := range roots {
		visited[id] = true
	}
	currentLevel := roots
	for len(currentLevel) > 0 {
		levels = append(levels, currentLevel)
		nextLevel := make([]string, 0)
		for _, id := range currentLevel {
			for _, dest := range outgoing[id] {
				if !visited[dest] {
					nextLevel = append(nextLevel, dest)
					visited[dest] = true
				}
			}
		}
		currentLevel = nextLevel
	}

	// Nodes only reachable through a cycle join the last level
	for _, id := range flow {
		if !visited[id] {
			if len(levels) == 0 {
				levels = append(levels, []string{})
			}
			levels[len(levels)-1] = append(levels[len(levels)-1], id)
		}
	}

	originX, originY := bounds(g, nodeIDs)
	colStep := ll.config.NodeWidth + ll.config.ColumnGap
	rowStep := ll.config.NodeHeight + ll.config.RowGap

	for levelIdx, level := range levels {
		x := originX + float64(levelIdx)*colStep
		row := 0
		for _, id := range level {
			positions[id] = Position{X: x, Y: originY + float64(row)*rowStep}
			row++
			for _, l := range limits[id] {
				if _, placed := positions[l]; placed {
					continue
				}
				positions[l] = Position{X: x, Y: originY + float64(row)*rowStep}
				row++
			}
		}
	}

	return positions, nil
}

// Apply moves every node of g to its computed position and returns the ids
// that actually moved, sorted.
func Apply(g *workflow.Graph, positions map[string]Position) ([]string, error) {
	var moved []string
	for _, n := range g.Nodes() {
		p, ok := positions[n.ID]
		if !ok || (p.X == n.X && p.Y == n.Y) {
			continue
		}
		if err := g.MoveNode(n.ID, p.X, p.Y); err != nil {
			return moved, err
		}
		moved = append(moved, n.ID)
	}
	slices.Sort(moved)
	return moved, nil
}
