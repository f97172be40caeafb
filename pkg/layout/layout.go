// Package layout computes canvas positions for workflow nodes.
package layout

import (
	"math"

	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

// Position represents a 2D canvas coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Config configures layout parameters
type Config struct {
	NodeWidth  float64 // node footprint width
	NodeHeight float64 // node footprint height
	ColumnGap  float64 // horizontal space between levels
	RowGap     float64 // vertical space between nodes of one level
}

// Layout computes positions for the given nodes of g
type Layout interface {
	ComputeLayout(g *workflow.Graph, nodeIDs []string) (map[string]Position, error)
}

// bounds returns the top-left corner of the nodes' current positions
func bounds(g *workflow.Graph, nodeIDs []string) (minX, minY float64) {
	minX, minY = math.MaxFloat64, math.MaxFloat64
	for _, id := range nodeIDs {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		minX = math.Min(minX, n.X)
		minY = math.Min(minY, n.Y)
	}
	if minX == math.MaxFloat64 {
		return 0, 0
	}
	return minX, minY
}
