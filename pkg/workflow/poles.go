package workflow

// Pole is a typed attachment point on a node
type Pole string

const (
	PoleInput  Pole = "input"
	PoleOutput Pole = "output"
	PoleDown   Pole = "down"
	PoleUp     Pole = "up"
)

// Valid reports whether p is a known pole kind
func (p Pole) Valid() bool {
	switch p {
	case PoleInput, PoleOutput, PoleDown, PoleUp:
		return true
	}
	return false
}

// Outbound reports whether flow leaves a node through this pole
func (p Pole) Outbound() bool {
	return p == PoleOutput || p == PoleDown
}

// Opposite returns the pole kind that pairs with p
func Opposite(p Pole) Pole {
	switch p {
	case PoleInput:
		return PoleOutput
	case PoleOutput:
		return PoleInput
	case PoleDown:
		return PoleUp
	case PoleUp:
		return PoleDown
	}
	return ""
}

// polesByType is the single source of truth for pole availability.
// Event and job share a row; extend here rather than special-casing elsewhere.
var polesByType = map[NodeType][]Pole{
	TypeTrigger:    {PoleOutput},
	TypeEvent:      {PoleInput, PoleOutput, PoleDown},
	TypeJob:        {PoleInput, PoleOutput, PoleDown},
	TypeAction:     {PoleInput},
	TypeLimit:      {PoleUp},
	TypeController: {PoleInput, PoleOutput},
}

// Poles returns the poles exposed by a node type
func Poles(t NodeType) []Pole {
	poles := polesByType[t]
	out := make([]Pole, len(poles))
	copy(out, poles)
	return out
}

// HasPole reports whether nodes of type t expose pole p
func HasPole(t NodeType, p Pole) bool {
	for _, q := range polesByType[t] {
		if q == p {
			return true
		}
	}
	return false
}

// feedsActionsForbidden marks types whose output may not go straight into an action
func feedsActionsForbidden(t NodeType) bool {
	return t == TypeTrigger || t == TypeController
}

// CanConnect reports whether a connection started at a node of type start via
// startPole may end on a node of type end.
func CanConnect(start NodeType, startPole Pole, end NodeType) bool {
	if !HasPole(start, startPole) || !HasPole(end, Opposite(startPole)) {
		return false
	}
	if feedsActionsForbidden(start) && end == TypeAction {
		return false
	}
	if start == TypeAction && feedsActionsForbidden(end) {
		return false
	}
	return true
}

// AllowedEndTypes returns the node types that may terminate a connection
// started from startPole on a node of type start, in menu order.
func AllowedEndTypes(start NodeType, startPole Pole) []NodeType {
	var out []NodeType
	for _, t := range NodeTypes {
		if CanConnect(start, startPole, t) {
			out = append(out, t)
		}
	}
	return out
}

// Orient resolves a soldered pair into flow direction. When the user grabbed the
// destination side first (input or up) the ends are swapped so that source
// always feeds dest. It returns the source and dest ids and the pole each end uses.
func Orient(startID string, startPole Pole, endID string) (source, dest string, sourcePole, destPole Pole) {
	if startPole.Outbound() {
		return startID, endID, startPole, Opposite(startPole)
	}
	return endID, startID, Opposite(startPole), startPole
}

// DefaultCondition returns the condition assigned to a new connection leaving a
// node of type source through sourcePole. Only event/job primary outputs get one.
func DefaultCondition(source NodeType, sourcePole Pole) string {
	if (source == TypeEvent || source == TypeJob) && sourcePole == PoleOutput {
		return ConditionSuccess
	}
	return ""
}

// ConnectionPoles infers which poles an existing connection uses from its
// endpoint types. Connections into a limit use the down/up pair; everything
// else uses output/input.
func ConnectionPoles(source, dest NodeType) (sourcePole, destPole Pole) {
	if dest == TypeLimit {
		return PoleDown, PoleUp
	}
	return PoleOutput, PoleInput
}

// ConnectionLegal reports whether a source→dest connection between the given
// node types is legal under the pole rules.
func ConnectionLegal(source, dest NodeType) bool {
	sourcePole, _ := ConnectionPoles(source, dest)
	return CanConnect(source, sourcePole, dest)
}
