package workflow

import (
	"fmt"
	"strings"
)

// NodeType identifies the semantic kind of a workflow node
type NodeType string

const (
	TypeTrigger    NodeType = "trigger"
	TypeEvent      NodeType = "event"
	TypeJob        NodeType = "job"
	TypeAction     NodeType = "action"
	TypeLimit      NodeType = "limit"
	TypeController NodeType = "controller"
)

// NodeTypes lists every node type in menu order
var NodeTypes = []NodeType{TypeTrigger, TypeEvent, TypeJob, TypeAction, TypeLimit, TypeController}

// Valid reports whether t is a known node type
func (t NodeType) Valid() bool {
	switch t {
	case TypeTrigger, TypeEvent, TypeJob, TypeAction, TypeLimit, TypeController:
		return true
	}
	return false
}

// ParseNodeType converts a string to a NodeType
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown node type %q", s)
	}
	return t, nil
}

// Node is a vertex in the workflow graph.
// X and Y are abstract canvas coordinates used for layout only.
type Node struct {
	ID   string
	Type NodeType
	Data NodeData
	X    float64
	Y    float64
}

// Clone returns a deep copy of the node
func (n Node) Clone() Node {
	c := n
	if n.Data != nil {
		c.Data = n.Data.CloneData()
	}
	return c
}

// Connection is a directed edge from Source to Dest.
// Condition is only set on edges leaving an event/job node through its output pole.
type Connection struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Dest      string `json:"dest"`
	Condition string `json:"condition,omitempty"`
}

// Job outcome conditions a connection may be gated on
const (
	ConditionStart    = "start"
	ConditionComplete = "complete"
	ConditionSuccess  = "success"
	ConditionError    = "error"
	ConditionWarning  = "warning"
	ConditionCritical = "critical"
	ConditionAbort    = "abort"

	conditionTagPrefix = "tag:"
)

// ValidCondition reports whether c is a built-in condition or a "tag:<name>" condition
func ValidCondition(c string) bool {
	switch c {
	case ConditionStart, ConditionComplete, ConditionSuccess, ConditionError,
		ConditionWarning, ConditionCritical, ConditionAbort:
		return true
	}
	return strings.HasPrefix(c, conditionTagPrefix) && len(c) > len(conditionTagPrefix)
}

// TriggerType is the firing mode of a trigger record
type TriggerType string

const (
	TriggerManual     TriggerType = "manual"
	TriggerSchedule   TriggerType = "schedule"
	TriggerSingle     TriggerType = "single"
	TriggerInterval   TriggerType = "interval"
	TriggerContinuous TriggerType = "continuous"
	TriggerCatchup    TriggerType = "catchup"
	TriggerRange      TriggerType = "range"
	TriggerBlackout   TriggerType = "blackout"
	TriggerPlugin     TriggerType = "plugin"
)

// Trigger is the firing configuration paired 1:1 with a trigger node.
// It shares the node's ID and lives outside the node address space.
type Trigger struct {
	ID       string         `json:"id" validate:"required"`
	Type     TriggerType    `json:"type" validate:"required,oneof=manual schedule single interval continuous catchup range blackout plugin"`
	Enabled  bool           `json:"enabled"`
	Years    []int          `json:"years,omitempty"`
	Months   []int          `json:"months,omitempty" validate:"omitempty,dive,min=1,max=12"`
	Days     []int          `json:"days,omitempty" validate:"omitempty,dive,min=-7,max=31"`
	Weekdays []int          `json:"weekdays,omitempty" validate:"omitempty,dive,min=0,max=6"`
	Hours    []int          `json:"hours,omitempty" validate:"omitempty,dive,min=0,max=23"`
	Minutes  []int          `json:"minutes,omitempty" validate:"omitempty,dive,min=0,max=59"`
	Timezone string         `json:"timezone,omitempty"`
	Epoch    int64          `json:"epoch,omitempty"`
	Start    int64          `json:"start,omitempty"`
	End      int64          `json:"end,omitempty"`
	Interval int64          `json:"interval,omitempty" validate:"omitempty,min=1"`
	Plugin   string         `json:"plugin_id,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
}

// NewManualTrigger returns an enabled manual trigger record for the given node id
func NewManualTrigger(id string) Trigger {
	return Trigger{ID: id, Type: TriggerManual, Enabled: true}
}

// Clone returns a deep copy of the trigger record
func (t Trigger) Clone() Trigger {
	c := t
	c.Years = cloneInts(t.Years)
	c.Months = cloneInts(t.Months)
	c.Days = cloneInts(t.Days)
	c.Weekdays = cloneInts(t.Weekdays)
	c.Hours = cloneInts(t.Hours)
	c.Minutes = cloneInts(t.Minutes)
	c.Params = cloneParams(t.Params)
	return c
}

func cloneInts(in []int) []int {
	if in == nil {
		return nil
	}
	out := make([]int, len(in))
	copy(out, in)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// cloneParams deep-copies a JSON-shaped parameter map
func cloneParams(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return cloneParams(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return cloneStrings(tv)
	case []int:
		return cloneInts(tv)
	default:
		return v
	}
}
