package workflow

import (
	"encoding/json"
	"fmt"
)

// NodeData is the type-specific payload of a node. Exactly one variant exists
// per NodeType and Kind reports which one.
type NodeData interface {
	Kind() NodeType
	CloneData() NodeData
}

// TriggerData is carried by trigger nodes; firing configuration lives in the paired Trigger record.
type TriggerData struct {
	Title string `json:"title,omitempty" validate:"max=100"`
}

// EventData references an existing event that the node launches
type EventData struct {
	Event   string         `json:"event" validate:"required"`
	Targets []string       `json:"targets,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

// JobData describes an inline job defined inside the workflow
type JobData struct {
	Title    string         `json:"title" validate:"required,max=100"`
	Plugin   string         `json:"plugin" validate:"required"`
	Category string         `json:"category,omitempty"`
	Targets  []string       `json:"targets" validate:"required,min=1"`
	Algo     string         `json:"algo,omitempty" validate:"omitempty,oneof=random round_robin least_cpu least_mem prefer_first prefer_last multiplex"`
	Icon     string         `json:"icon,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
}

// ActionData is an action fired by an upstream event or job
type ActionData struct {
	Type    string         `json:"type" validate:"required,oneof=email web_hook run_event channel snapshot ticket plugin disable delete"`
	Enabled bool           `json:"enabled"`
	Params  map[string]any `json:"params,omitempty"`
}

// LimitData is a resource limit attached below an event or job
type LimitData struct {
	Type    string         `json:"type" validate:"required,oneof=time job log mem cpu retry queue file"`
	Amount  int64          `json:"amount,omitempty" validate:"min=0"`
	Enabled bool           `json:"enabled"`
	Params  map[string]any `json:"params,omitempty"`
}

// Controller subtypes
const (
	ControllerMultiplex = "multiplex"
	ControllerRepeat    = "repeat"
	ControllerSplit     = "split"
	ControllerJoin      = "join"
	ControllerDecision  = "decision"
)

// ControllerData governs how downstream nodes are invoked.
// Only the fields of the selected Controller subtype are meaningful.
type ControllerData struct {
	Controller string `json:"controller" validate:"required,oneof=multiplex repeat split join decision"`

	// multiplex
	Stagger  int `json:"stagger,omitempty" validate:"min=0"`
	Continue int `json:"continue,omitempty" validate:"min=0,max=100"`

	// repeat
	Iterations int `json:"iterations,omitempty" validate:"required_if=Controller repeat,min=0"`

	// split
	Path string `json:"path,omitempty" validate:"required_if=Controller split"`

	// decision
	Expression string `json:"expression,omitempty" validate:"required_if=Controller decision"`
}

func (TriggerData) Kind() NodeType    { return TypeTrigger }
func (EventData) Kind() NodeType      { return TypeEvent }
func (JobData) Kind() NodeType        { return TypeJob }
func (ActionData) Kind() NodeType     { return TypeAction }
func (LimitData) Kind() NodeType      { return TypeLimit }
func (ControllerData) Kind() NodeType { return TypeController }

func (d TriggerData) CloneData() NodeData { return d }

func (d EventData) CloneData() NodeData {
	d.Targets = cloneStrings(d.Targets)
	d.Params = cloneParams(d.Params)
	return d
}

func (d JobData) CloneData() NodeData {
	d.Targets = cloneStrings(d.Targets)
	d.Params = cloneParams(d.Params)
	return d
}

func (d ActionData) CloneData() NodeData {
	d.Params = cloneParams(d.Params)
	return d
}

func (d LimitData) CloneData() NodeData {
	d.Params = cloneParams(d.Params)
	return d
}

func (d ControllerData) CloneData() NodeData { return d }

// EmptyData returns the zero payload for a node type
func EmptyData(t NodeType) (NodeData, error) {
	switch t {
	case TypeTrigger:
		return TriggerData{}, nil
	case TypeEvent:
		return EventData{}, nil
	case TypeJob:
		return JobData{}, nil
	case TypeAction:
		return ActionData{}, nil
	case TypeLimit:
		return LimitData{}, nil
	case TypeController:
		return ControllerData{}, nil
	}
	return nil, fmt.Errorf("unknown node type %q", t)
}

// decodeData unmarshals raw JSON into the variant selected by t
func decodeData(t NodeType, raw json.RawMessage) (NodeData, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return EmptyData(t)
	}
	switch t {
	case TypeTrigger:
		var d TriggerData
		err := json.Unmarshal(raw, &d)
		return d, err
	case TypeEvent:
		var d EventData
		err := json.Unmarshal(raw, &d)
		return d, err
	case TypeJob:
		var d JobData
		err := json.Unmarshal(raw, &d)
		return d, err
	case TypeAction:
		var d ActionData
		err := json.Unmarshal(raw, &d)
		return d, err
	case TypeLimit:
		var d LimitData
		err := json.Unmarshal(raw, &d)
		return d, err
	case TypeController:
		var d ControllerData
		err := json.Unmarshal(raw, &d)
		return d, err
	}
	return nil, fmt.Errorf("unknown node type %q", t)
}

// ParseData decodes a JSON payload for a node of type t. Empty input yields
// the zero payload.
func ParseData(t NodeType, raw []byte) (NodeData, error) {
	data, err := decodeData(t, raw)
	if err != nil {
		return nil, fmt.Errorf("%s data: %w", t, err)
	}
	return data, nil
}
