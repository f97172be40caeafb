package editor

import (
	"errors"

	"github.com/dd0wney/cluso-flow/pkg/validation"
	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

var (
	// ErrDialogCancelled is returned by a NodeDialog the user dismissed
	ErrDialogCancelled = errors.New("dialog cancelled")
	// ErrSolderActive rejects edits that cannot interleave with a solder
	ErrSolderActive = errors.New("solder in progress")
	// ErrNotPaused is returned when no solder is waiting for a new node
	ErrNotPaused = errors.New("no solder waiting for a new node")
	// ErrTypeNotOffered is returned for a node type the solder menu does not offer
	ErrTypeNotOffered = errors.New("node type not offered")
	// ErrNotSolo is returned when an edit requires exactly one selected node
	ErrNotSolo = errors.New("edit requires a single selected node")
)

// NodeDialog collects the payload of a node about to be created. Trigger
// nodes may return a trigger record; nil yields a manual trigger.
type NodeDialog interface {
	Create(t workflow.NodeType) (workflow.NodeData, *workflow.Trigger, error)
}

// DialogFunc adapts a function to NodeDialog
type DialogFunc func(t workflow.NodeType) (workflow.NodeData, *workflow.Trigger, error)

// Create calls f(t)
func (f DialogFunc) Create(t workflow.NodeType) (workflow.NodeData, *workflow.Trigger, error) {
	return f(t)
}

// validatePayload checks dialog output for node id before it reaches the
// graph. A trigger record without an id is bound to the node.
func validatePayload(id string, t workflow.NodeType, data workflow.NodeData, trig *workflow.Trigger) (workflow.NodeData, *workflow.Trigger, error) {
	if data == nil {
		empty, err := workflow.EmptyData(t)
		if err != nil {
			return nil, nil, err
		}
		data = empty
	}
	if data.Kind() != t {
		return nil, nil, workflow.NewError("validate").Node(id).Context("%s data for a %s node", data.Kind(), t).Cause(workflow.ErrDataMismatch).Err()
	}
	if err := validation.ValidateNodeData(data); err != nil {
		return nil, nil, err
	}
	if trig == nil {
		return data, nil, nil
	}
	if t != workflow.TypeTrigger {
		return nil, nil, workflow.NewError("validate").Node(id).Context("%s nodes have no trigger record", t).Cause(workflow.ErrTriggerMismatch).Err()
	}
	rec := trig.Clone()
	if rec.ID == "" {
		rec.ID = id
	}
	if err := validation.ValidateTrigger(&rec); err != nil {
		return nil, nil, err
	}
	return data, &rec, nil
}
