// Package record reads and writes event records, the persisted form of a
// workflow: its nodes and connections plus the trigger records of its
// trigger nodes.
package record

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-flow/pkg/validation"
	"github.com/dd0wney/cluso-flow/pkg/workflow"
)

// Record is a saved event
type Record struct {
	ID       string             `json:"id,omitempty"`
	Title    string             `json:"title,omitempty"`
	Workflow workflow.Workflow  `json:"workflow"`
	Triggers []workflow.Trigger `json:"triggers"`
}

// New captures the current state of g
func New(id, title string, g *workflow.Graph) Record {
	triggers := g.Triggers()
	if triggers == nil {
		triggers = []workflow.Trigger{}
	}
	wf := g.Workflow()
	if wf.Nodes == nil {
		wf.Nodes = []workflow.Node{}
	}
	if wf.Connections == nil {
		wf.Connections = []workflow.Connection{}
	}
	return Record{ID: id, Title: title, Workflow: wf, Triggers: triggers}
}

// Graph builds a graph from the record, rejecting records that break any
// graph invariant.
func (r Record) Graph(source workflow.IDSource) (*workflow.Graph, error) {
	g, err := workflow.FromWorkflow(r.Workflow, r.Triggers, source)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.label(), err)
	}
	return g, nil
}

// Violations lists every graph invariant the record breaks
func (r Record) Violations() []workflow.Violation {
	return workflow.Assemble(r.Workflow, r.Triggers, workflow.SequenceSource()).Violations()
}

// ValidatePayloads checks every node payload and trigger record and reports
// all failures joined.
func (r Record) ValidatePayloads() error {
	var errs []error
	for _, n := range r.Workflow.Nodes {
		if err := validation.ValidateNodeData(n.Data); err != nil {
			errs = append(errs, fmt.Errorf("node %s: %w", n.ID, err))
		}
	}
	for i := range r.Triggers {
		if err := validation.ValidateTrigger(&r.Triggers[i]); err != nil {
			errs = append(errs, fmt.Errorf("trigger %s: %w", r.Triggers[i].ID, err))
		}
	}
	return errors.Join(errs...)
}

func (r Record) label() string {
	if r.ID != "" {
		return r.ID
	}
	if r.Title != "" {
		return fmt.Sprintf("%q", r.Title)
	}
	return "(untitled)"
}
