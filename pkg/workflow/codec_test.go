package workflow

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sampleWorkflow = `{
	"nodes": [
		{"id": "n1", "type": "trigger", "data": {}, "x": 0, "y": 0},
		{"id": "n2", "type": "job", "data": {"title": "Build", "plugin": "shell", "targets": ["main"], "params": {"script": "make"}}, "x": 200, "y": 0},
		{"id": "n3", "type": "limit", "data": {"type": "time", "amount": 3600, "enabled": true}, "x": 200, "y": 120},
		{"id": "n4", "type": "controller", "data": {"controller": "repeat", "iterations": 3}, "x": 400, "y": 0},
		{"id": "n5", "type": "action", "data": {"type": "email", "enabled": true}, "x": 400, "y": 120}
	],
	"connections": [
		{"id": "c6", "source": "n1", "dest": "n2"},
		{"id": "c7", "source": "n2", "dest": "n3"},
		{"id": "c8", "source": "n2", "dest": "n4", "condition": "success"},
		{"id": "c9", "source": "n2", "dest": "n5", "condition": "error"}
	]
}`

func TestDecodeWorkflow(t *testing.T) {
	var wf Workflow
	if err := json.Unmarshal([]byte(sampleWorkflow), &wf); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	g, err := FromWorkflow(wf, []Trigger{NewManualTrigger("n1")}, SequenceSource())
	if err != nil {
		t.Fatalf("FromWorkflow failed: %v", err)
	}

	job, _ := g.Node("n2")
	data, ok := job.Data.(JobData)
	if !ok {
		t.Fatalf("job data decoded as %T", job.Data)
	}
	if data.Plugin != "shell" || data.Params["script"] != "make" {
		t.Errorf("job data = %+v", data)
	}
	ctrl, _ := g.Node("n4")
	if d := ctrl.Data.(ControllerData); d.Controller != ControllerRepeat || d.Iterations != 3 {
		t.Errorf("controller data = %+v", d)
	}
}

func TestWorkflowRoundTrip(t *testing.T) {
	var wf Workflow
	if err := json.Unmarshal([]byte(sampleWorkflow), &wf); err != nil {
		t.Fatal(err)
	}

	out, err := json.Marshal(wf)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var back Workflow
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal of re-encoded workflow failed: %v", err)
	}

	if diff := cmp.Diff(wf, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestConditionOmittedWhenEmpty(t *testing.T) {
	out, err := json.Marshal(Connection{ID: "c1", Source: "n1", Dest: "n2"})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"id":"c1","source":"n1","dest":"n2"}` {
		t.Errorf("encoded = %s", out)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	var n Node
	err := json.Unmarshal([]byte(`{"id":"n1","type":"widget"}`), &n)
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("error = %v, want ErrUnknownType", err)
	}
}

func TestDecodeMissingData(t *testing.T) {
	var n Node
	if err := json.Unmarshal([]byte(`{"id":"n1","type":"limit","x":5}`), &n); err != nil {
		t.Fatal(err)
	}
	if _, ok := n.Data.(LimitData); !ok {
		t.Errorf("data = %T, want LimitData", n.Data)
	}
}

func TestFromWorkflowRejectsViolations(t *testing.T) {
	var wf Workflow
	if err := json.Unmarshal([]byte(sampleWorkflow), &wf); err != nil {
		t.Fatal(err)
	}

	// Missing trigger record for n1.
	if _, err := FromWorkflow(wf, nil, nil); !errors.Is(err, ErrInvariant) {
		t.Errorf("error = %v, want ErrInvariant", err)
	}
}

func TestAssembleReservesIDs(t *testing.T) {
	g := Assemble(Workflow{Nodes: []Node{{ID: "n1", Type: TypeEvent, Data: EventData{}}}}, nil, SequenceSource())
	if id := g.NewNodeID(); id == "n1" {
		t.Errorf("NewNodeID reissued a loaded id")
	}
}

func TestParseData(t *testing.T) {
	data, err := ParseData(TypeLimit, []byte(`{"type":"time","amount":600,"enabled":true}`))
	if err != nil {
		t.Fatalf("ParseData: %v", err)
	}
	if diff := cmp.Diff(NodeData(LimitData{Type: "time", Amount: 600, Enabled: true}), data); diff != "" {
		t.Errorf("ParseData mismatch (-want +got):\n%s", diff)
	}

	data, err = ParseData(TypeController, nil)
	if err != nil || data != (ControllerData{}) {
		t.Errorf("ParseData(empty) = %+v, %v", data, err)
	}

	if _, err := ParseData(TypeJob, []byte(`{"targets":"main"}`)); err == nil {
		t.Error("expected error for malformed job data")
	}
}
