package workflow

import (
	"errors"
	"fmt"
)

// Violation describes one broken structural invariant
type Violation struct {
	Entity string
	ID     string
	Reason string
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s %s: %s", v.Entity, v.ID, v.Reason)
}

// Unwrap lets errors.Is(v, ErrInvariant) match
func (v Violation) Unwrap() error {
	return ErrInvariant
}

// Violations audits the graph and returns every broken invariant:
// dangling endpoints, duplicate (source, dest) pairs, pole-illegal
// connections, misplaced conditions, trigger/node coupling and id namespaces.
func (g *Graph) Violations() []Violation {
	var out []Violation
	add := func(entity, id, format string, args ...any) {
		out = append(out, Violation{Entity: entity, ID: id, Reason: fmt.Sprintf(format, args...)})
	}

	nodeTypes := make(map[string]NodeType, len(g.nodes))
	for _, n := range g.nodes {
		if _, dup := nodeTypes[n.ID]; dup {
			add("node", n.ID, "duplicate node id")
		}
		nodeTypes[n.ID] = n.Type
		if !IsNodeID(n.ID) {
			add("node", n.ID, "id is not in the node namespace")
		}
		if !n.Type.Valid() {
			add("node", n.ID, "unknown type %q", n.Type)
			continue
		}
		if n.Data == nil || n.Data.Kind() != n.Type {
			add("node", n.ID, "data does not match type %s", n.Type)
		}
	}

	seenConn := make(map[string]bool, len(g.connections))
	pairs := make(map[[2]string]string, len(g.connections))
	for _, c := range g.connections {
		if seenConn[c.ID] {
			add("connection", c.ID, "duplicate connection id")
		}
		seenConn[c.ID] = true
		if !IsConnectionID(c.ID) {
			add("connection", c.ID, "id is not in the connection namespace")
		}
		if _, clash := nodeTypes[c.ID]; clash {
			add("connection", c.ID, "id collides with a node id")
		}

		srcType, srcOK := nodeTypes[c.Source]
		dstType, dstOK := nodeTypes[c.Dest]
		if !srcOK {
			add("connection", c.ID, "source %s does not exist", c.Source)
		}
		if !dstOK {
			add("connection", c.ID, "dest %s does not exist", c.Dest)
		}
		if c.Source == c.Dest {
			add("connection", c.ID, "self loop on %s", c.Source)
		}

		key := [2]string{c.Source, c.Dest}
		if other, dup := pairs[key]; dup {
			add("connection", c.ID, "duplicates %s (%s -> %s)", other, c.Source, c.Dest)
		} else {
			pairs[key] = c.ID
		}

		if !srcOK || !dstOK {
			continue
		}
		if !ConnectionLegal(srcType, dstType) {
			add("connection", c.ID, "%s -> %s is not allowed by pole rules", srcType, dstType)
		}
		if err := checkCondition(srcType, dstType, c.Condition); err != nil {
			add("connection", c.ID, "condition %q not allowed on %s -> %s", c.Condition, srcType, dstType)
		}
	}

	triggerIDs := make(map[string]bool, len(g.triggers))
	for _, t := range g.triggers {
		if triggerIDs[t.ID] {
			add("trigger", t.ID, "duplicate trigger record")
		}
		triggerIDs[t.ID] = true
		if nodeTypes[t.ID] != TypeTrigger {
			add("trigger", t.ID, "no trigger node with this id")
		}
	}
	for _, n := range g.nodes {
		if n.Type == TypeTrigger && !triggerIDs[n.ID] {
			add("node", n.ID, "trigger node has no trigger record")
		}
	}
	return out
}

// Check returns nil when every invariant holds, otherwise all violations joined.
func (g *Graph) Check() error {
	violations := g.Violations()
	if len(violations) == 0 {
		return nil
	}
	errs := make([]error, len(violations))
	for i, v := range violations {
		errs[i] = v
	}
	return errors.Join(errs...)
}
