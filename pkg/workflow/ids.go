package workflow

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Id prefixes keep node and connection ids in disjoint namespaces.
const (
	NodeIDPrefix       = "n"
	ConnectionIDPrefix = "c"
)

// IDSource produces a fresh random token for an id
type IDSource func() string

// UUIDSource returns 12 hex characters of a random UUID
func UUIDSource() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// SequenceSource returns a deterministic source yielding "1", "2", ...
func SequenceSource() IDSource {
	var n uint64
	return func() string {
		return fmt.Sprintf("%d", atomic.AddUint64(&n, 1))
	}
}

// IsNodeID reports whether id lives in the node namespace
func IsNodeID(id string) bool {
	return strings.HasPrefix(id, NodeIDPrefix) && len(id) > len(NodeIDPrefix)
}

// IsConnectionID reports whether id lives in the connection namespace
func IsConnectionID(id string) bool {
	return strings.HasPrefix(id, ConnectionIDPrefix) && len(id) > len(ConnectionIDPrefix)
}

// IDGenerator issues prefix-tagged ids and remembers every id it issued so
// that none is handed out twice, even after the graph is rolled back by undo.
// Clones of a graph share one generator.
type IDGenerator struct {
	source IDSource
	issued map[string]struct{}
}

// NewIDGenerator creates a generator; a nil source means UUIDSource
func NewIDGenerator(source IDSource) *IDGenerator {
	if source == nil {
		source = UUIDSource
	}
	return &IDGenerator{source: source, issued: make(map[string]struct{})}
}

// Reserve marks an externally supplied id as used
func (gen *IDGenerator) Reserve(id string) {
	gen.issued[id] = struct{}{}
}

func (gen *IDGenerator) next(prefix string) string {
	for {
		id := prefix + gen.source()
		if _, used := gen.issued[id]; used {
			continue
		}
		gen.issued[id] = struct{}{}
		return id
	}
}

// NewNodeID issues a node id that has never been used in this graph
func (g *Graph) NewNodeID() string {
	return g.gen.next(NodeIDPrefix)
}

// NewConnectionID issues a connection id that has never been used in this graph
func (g *Graph) NewConnectionID() string {
	return g.gen.next(ConnectionIDPrefix)
}
