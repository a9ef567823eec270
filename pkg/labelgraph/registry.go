package labelgraph

import (
	"encoding/json"
	"slices"
)

// NodeRegistry holds nodes keyed by ID in insertion order. It is write-once
// per ID: the first node added under an ID is kept and later ones are
// dropped. The zero value is not usable; use [NewNodeRegistry].
type NodeRegistry struct {
	index map[string]int
	nodes []Node
}

// NewNodeRegistry creates an empty registry.
func NewNodeRegistry() *NodeRegistry {
	return &NodeRegistry{index: make(map[string]int)}
}

// Add inserts n unless a node with the same ID is already present.
// It reports whether n was inserted.
func (r *NodeRegistry) Add(n Node) bool {
	id := n.NodeID()
	if _, ok := r.index[id]; ok {
		return false
	}
	r.index[id] = len(r.nodes)
	r.nodes = append(r.nodes, n)
	return true
}

// Has reports whether a node with the given ID exists.
func (r *NodeRegistry) Has(id string) bool {
	_, ok := r.index[id]
	return ok
}

// Len returns the number of nodes.
func (r *NodeRegistry) Len() int { return len(r.nodes) }

// Nodes returns a copy of the nodes in insertion order. The result is never nil.
func (r *NodeRegistry) Nodes() []Node {
	if r.nodes == nil {
		return []Node{}
	}
	return slices.Clone(r.nodes)
}

// EdgeCollector accumulates links in append order. Links are neither
// deduplicated nor checked against a registry, so a link may point at a node
// that was never added.
type EdgeCollector struct {
	links []Link
}

// NewEdgeCollector creates an empty collector.
func NewEdgeCollector() *EdgeCollector { return &EdgeCollector{} }

// Add appends a link from source to target. An empty label is omitted from
// the serialized link.
func (c *EdgeCollector) Add(source, target, label string) {
	c.links = append(c.links, Link{Source: source, Target: target, Label: label})
}

// Len returns the number of links.
func (c *EdgeCollector) Len() int { return len(c.links) }

// Links returns a copy of the links in append order. The result is never nil.
func (c *EdgeCollector) Links() []Link {
	if c.links == nil {
		return []Link{}
	}
	return slices.Clone(c.links)
}

// MalformedLog accumulates diagnostics in discovery order.
type MalformedLog struct {
	entries []MalformedEntry
}

// NewMalformedLog creates an empty log.
func NewMalformedLog() *MalformedLog { return &MalformedLog{} }

// Add records a diagnostic. artist may be empty.
func (l *MalformedLog) Add(reason, artist string, entry json.RawMessage) {
	l.entries = append(l.entries, MalformedEntry{Reason: reason, Artist: artist, Entry: entry})
}

// Len returns the number of entries.
func (l *MalformedLog) Len() int { return len(l.entries) }

// Entries returns a copy of the recorded entries. The result is never nil.
func (l *MalformedLog) Entries() []MalformedEntry {
	if l.entries == nil {
		return []MalformedEntry{}
	}
	return slices.Clone(l.entries)
}
