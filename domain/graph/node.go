package graph

import (
	"github.com/google/uuid"
)

// IDProperty is the property key that carries the application id of nodes and edges.
const IDProperty = "id"

// Node is a labeled vertex of the knowledge graph.
// ID is the application id stored as the "id" property. InternalID is the
// identity assigned by the store and is informational only.
type Node struct {
	ID         string     `json:"id"`
	Labels     []string   `json:"labels"`
	Properties Properties `json:"properties"`
	InternalID string     `json:"neo4jId,omitempty"`
}

// NodeRef is the snapshot of an endpoint embedded in an edge.
type NodeRef struct {
	ID         string     `json:"id"`
	Labels     []string   `json:"labels"`
	Properties Properties `json:"properties"`
}

// NewID generates a fresh application id
func NewID() string {
	return uuid.New().String()
}

// Ref returns the endpoint snapshot for this node
func (n *Node) Ref() NodeRef {
	return NodeRef{
		ID:         n.ID,
		Labels:     append([]string(nil), n.Labels...),
		Properties: n.Properties.Clone(),
	}
}

// HasLabel reports whether the node carries the given label
func (n *Node) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// Normalize converts JSON decoded property values into the closed value set
func (n *Node) Normalize() error {
	if n == nil {
		return nil
	}
	props, err := NormalizeProperties(n.Properties)
	if err != nil {
		return err
	}
	n.Properties = props
	return nil
}

// DisplayName returns the "name" property or a short id based fallback.
func (n *Node) DisplayName() string {
	if name, ok := n.Properties["name"].(string); ok && name != "" {
		return name
	}
	short := n.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return "node " + short
}
