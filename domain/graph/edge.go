package graph

// Edge is a typed, directed relationship between two nodes.
type Edge struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	StartNode  NodeRef    `json:"startNode"`
	EndNode    NodeRef    `json:"endNode"`
	InternalID string     `json:"neo4jId,omitempty"`
}

// Touches reports whether the edge starts or ends at the given node id
func (e *Edge) Touches(nodeID string) bool {
	return e.StartNode.ID == nodeID || e.EndNode.ID == nodeID
}

// Normalize converts JSON decoded property values of the edge and both
// endpoint snapshots into the closed value set
func (e *Edge) Normalize() error {
	if e == nil {
		return nil
	}
	for _, p := range []*Properties{&e.Properties, &e.StartNode.Properties, &e.EndNode.Properties} {
		props, err := NormalizeProperties(*p)
		if err != nil {
			return err
		}
		*p = props
	}
	return nil
}

// Direction selects which incident edges of a node are returned.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
	DirectionBoth     Direction = "both"
)

// ParseDirection parses a direction, defaulting to both when empty
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case "":
		return DirectionBoth, nil
	case DirectionIncoming, DirectionOutgoing, DirectionBoth:
		return Direction(s), nil
	default:
		return "", ErrInvalidDirection
	}
}

// Matches reports whether an edge is incident to nodeID in this direction.
func (d Direction) Matches(e *Edge, nodeID string) bool {
	switch d {
	case DirectionIncoming:
		return e.EndNode.ID == nodeID
	case DirectionOutgoing:
		return e.StartNode.ID == nodeID
	default:
		return e.Touches(nodeID)
	}
}
