package neo4j

import (
	"fmt"
	"strconv"
	"time"

	"kgms-backend/domain/graph"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

func toNode(n neo4j.Node) *graph.Node {
	props := fromStoreProps(n.Props)
	id, _ := props[graph.IDProperty].(string)
	labels := n.Labels
	if labels == nil {
		labels = []string{}
	}
	return &graph.Node{
		ID:         id,
		Labels:     labels,
		Properties: props,
		InternalID: strconv.FormatInt(n.Id, 10),
	}
}

func toEdge(r neo4j.Relationship, start, end neo4j.Node) *graph.Edge {
	props := fromStoreProps(r.Props)
	id, _ := props[graph.IDProperty].(string)
	return &graph.Edge{
		ID:         id,
		Type:       r.Type,
		Properties: props,
		StartNode:  toNode(start).Ref(),
		EndNode:    toNode(end).Ref(),
		InternalID: strconv.FormatInt(r.Id, 10),
	}
}

func nodeFromRecord(record *neo4j.Record, key string) (*graph.Node, error) {
	raw, ok := record.Get(key)
	if !ok {
		return nil, fmt.Errorf("record has no %q column", key)
	}
	n, ok := raw.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("column %q is %T, not a node", key, raw)
	}
	return toNode(n), nil
}

func edgeFromRecord(record *neo4j.Record) (*graph.Edge, error) {
	raw, ok := record.Get("r")
	if !ok {
		return nil, fmt.Errorf("record has no \"r\" column")
	}
	rel, ok := raw.(neo4j.Relationship)
	if !ok {
		return nil, fmt.Errorf("column \"r\" is %T, not a relationship", raw)
	}
	start, ok := record.Get("start")
	if !ok {
		return nil, fmt.Errorf("record has no \"start\" column")
	}
	end, ok := record.Get("end")
	if !ok {
		return nil, fmt.Errorf("record has no \"end\" column")
	}
	startNode, ok := start.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("column \"start\" is %T, not a node", start)
	}
	endNode, ok := end.(neo4j.Node)
	if !ok {
		return nil, fmt.Errorf("column \"end\" is %T, not a node", end)
	}
	return toEdge(rel, startNode, endNode), nil
}

func fromStoreProps(in map[string]any) graph.Properties {
	out := make(graph.Properties, len(in))
	for k, v := range in {
		out[k] = fromStoreValue(v)
	}
	return out
}

// fromStoreValue maps driver values onto the closed property value set.
// Temporal and spatial values are rendered as strings.
func fromStoreValue(v any) any {
	switch t := v.(type) {
	case nil, string, bool, int64, float64:
		return t
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = fromStoreValue(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = fromStoreValue(x)
		}
		return out
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case dbtype.Date:
		return t.Time().Format("2006-01-02")
	case dbtype.LocalDateTime:
		return t.Time().Format("2006-01-02T15:04:05.999999999")
	case dbtype.Duration:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
