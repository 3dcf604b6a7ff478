package neo4j

import (
	"strings"

	"kgms-backend/domain/graph"
)

// Query templates. Caller input only ever reaches the store as bound
// parameters; labels and relationship types used at creation time are
// validated against the identifier grammar and backtick-quoted.
const (
	listNodesQuery = `
		MATCH (n)
		WHERE $label = '' OR $label IN labels(n)
		RETURN n
		ORDER BY elementId(n)
		SKIP $skip LIMIT $limit`

	getNodeQuery = `
		MATCH (n {id: $id})
		RETURN n
		LIMIT 1`

	updateNodeQuery = `
		MATCH (n {id: $id})
		SET n += $props
		RETURN n`

	deleteNodeQuery = `
		MATCH (n {id: $id})
		DETACH DELETE n`

	searchNodesQuery = `
		MATCH (n)
		WHERE n[$key] IN $values
		RETURN n
		ORDER BY elementId(n)
		SKIP $skip LIMIT $limit`

	edgeReturn = `
		RETURN r, startNode(r) AS start, endNode(r) AS end`

	listEdgesQuery = `
		MATCH ()-[r]->()
		WHERE $type = '' OR type(r) = $type` + edgeReturn + `
		ORDER BY elementId(r)
		SKIP $skip LIMIT $limit`

	getEdgeQuery = `
		MATCH ()-[r {id: $id}]->()` + edgeReturn + `
		LIMIT 1`

	updateEdgeQuery = `
		MATCH ()-[r {id: $id}]->()
		SET r += $props` + edgeReturn

	deleteEdgeQuery = `
		MATCH ()-[r]->()
		WHERE r.id = $id OR id(r) = $internalId
		DELETE r`

	incomingEdgesQuery = `
		MATCH ()-[r]->({id: $nodeId})` + edgeReturn + `
		ORDER BY elementId(r)
		SKIP $skip LIMIT $limit`

	outgoingEdgesQuery = `
		MATCH ({id: $nodeId})-[r]->()` + edgeReturn + `
		ORDER BY elementId(r)
		SKIP $skip LIMIT $limit`

	bothEdgesQuery = `
		MATCH ({id: $nodeId})-[r]-()
		WITH DISTINCT r` + edgeReturn + `
		ORDER BY elementId(r)
		SKIP $skip LIMIT $limit`
)

// createNodeQuery builds the CREATE statement for pre-validated labels
func createNodeQuery(labels []string) string {
	var sb strings.Builder
	sb.WriteString("CREATE (n")
	for _, l := range labels {
		sb.WriteString(":")
		sb.WriteString(graph.QuoteIdentifier(l))
	}
	sb.WriteString(" $props) RETURN n")
	return sb.String()
}

// createEdgeQuery builds the CREATE statement for a pre-validated type
func createEdgeQuery(edgeType string) string {
	return `
		MATCH (a {id: $startId})
		WITH a LIMIT 1
		MATCH (b {id: $endId})
		WITH a, b LIMIT 1
		CREATE (a)-[r:` + graph.QuoteIdentifier(edgeType) + ` $props]->(b)
		RETURN r, a AS start, b AS end`
}

func edgesForNodeQuery(direction graph.Direction) string {
	switch direction {
	case graph.DirectionIncoming:
		return incomingEdgesQuery
	case graph.DirectionOutgoing:
		return outgoingEdgesQuery
	default:
		return bothEdgesQuery
	}
}

func pageParams(page graph.Page, params map[string]any) map[string]any {
	params["skip"] = int64(page.Skip)
	params["limit"] = int64(page.Limit)
	return params
}
