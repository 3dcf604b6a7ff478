package memory

import (
	"context"
	"testing"

	"kgms-backend/domain/graph"
	apperrors "kgms-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		_, err := s.Nodes().Create(context.Background(), &graph.Node{
			ID:         id,
			Labels:     []string{"Thing"},
			Properties: graph.Properties{"name": id},
		})
		require.NoError(t, err)
	}
}

func link(t *testing.T, s *Store, id, start, end, edgeType string) *graph.Edge {
	t.Helper()
	edge, err := s.Edges().Create(context.Background(), &graph.Edge{
		ID:         id,
		Type:       edgeType,
		Properties: graph.Properties{},
		StartNode:  graph.NodeRef{ID: start},
		EndNode:    graph.NodeRef{ID: end},
	})
	require.NoError(t, err)
	return edge
}

func TestStore_Nodes(t *testing.T) {
	ctx := context.Background()

	t.Run("Should keep insertion order across pages", func(t *testing.T) {
		s := NewStore()
		seed(t, s, "a", "b", "c", "d")

		first, err := s.Nodes().List(ctx, graph.Page{Limit: 2}, "")
		require.NoError(t, err)
		second, err := s.Nodes().List(ctx, graph.Page{Limit: 2, Skip: 2}, "")
		require.NoError(t, err)

		assert.Equal(t, "a", first[0].ID)
		assert.Equal(t, "b", first[1].ID)
		assert.Equal(t, "c", second[0].ID)
		assert.Equal(t, "d", second[1].ID)
	})

	t.Run("Should return a copy that callers cannot mutate", func(t *testing.T) {
		s := NewStore()
		seed(t, s, "a")

		node, err := s.Nodes().GetByID(ctx, "a")
		require.NoError(t, err)
		node.Properties["name"] = "changed"

		again, err := s.Nodes().GetByID(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "a", again.Properties["name"])
	})

	t.Run("Should remove properties updated to null", func(t *testing.T) {
		s := NewStore()
		seed(t, s, "a", "b")
		link(t, s, "e", "a", "b", "KNOWS")

		_, err := s.Nodes().Update(ctx, "a", graph.Properties{"nick": "x"})
		require.NoError(t, err)
		node, err := s.Nodes().Update(ctx, "a", graph.Properties{"nick": nil})
		require.NoError(t, err)
		_, present := node.Properties["nick"]
		assert.False(t, present)
		assert.Equal(t, "a", node.Properties["name"])

		_, err = s.Edges().Update(ctx, "e", graph.Properties{"since": int64(2020)})
		require.NoError(t, err)
		edge, err := s.Edges().Update(ctx, "e", graph.Properties{"since": nil})
		require.NoError(t, err)
		_, present = edge.Properties["since"]
		assert.False(t, present)
	})

	t.Run("Should reject nested maps", func(t *testing.T) {
		s := NewStore()
		_, err := s.Nodes().Create(ctx, &graph.Node{
			ID:         "x",
			Properties: graph.Properties{"meta": map[string]any{"k": "v"}},
		})
		assert.True(t, apperrors.IsValidation(err))

		seed(t, s, "a")
		_, err = s.Nodes().Update(ctx, "a", graph.Properties{"meta": map[string]any{}})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("Should cascade node deletes to edges", func(t *testing.T) {
		s := NewStore()
		seed(t, s, "a", "b", "c")
		link(t, s, "e1", "a", "b", "KNOWS")
		link(t, s, "e2", "b", "c", "KNOWS")

		deleted, err := s.Nodes().Delete(ctx, "a")
		require.NoError(t, err)
		assert.True(t, deleted)

		edges, err := s.Edges().List(ctx, graph.Page{Limit: 10}, "")
		require.NoError(t, err)
		require.Len(t, edges, 1)
		assert.Equal(t, "e2", edges[0].ID)

		deleted, err = s.Nodes().Delete(ctx, "a")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("Should search typed candidates", func(t *testing.T) {
		s := NewStore()
		_, err := s.Nodes().Create(ctx, &graph.Node{ID: "n1", Properties: graph.Properties{"age": int64(3)}})
		require.NoError(t, err)
		_, err = s.Nodes().Create(ctx, &graph.Node{ID: "n2", Properties: graph.Properties{"age": "3"}})
		require.NoError(t, err)

		found, err := s.Nodes().Search(ctx, "age", graph.SearchCandidates("3"), graph.Page{Limit: 10})
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})
}

func TestStore_Edges(t *testing.T) {
	ctx := context.Background()

	t.Run("Should refuse dangling endpoints", func(t *testing.T) {
		s := NewStore()
		seed(t, s, "a")
		_, err := s.Edges().Create(ctx, &graph.Edge{
			ID:        "e",
			Type:      "KNOWS",
			StartNode: graph.NodeRef{ID: "a"},
			EndNode:   graph.NodeRef{ID: "ghost"},
		})
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("Should embed endpoint snapshots", func(t *testing.T) {
		s := NewStore()
		seed(t, s, "a", "b")
		edge := link(t, s, "e", "a", "b", "KNOWS")

		assert.Equal(t, "a", edge.StartNode.ID)
		assert.Equal(t, "b", edge.EndNode.Properties["name"])
		assert.NotEmpty(t, edge.InternalID)
	})

	t.Run("Should delete by internal id", func(t *testing.T) {
		s := NewStore()
		seed(t, s, "a", "b")
		edge := link(t, s, "e", "a", "b", "KNOWS")

		deleted, err := s.Edges().Delete(ctx, edge.InternalID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = s.Edges().GetByID(ctx, "e")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("Should filter by direction", func(t *testing.T) {
		s := NewStore()
		seed(t, s, "a", "b", "c")
		link(t, s, "out", "a", "b", "KNOWS")
		link(t, s, "in", "c", "a", "KNOWS")
		link(t, s, "self", "a", "a", "KNOWS")
		link(t, s, "other", "b", "c", "KNOWS")

		tests := []struct {
			direction graph.Direction
			want      []string
		}{
			{graph.DirectionOutgoing, []string{"out", "self"}},
			{graph.DirectionIncoming, []string{"in", "self"}},
			{graph.DirectionBoth, []string{"out", "in", "self"}},
		}
		for _, tt := range tests {
			t.Run(string(tt.direction), func(t *testing.T) {
				edges, err := s.Edges().ListForNode(ctx, "a", tt.direction, graph.Page{Limit: 10})
				require.NoError(t, err)
				var ids []string
				for _, e := range edges {
					ids = append(ids, e.ID)
				}
				assert.Equal(t, tt.want, ids)
			})
		}
	})
}
