package services

import (
	"context"
	"errors"
	"testing"

	"kgms-backend/domain/graph"
	"kgms-backend/infrastructure/persistence/memory"
	apperrors "kgms-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingMetrics struct {
	counts map[string]int
}

func (m *countingMetrics) IncrementCounter(name string, tags map[string]string) {
	m.counts[name]++
}

func newTestServices() (*NodeService, *EdgeService, *countingMetrics) {
	store := memory.NewStore()
	metrics := &countingMetrics{counts: map[string]int{}}
	logger := zap.NewNop()
	return NewNodeService(store.Nodes(), metrics, logger),
		NewEdgeService(store.Nodes(), store.Edges(), metrics, logger),
		metrics
}

func edgeIDs(edges []*graph.Edge) []string {
	ids := make([]string, 0, len(edges))
	for _, e := range edges {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestNodeService_CreateThenGet(t *testing.T) {
	ctx := context.Background()
	nodes, _, metrics := newTestServices()

	props := map[string]any{"name": "Alice", "age": 30, "id": "caller-chosen"}
	created, err := nodes.Create(ctx, props, []string{"Person", "Employee"})
	require.NoError(t, err)

	assert.NotEqual(t, "caller-chosen", created.ID, "generated id wins over caller id")
	assert.Equal(t, created.ID, created.Properties["id"])

	got, err := nodes.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Properties["name"])
	assert.Equal(t, int64(30), got.Properties["age"])
	assert.ElementsMatch(t, []string{"Person", "Employee"}, got.Labels)
	assert.NotEmpty(t, got.InternalID)
	assert.Equal(t, 1, metrics.counts["nodes_created"])
}

func TestNodeService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	nodes, _, _ := newTestServices()

	t.Run("Should require properties", func(t *testing.T) {
		_, err := nodes.Create(ctx, nil, nil)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("Should reject unsafe labels", func(t *testing.T) {
		_, err := nodes.Create(ctx, map[string]any{"name": "x"}, []string{"Person`) DETACH DELETE n"})
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("Should reject unsupported values", func(t *testing.T) {
		_, err := nodes.Create(ctx, map[string]any{"ch": make(chan int)}, nil)
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestNodeService_UpdateMerges(t *testing.T) {
	ctx := context.Background()
	nodes, _, _ := newTestServices()

	created, err := nodes.Create(ctx, map[string]any{"name": "Alice", "city": "Paris"}, nil)
	require.NoError(t, err)

	_, err = nodes.Update(ctx, created.ID, map[string]any{"city": "Lyon", "id": "hijack"})
	require.NoError(t, err)

	got, err := nodes.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Properties["name"], "untouched keys preserved")
	assert.Equal(t, "Lyon", got.Properties["city"])
	assert.Equal(t, created.ID, got.Properties["id"], "id is immutable")

	_, err = nodes.Update(ctx, "missing", map[string]any{"a": 1})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestNodeService_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	nodes, _, metrics := newTestServices()

	created, err := nodes.Create(ctx, map[string]any{"name": "Alice"}, nil)
	require.NoError(t, err)

	deleted, err := nodes.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = nodes.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 1, metrics.counts["nodes_deleted"])
}

func TestNodeService_Pagination(t *testing.T) {
	ctx := context.Background()
	nodes, _, _ := newTestServices()

	all := map[string]bool{}
	for i := 0; i < 7; i++ {
		n, err := nodes.Create(ctx, map[string]any{"i": i}, nil)
		require.NoError(t, err)
		all[n.ID] = true
	}

	seen := map[string]bool{}
	for skip := 0; skip < 7; skip += 3 {
		page, err := nodes.List(ctx, graph.Page{Limit: 3, Skip: skip}, "")
		require.NoError(t, err)
		for _, n := range page {
			assert.False(t, seen[n.ID], "pages must be disjoint")
			seen[n.ID] = true
		}
	}
	assert.Equal(t, all, seen)
}

func TestNodeService_SearchAndLabel(t *testing.T) {
	ctx := context.Background()
	nodes, _, _ := newTestServices()

	_, err := nodes.Create(ctx, map[string]any{"name": "Alice", "age": 30}, []string{"Person"})
	require.NoError(t, err)
	_, err = nodes.Create(ctx, map[string]any{"name": "Acme", "age": "30"}, []string{"Company"})
	require.NoError(t, err)

	byName, err := nodes.Search(ctx, "name", "Alice", graph.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, byName, 1)

	byAge, err := nodes.Search(ctx, "age", "30", graph.Page{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, byAge, 2, "string and integer forms both match")

	people, err := nodes.ListByLabel(ctx, "Person", graph.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "Alice", people[0].Properties["name"])

	_, err = nodes.Search(ctx, "", "x", graph.Page{Limit: 10})
	assert.True(t, apperrors.IsValidation(err))
}

func TestEdgeService_CreateRequiresEndpoints(t *testing.T) {
	ctx := context.Background()
	nodes, edges, _ := newTestServices()

	a, err := nodes.Create(ctx, map[string]any{"name": "A"}, nil)
	require.NoError(t, err)

	_, err = edges.Create(ctx, CreateEdgeInput{StartNodeID: a.ID, EndNodeID: "ghost", Type: "KNOWS"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "end node ghost not found")

	all, err := edges.List(ctx, graph.Page{Limit: 100}, "")
	require.NoError(t, err)
	assert.Empty(t, all, "nothing persisted")

	_, err = edges.Create(ctx, CreateEdgeInput{StartNodeID: a.ID, EndNodeID: a.ID})
	assert.True(t, apperrors.IsValidation(err))

	_, err = edges.Create(ctx, CreateEdgeInput{StartNodeID: a.ID, EndNodeID: a.ID, Type: "KNOWS` SET"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestEdgeService_DirectionalScenario(t *testing.T) {
	ctx := context.Background()
	nodes, edges, _ := newTestServices()

	x, err := nodes.Create(ctx, map[string]any{"name": "A"}, []string{"Person"})
	require.NoError(t, err)
	y, err := nodes.Create(ctx, map[string]any{"name": "B"}, []string{"Person"})
	require.NoError(t, err)
	e, err := edges.Create(ctx, CreateEdgeInput{StartNodeID: x.ID, EndNodeID: y.ID, Type: "KNOWS", Properties: map[string]any{"since": 2020}})
	require.NoError(t, err)

	assert.Equal(t, x.ID, e.StartNode.ID)
	assert.Equal(t, "A", e.StartNode.Properties["name"])
	assert.Equal(t, y.ID, e.EndNode.ID)

	page := graph.Page{Limit: 100}

	out, err := edges.GetForNode(ctx, x.ID, "outgoing", page)
	require.NoError(t, err)
	assert.Equal(t, []string{e.ID}, edgeIDs(out))

	in, err := edges.GetForNode(ctx, y.ID, "incoming", page)
	require.NoError(t, err)
	assert.Equal(t, []string{e.ID}, edgeIDs(in))

	none, err := edges.GetForNode(ctx, x.ID, "incoming", page)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = edges.GetForNode(ctx, x.ID, "sideways", page)
	assert.True(t, apperrors.IsValidation(err))

	t.Run("Should cascade node deletion", func(t *testing.T) {
		deleted, err := nodes.Delete(ctx, x.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		_, err = nodes.GetByID(ctx, x.ID)
		assert.True(t, apperrors.IsNotFound(err))
		_, err = edges.GetByID(ctx, e.ID)
		assert.True(t, apperrors.IsNotFound(err))
		_, err = nodes.GetByID(ctx, y.ID)
		assert.NoError(t, err)

		remaining, err := edges.GetForNode(ctx, x.ID, "both", page)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})
}

func TestEdgeService_UpdateTypeAndDelete(t *testing.T) {
	ctx := context.Background()
	nodes, edges, metrics := newTestServices()

	a, _ := nodes.Create(ctx, map[string]any{"name": "A"}, nil)
	b, _ := nodes.Create(ctx, map[string]any{"name": "B"}, nil)
	knows, err := edges.Create(ctx, CreateEdgeInput{StartNodeID: a.ID, EndNodeID: b.ID, Type: "KNOWS", Properties: map[string]any{"weight": 1}})
	require.NoError(t, err)
	likes, err := edges.Create(ctx, CreateEdgeInput{StartNodeID: b.ID, EndNodeID: a.ID, Type: "LIKES"})
	require.NoError(t, err)

	updated, err := edges.Update(ctx, knows.ID, map[string]any{"note": "old friends"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Properties["weight"])
	assert.Equal(t, "old friends", updated.Properties["note"])

	byType, err := edges.GetByType(ctx, "LIKES", graph.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{likes.ID}, edgeIDs(byType))

	t.Run("Should delete by internal identity", func(t *testing.T) {
		deleted, err := edges.Delete(ctx, likes.InternalID)
		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("Should delete by application id once", func(t *testing.T) {
		deleted, err := edges.Delete(ctx, knows.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = edges.Delete(ctx, knows.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	assert.Equal(t, 2, metrics.counts["edges_created"])
	assert.Equal(t, 2, metrics.counts["edges_deleted"])
}

type mockNodeRepository struct {
	mock.Mock
}

func (m *mockNodeRepository) List(ctx context.Context, page graph.Page, label string) ([]*graph.Node, error) {
	args := m.Called(ctx, page, label)
	nodes, _ := args.Get(0).([]*graph.Node)
	return nodes, args.Error(1)
}

func (m *mockNodeRepository) GetByID(ctx context.Context, id string) (*graph.Node, error) {
	args := m.Called(ctx, id)
	node, _ := args.Get(0).(*graph.Node)
	return node, args.Error(1)
}

func (m *mockNodeRepository) Create(ctx context.Context, node *graph.Node) (*graph.Node, error) {
	args := m.Called(ctx, node)
	created, _ := args.Get(0).(*graph.Node)
	return created, args.Error(1)
}

func (m *mockNodeRepository) Update(ctx context.Context, id string, patch graph.Properties) (*graph.Node, error) {
	args := m.Called(ctx, id, patch)
	node, _ := args.Get(0).(*graph.Node)
	return node, args.Error(1)
}

func (m *mockNodeRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockNodeRepository) Search(ctx context.Context, key string, candidates []any, page graph.Page) ([]*graph.Node, error) {
	args := m.Called(ctx, key, candidates, page)
	nodes, _ := args.Get(0).([]*graph.Node)
	return nodes, args.Error(1)
}

func TestNodeService_StoreErrorsBubbleUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := new(mockNodeRepository)
	storeErr := apperrors.NewDatabaseError("delete node", errors.New("connection reset"))
	repo.On("Delete", ctx, "n1").Return(false, storeErr).Once()

	svc := NewNodeService(repo, nil, zap.NewNop())
	_, err := svc.Delete(ctx, "n1")

	assert.Same(t, storeErr, err)
	repo.AssertExpectations(t)
}

func TestEdgeService_EndpointLookupFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(mockNodeRepository)
	storeErr := apperrors.NewDatabaseError("get node", errors.New("timeout"))
	repo.On("GetByID", ctx, "a").Return(nil, storeErr).Once()

	svc := NewEdgeService(repo, memory.NewStore().Edges(), nil, zap.NewNop())
	_, err := svc.Create(ctx, CreateEdgeInput{StartNodeID: "a", EndNodeID: "b", Type: "KNOWS"})

	assert.True(t, apperrors.IsDatabase(err))
	repo.AssertExpectations(t)
}
