package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"kgms-backend/application/services"
	"kgms-backend/domain/graph"
	"kgms-backend/infrastructure/persistence/memory"
	"kgms-backend/interfaces/http/rest"
	"kgms-backend/interfaces/http/rest/handlers"
	"kgms-backend/pkg/client"
	apperrors "kgms-backend/pkg/errors"
	"kgms-backend/pkg/explorer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAPI(t *testing.T) *client.Client {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore()
	errorHandler := apperrors.NewErrorHandler(logger, true)
	limits := handlers.NewLimits(10000, 100, 10000)
	nodeService := services.NewNodeService(store.Nodes(), nil, logger)
	edgeService := services.NewEdgeService(store.Nodes(), store.Edges(), nil, logger)

	router := rest.NewRouter(
		handlers.NewNodeHandler(nodeService, limits, errorHandler, logger),
		handlers.NewEdgeHandler(edgeService, limits, errorHandler, logger),
		handlers.NewSystemHandler("kgms", "test", "development", store, errorHandler, logger),
		nil,
		errorHandler,
		rest.RouterOptions{},
		logger,
	)
	srv := httptest.NewServer(router.Setup())
	t.Cleanup(srv.Close)
	return client.NewClient(srv.URL)
}

// stalledDeletes reports every delete as timed out
type stalledDeletes struct {
	*client.Client
}

func (s stalledDeletes) DeleteNode(ctx context.Context, id string) client.DeleteResult {
	return client.DeleteResult{Outcome: client.DeleteIndeterminate, Err: context.DeadlineExceeded}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(model)
	require.True(t, ok)
	return out
}

func seed(t *testing.T, api *client.Client) (*graph.Node, *graph.Node) {
	t.Helper()
	ctx := context.Background()
	ada, err := api.CreateNode(ctx, map[string]interface{}{"name": "Ada"}, []string{"Person"})
	require.NoError(t, err)
	bob, err := api.CreateNode(ctx, map[string]interface{}{"name": "Bob"}, []string{"Person"})
	require.NoError(t, err)
	_, err = api.CreateEdge(ctx, client.CreateEdgeRequest{StartNodeID: ada.ID, EndNodeID: bob.ID, Type: "KNOWS"})
	require.NoError(t, err)
	return ada, bob
}

func TestModel(t *testing.T) {
	t.Run("loads and inspects the selected node", func(t *testing.T) {
		api := newTestAPI(t)
		_, bob := seed(t, api)
		ctrl := explorer.NewController(api, explorer.Options{})

		m := newModel(ctrl, api.Endpoint())
		assert.True(t, m.busy)
		m = update(t, m, m.load()())
		assert.False(t, m.busy)
		require.NoError(t, m.lastErr)
		assert.Len(t, ctrl.Nodes(), 2)

		m = update(t, m, key("down"))
		assert.Equal(t, bob.ID, m.selectedID())
		m = update(t, m, key("down"))
		assert.Equal(t, 1, m.cursor, "cursor stays on the last row")

		m = update(t, m, m.show(m.selectedID())())
		detail := ctrl.Detail()
		assert.Equal(t, explorer.StateFromLocal, detail.State)
		require.NotNil(t, detail.Node)
		assert.Equal(t, bob.ID, detail.Node.ID)
		assert.Contains(t, m.View(), "displayed-from-local-collection")
	})

	t.Run("tab switches to relationships", func(t *testing.T) {
		api := newTestAPI(t)
		seed(t, api)
		ctrl := explorer.NewController(api, explorer.Options{})
		m := newModel(ctrl, api.Endpoint())
		m = update(t, m, m.load()())

		m = update(t, m, key("tab"))
		assert.Equal(t, focusEdges, m.focus)
		assert.Equal(t, ctrl.Edges()[0].ID, m.selectedID())
		assert.Contains(t, m.View(), "Relationships")
	})

	t.Run("delete asks for confirmation", func(t *testing.T) {
		api := newTestAPI(t)
		ada, _ := seed(t, api)
		ctrl := explorer.NewController(api, explorer.Options{})
		m := newModel(ctrl, api.Endpoint())
		m = update(t, m, m.load()())

		m = update(t, m, key("d"))
		assert.Equal(t, modeConfirmDelete, m.mode)
		assert.Contains(t, m.View(), "(y/n)")

		m = update(t, m, key("n"))
		assert.Equal(t, modeBrowse, m.mode)
		assert.Len(t, ctrl.Nodes(), 2)

		m = update(t, m, m.delete(ada.ID)())
		assert.Len(t, ctrl.Nodes(), 1)
		assert.Empty(t, ctrl.Edges())
		assert.Equal(t, "node deleted", ctrl.Status())
	})

	t.Run("timed out delete shows verify hint", func(t *testing.T) {
		api := newTestAPI(t)
		ada, _ := seed(t, api)
		ctrl := explorer.NewController(stalledDeletes{api}, explorer.Options{})
		m := newModel(ctrl, api.Endpoint())
		m = update(t, m, m.load()())

		m = update(t, m, m.delete(ada.ID)())
		assert.True(t, ctrl.NeedsReconcile())
		assert.Len(t, ctrl.Nodes(), 2, "nothing is removed until verified")
		view := m.View()
		assert.Contains(t, view, explorer.StatusDeleteUnknown)
		assert.Contains(t, view, "press v to verify")

		m = update(t, m, m.reconcile()())
		require.NoError(t, m.lastErr)
		assert.False(t, ctrl.NeedsReconcile())
		assert.Len(t, ctrl.Nodes(), 2)
	})

	t.Run("search highlights matches", func(t *testing.T) {
		api := newTestAPI(t)
		ada, _ := seed(t, api)
		ctrl := explorer.NewController(api, explorer.Options{})
		m := newModel(ctrl, api.Endpoint())
		m = update(t, m, m.load()())

		m = update(t, m, key("/"))
		assert.Equal(t, modeSearch, m.mode)
		cmd, err := m.submit(modeSearch, "name=Ada")
		require.NoError(t, err)
		m = update(t, m, cmd())
		assert.Equal(t, map[string]bool{ada.ID: true}, m.matches)

		m = update(t, m, key("esc"))
		assert.Equal(t, modeBrowse, m.mode)
	})

	t.Run("create and link from prompts", func(t *testing.T) {
		api := newTestAPI(t)
		ada, bob := seed(t, api)
		ctrl := explorer.NewController(api, explorer.Options{})
		m := newModel(ctrl, api.Endpoint())
		m = update(t, m, m.load()())

		cmd, err := m.submit(modeCreate, "Person name=Cy age=41")
		require.NoError(t, err)
		m = update(t, m, cmd())
		require.NoError(t, m.lastErr)
		assert.Len(t, ctrl.Nodes(), 3)

		cmd, err = m.submit(modeLink, "LIKES "+bob.ID)
		require.NoError(t, err)
		m = update(t, m, cmd())
		require.NoError(t, m.lastErr)
		edges, err := api.EdgesForNode(context.Background(), ada.ID, graph.DirectionOutgoing, client.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, edges, 2)

		_, err = m.submit(modeLink, "LIKES")
		assert.Error(t, err)
		_, err = m.submit(modeSearch, "nokey")
		assert.Error(t, err)
		_, err = m.submit(modeEdit, "")
		assert.Error(t, err)
	})

	t.Run("load failure is shown in the footer", func(t *testing.T) {
		api := client.NewClient("http://127.0.0.1:1")
		ctrl := explorer.NewController(api, explorer.Options{})
		m := newModel(ctrl, api.Endpoint())
		m = update(t, m, m.load()())
		require.Error(t, m.lastErr)
		assert.Contains(t, ctrl.Status(), "failed to load graph")
		assert.Contains(t, m.View(), m.lastErr.Error())
	})
}

func TestParseAssignments(t *testing.T) {
	labels, props := parseAssignments(strings.Fields("Person Engineer name=Ada age=36 score=4.5 active=true =skip"))
	assert.Equal(t, []string{"Person", "Engineer"}, labels)
	assert.Equal(t, map[string]interface{}{
		"name":   "Ada",
		"age":    int64(36),
		"score":  4.5,
		"active": true,
	}, props)
}

func TestWindow(t *testing.T) {
	start, end := window(10, 0, 4)
	assert.Equal(t, [2]int{0, 4}, [2]int{start, end})
	start, end = window(10, 6, 4)
	assert.Equal(t, [2]int{3, 7}, [2]int{start, end})
	start, end = window(2, 1, 4)
	assert.Equal(t, [2]int{0, 2}, [2]int{start, end})
	start, end = window(0, 0, 4)
	assert.Equal(t, [2]int{0, 0}, [2]int{start, end})
}

func TestRenderCanvas(t *testing.T) {
	nodes := []*graph.Node{{ID: "a", Labels: []string{"Person"}, Properties: graph.Properties{"name": "Ada"}}}
	view := explorer.BuildGraphView(nodes, nil)

	out := renderCanvas(view, 30, 6, "")
	assert.Len(t, strings.Split(out, "\n"), 6)
	assert.Contains(t, out, "● Ada")

	assert.Contains(t, renderCanvas(view, 30, 6, "a"), "◉ [Ada]")
	assert.Empty(t, renderCanvas(view, 0, 6, ""))
}
