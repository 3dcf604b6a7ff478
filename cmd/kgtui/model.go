package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"kgms-backend/domain/graph"
	"kgms-backend/pkg/client"
	"kgms-backend/pkg/explorer"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	matchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true)

	paneStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

type focus int

const (
	focusNodes focus = iota
	focusEdges
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeCreate
	modeEdit
	modeLink
	modeConfirmDelete
)

type loadedMsg struct{ err error }

type detailMsg struct{ detail explorer.Detail }

type deleteMsg struct{ result client.DeleteResult }

type reconcileMsg struct {
	report explorer.ReconcileReport
	err    error
}

type searchMsg struct {
	ids []string
	err error
}

type mutationMsg struct{ err error }

type model struct {
	ctrl     *explorer.Controller
	endpoint string
	spinner  spinner.Model
	input    textinput.Model

	mode    mode
	focus   focus
	cursor  int
	busy    bool
	matches map[string]bool
	lastErr error

	width  int
	height int
}

func newModel(ctrl *explorer.Controller, endpoint string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	in := textinput.New()
	in.CharLimit = 256

	return model{
		ctrl:     ctrl,
		endpoint: endpoint,
		spinner:  s,
		input:    in,
		busy:     true,
		matches:  map[string]bool{},
		width:    100,
		height:   30,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.busy = false
		m.lastErr = msg.err
		m.clampCursor()
		return m, nil

	case detailMsg:
		m.busy = false
		m.lastErr = msg.detail.Err
		return m, nil

	case deleteMsg:
		m.busy = false
		m.lastErr = nil
		if msg.result.Outcome == client.DeleteFailed {
			m.lastErr = msg.result.Err
		}
		m.clampCursor()
		return m, nil

	case reconcileMsg, mutationMsg:
		m.busy = false
		m.lastErr = errorOf(msg)
		m.clampCursor()
		return m, nil

	case searchMsg:
		m.busy = false
		m.lastErr = msg.err
		m.matches = map[string]bool{}
		for _, id := range msg.ids {
			m.matches[id] = true
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func errorOf(msg tea.Msg) error {
	switch msg := msg.(type) {
	case reconcileMsg:
		return msg.err
	case mutationMsg:
		return msg.err
	}
	return nil
}

func (m model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		if m.focus == focusNodes {
			m.focus = focusEdges
		} else {
			m.focus = focusNodes
		}
		m.cursor = 0
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		m.cursor++
		m.clampCursor()
	case "enter":
		if id := m.selectedID(); id != "" {
			return m.run(m.show(id))
		}
	case "r":
		return m.run(m.load())
	case "v":
		if m.ctrl.NeedsReconcile() {
			return m.run(m.reconcile())
		}
	case "d":
		if m.selectedID() != "" {
			m.mode = modeConfirmDelete
		}
	case "/":
		return m.prompt(modeSearch, "key=value")
	case "n":
		return m.prompt(modeCreate, "Label key=value ...")
	case "e":
		if m.selectedID() != "" {
			return m.prompt(modeEdit, "key=value ...")
		}
	case "l":
		if m.focus == focusNodes && m.selectedID() != "" {
			return m.prompt(modeLink, "TYPE targetNodeId")
		}
	case "esc":
		m.matches = map[string]bool{}
	}
	return m, nil
}

func (m model) prompt(next mode, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = next
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
	return m, textinput.Blink
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeConfirmDelete {
		m.mode = modeBrowse
		if msg.String() == "y" {
			return m.run(m.delete(m.selectedID()))
		}
		return m, nil
	}

	switch msg.String() {
	case "esc", "ctrl+c":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		current := m.mode
		m.mode = modeBrowse
		m.input.Blur()
		cmd, err := m.submit(current, value)
		if err != nil {
			m.lastErr = err
			return m, nil
		}
		return m.run(cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) submit(current mode, value string) (tea.Cmd, error) {
	ctrl := m.ctrl
	switch current {
	case modeSearch:
		key, val, ok := strings.Cut(value, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("search needs key=value")
		}
		return func() tea.Msg {
			ids, err := ctrl.Search(context.Background(), key, val)
			return searchMsg{ids: ids, err: err}
		}, nil

	case modeCreate:
		labels, props := parseAssignments(strings.Fields(value))
		return func() tea.Msg {
			_, err := ctrl.CreateNode(context.Background(), props, labels)
			return mutationMsg{err: err}
		}, nil

	case modeEdit:
		_, props := parseAssignments(strings.Fields(value))
		if len(props) == 0 {
			return nil, fmt.Errorf("nothing to update")
		}
		id, onEdge := m.selectedID(), m.focus == focusEdges
		return func() tea.Msg {
			var err error
			if onEdge {
				_, err = ctrl.UpdateEdge(context.Background(), id, props)
			} else {
				_, err = ctrl.UpdateNode(context.Background(), id, props)
			}
			return mutationMsg{err: err}
		}, nil

	case modeLink:
		fields := strings.Fields(value)
		if len(fields) != 2 {
			return nil, fmt.Errorf("link needs TYPE targetNodeId")
		}
		req := client.CreateEdgeRequest{StartNodeID: m.selectedID(), EndNodeID: fields[1], Type: fields[0]}
		return func() tea.Msg {
			_, err := ctrl.CreateEdge(context.Background(), req)
			return mutationMsg{err: err}
		}, nil
	}
	return nil, nil
}

func (m model) run(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.busy = true
	return m, tea.Batch(cmd, m.spinner.Tick)
}

// Commands

func (m model) load() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return loadedMsg{err: ctrl.Load(context.Background())}
	}
}

func (m model) show(id string) tea.Cmd {
	ctrl := m.ctrl
	kind := explorer.SelectNode
	if m.focus == focusEdges {
		kind = explorer.SelectEdge
	}
	return func() tea.Msg {
		return detailMsg{detail: ctrl.HandleSelection(context.Background(), explorer.Selection{Kind: kind, ID: id})}
	}
}

func (m model) delete(id string) tea.Cmd {
	ctrl, onEdge := m.ctrl, m.focus == focusEdges
	return func() tea.Msg {
		if onEdge {
			return deleteMsg{result: ctrl.DeleteEdge(context.Background(), id)}
		}
		return deleteMsg{result: ctrl.DeleteNode(context.Background(), id)}
	}
}

func (m model) reconcile() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		report, err := ctrl.Reconcile(context.Background())
		return reconcileMsg{report: report, err: err}
	}
}

// Selection

func (m model) listLen() int {
	if m.focus == focusEdges {
		return len(m.ctrl.Edges())
	}
	return len(m.ctrl.Nodes())
}

func (m *model) clampCursor() {
	if n := m.listLen(); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m model) selectedID() string {
	if m.focus == focusEdges {
		edges := m.ctrl.Edges()
		if m.cursor < len(edges) {
			return edges[m.cursor].ID
		}
		return ""
	}
	nodes := m.ctrl.Nodes()
	if m.cursor < len(nodes) {
		return nodes[m.cursor].ID
	}
	return ""
}

// View

func (m model) View() string {
	listWidth := 44
	canvasWidth := m.width - listWidth - 8
	if canvasWidth < 20 {
		canvasWidth = 20
	}
	bodyHeight := m.height - 10
	if bodyHeight < 8 {
		bodyHeight = 8
	}

	title := fmt.Sprintf("Knowledge Graph • %s", m.endpoint)
	if m.busy {
		title = m.spinner.View() + " " + title
	}
	header := headerStyle.Width(m.width - 2).Render(title)

	view := m.ctrl.View()
	selectedNode := ""
	if m.focus == focusNodes {
		selectedNode = m.selectedID()
	}
	canvas := paneStyle.Width(canvasWidth).Height(bodyHeight).
		Render(renderCanvas(view, canvasWidth-2, bodyHeight, selectedNode))

	side := lipgloss.JoinVertical(lipgloss.Left,
		paneStyle.Width(listWidth).Render(m.renderList(bodyHeight/2)),
		paneStyle.Width(listWidth).Render(m.renderDetail()),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, canvas, side)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderFooter(view))
}

func (m model) renderList(rows int) string {
	var sb strings.Builder
	if m.focus == focusEdges {
		sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Relationships") + subtleStyle.Render("  (tab: nodes)") + "\n")
		edges := m.ctrl.Edges()
		start, end := window(len(edges), m.cursor, rows)
		for i := start; i < end; i++ {
			e := edges[i]
			sb.WriteString(m.row(i, fmt.Sprintf("%s → %s : %s", short(e.StartNode.ID), short(e.EndNode.ID), e.Type), false))
		}
		return sb.String()
	}

	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Nodes") + subtleStyle.Render("  (tab: relationships)") + "\n")
	nodes := m.ctrl.Nodes()
	start, end := window(len(nodes), m.cursor, rows)
	for i := start; i < end; i++ {
		sb.WriteString(m.row(i, nodes[i].DisplayName(), m.matches[nodes[i].ID]))
	}
	return sb.String()
}

func (m model) row(index int, text string, match bool) string {
	switch {
	case index == m.cursor:
		return cursorStyle.Render("> "+text) + "\n"
	case match:
		return matchStyle.Render("* "+text) + "\n"
	default:
		return "  " + text + "\n"
	}
}

// window returns the [start, end) range of a list of n rows that keeps the
// cursor visible.
func window(n, cursor, rows int) (int, int) {
	if rows <= 0 || n == 0 {
		return 0, 0
	}
	start := 0
	if cursor >= rows {
		start = cursor - rows + 1
	}
	return start, min(n, start+rows)
}

func (m model) renderDetail() string {
	d := m.ctrl.Detail()
	var sb strings.Builder
	sb.WriteString(lipgloss.NewStyle().Bold(true).Render("Detail") + " " + subtleStyle.Render(d.State.String()) + "\n")

	switch {
	case d.State == explorer.StateError && d.Err != nil:
		sb.WriteString(errorStyle.Render(d.Err.Error()))
	case d.Node != nil:
		sb.WriteString(fmt.Sprintf("id: %s\nlabels: %s\n", d.Node.ID, strings.Join(d.Node.Labels, ", ")))
		sb.WriteString(formatProperties(d.Node.Properties))
	case d.Edge != nil:
		sb.WriteString(fmt.Sprintf("id: %s\ntype: %s\n%s → %s\n", d.Edge.ID, d.Edge.Type, short(d.Edge.StartNode.ID), short(d.Edge.EndNode.ID)))
		sb.WriteString(formatProperties(d.Edge.Properties))
	default:
		sb.WriteString(subtleStyle.Render("press enter to inspect"))
	}
	return sb.String()
}

func (m model) renderFooter(view *explorer.GraphView) string {
	var status string
	switch {
	case m.ctrl.NeedsReconcile():
		status = warnStyle.Render(m.ctrl.Status() + " (press v to verify)")
	case m.lastErr != nil:
		status = errorStyle.Render(m.lastErr.Error())
	default:
		status = okStyle.Render(m.ctrl.Status())
	}
	if view.Dropped > 0 {
		status += subtleStyle.Render(fmt.Sprintf(" • %d relationships hidden", view.Dropped))
	}

	var line string
	switch m.mode {
	case modeConfirmDelete:
		line = warnStyle.Render(fmt.Sprintf("Delete %s? (y/n)", short(m.selectedID())))
	case modeSearch, modeCreate, modeEdit, modeLink:
		line = m.input.View()
	default:
		line = subtleStyle.Render("enter inspect • / search • n new • e edit • l link • d delete • r reload • q quit")
	}
	return status + "\n" + line
}

// Helpers

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatProperties(props graph.Properties) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		if k != graph.IDProperty {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("%s: %v\n", k, props[k]))
	}
	return sb.String()
}

// parseAssignments splits tokens into labels and key=value properties.
// Values that parse as integers, floats or booleans keep that type.
func parseAssignments(tokens []string) ([]string, map[string]interface{}) {
	var labels []string
	props := map[string]interface{}{}
	for _, tok := range tokens {
		key, raw, ok := strings.Cut(tok, "=")
		if !ok {
			labels = append(labels, tok)
			continue
		}
		if key == "" {
			continue
		}
		props[key] = parseScalar(raw)
	}
	return labels, props
}

func parseScalar(raw string) interface{} {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
