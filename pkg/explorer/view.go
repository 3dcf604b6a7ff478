package explorer

import (
	"math"
	"sort"

	"kgms-backend/domain/graph"
)

// ViewNode is a node as handed to the renderer
type ViewNode struct {
	ID    string
	Label string
	Group string
}

// ViewEdge is an edge whose endpoints are both present in the view
type ViewEdge struct {
	ID    string
	From  string
	To    string
	Label string
}

// SelectionKind tells nodes and edges apart in selection events
type SelectionKind int

const (
	SelectNode SelectionKind = iota
	SelectEdge
)

// Selection is emitted when the user picks an element in the view
type Selection struct {
	Kind SelectionKind
	ID   string
}

// SelectionHandler receives selection events
type SelectionHandler func(Selection)

// GraphView is the render model of the local mirror. It carries no
// business logic; selections are passed to the registered handler.
type GraphView struct {
	Nodes   []ViewNode
	Edges   []ViewEdge
	Dropped int

	nodeIndex map[string]int
	edgeIndex map[string]int
	onSelect  SelectionHandler
}

// BuildGraphView converts the mirror into a view. Edges referencing a node
// that is not in nodes are left out and counted in Dropped.
func BuildGraphView(nodes []*graph.Node, edges []*graph.Edge) *GraphView {
	v := &GraphView{
		Nodes:     make([]ViewNode, 0, len(nodes)),
		Edges:     make([]ViewEdge, 0, len(edges)),
		nodeIndex: make(map[string]int, len(nodes)),
		edgeIndex: make(map[string]int, len(edges)),
	}

	for _, n := range nodes {
		if n == nil || n.ID == "" {
			continue
		}
		if _, dup := v.nodeIndex[n.ID]; dup {
			continue
		}
		group := ""
		if len(n.Labels) > 0 {
			group = n.Labels[0]
		}
		v.nodeIndex[n.ID] = len(v.Nodes)
		v.Nodes = append(v.Nodes, ViewNode{ID: n.ID, Label: n.DisplayName(), Group: group})
	}

	for _, e := range edges {
		if e == nil {
			continue
		}
		_, hasStart := v.nodeIndex[e.StartNode.ID]
		_, hasEnd := v.nodeIndex[e.EndNode.ID]
		if !hasStart || !hasEnd {
			v.Dropped++
			continue
		}
		v.edgeIndex[e.ID] = len(v.Edges)
		v.Edges = append(v.Edges, ViewEdge{ID: e.ID, From: e.StartNode.ID, To: e.EndNode.ID, Label: e.Type})
	}
	return v
}

// OnSelect registers the selection handler
func (v *GraphView) OnSelect(handler SelectionHandler) {
	v.onSelect = handler
}

// Select dispatches a selection for id. Unknown ids are ignored and
// reported as false.
func (v *GraphView) Select(kind SelectionKind, id string) bool {
	var ok bool
	switch kind {
	case SelectNode:
		_, ok = v.nodeIndex[id]
	case SelectEdge:
		_, ok = v.edgeIndex[id]
	}
	if !ok {
		return false
	}
	if v.onSelect != nil {
		v.onSelect(Selection{Kind: kind, ID: id})
	}
	return true
}

// Node returns the view node with id
func (v *GraphView) Node(id string) (ViewNode, bool) {
	i, ok := v.nodeIndex[id]
	if !ok {
		return ViewNode{}, false
	}
	return v.Nodes[i], true
}

// Point is a position on the layout canvas
type Point struct {
	X, Y float64
}

// Layout places the nodes with the Fruchterman-Reingold algorithm. The
// result only depends on the view, so repeated calls give the same picture.
func Layout(v *GraphView, width, height float64, iterations int) map[string]Point {
	pos := make(map[string]Point, len(v.Nodes))
	n := len(v.Nodes)
	if n == 0 || width <= 0 || height <= 0 {
		return pos
	}

	ids := make([]string, n)
	for i, node := range v.Nodes {
		ids[i] = node.ID
	}
	sort.Strings(ids)

	cx, cy := width/2, height/2
	if n == 1 {
		pos[ids[0]] = Point{cx, cy}
		return pos
	}

	radius := math.Min(width, height) / 3
	for i, id := range ids {
		angle := 2 * math.Pi * float64(i) / float64(n)
		pos[id] = Point{cx + radius*math.Cos(angle), cy + radius*math.Sin(angle)}
	}

	k := math.Sqrt(width * height / float64(n))
	temperature := width / 10
	cooling := temperature / float64(iterations+1)

	for iter := 0; iter < iterations; iter++ {
		disp := make(map[string]Point, n)

		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				a, b := pos[ids[i]], pos[ids[j]]
				dx, dy := a.X-b.X, a.Y-b.Y
				dist := math.Max(math.Hypot(dx, dy), 0.01)
				force := k * k / dist
				fx, fy := dx/dist*force, dy/dist*force
				da, db := disp[ids[i]], disp[ids[j]]
				disp[ids[i]] = Point{da.X + fx, da.Y + fy}
				disp[ids[j]] = Point{db.X - fx, db.Y - fy}
			}
		}

		for _, e := range v.Edges {
			if e.From == e.To {
				continue
			}
			a, b := pos[e.From], pos[e.To]
			dx, dy := a.X-b.X, a.Y-b.Y
			dist := math.Max(math.Hypot(dx, dy), 0.01)
			force := dist * dist / k
			fx, fy := dx/dist*force, dy/dist*force
			da, db := disp[e.From], disp[e.To]
			disp[e.From] = Point{da.X - fx, da.Y - fy}
			disp[e.To] = Point{db.X + fx, db.Y + fy}
		}

		for _, id := range ids {
			d := disp[id]
			length := math.Max(math.Hypot(d.X, d.Y), 0.01)
			step := math.Min(length, temperature)
			p := pos[id]
			p.X = clamp(p.X+d.X/length*step, 0, width)
			p.Y = clamp(p.Y+d.Y/length*step, 0, height)
			pos[id] = p
		}
		temperature -= cooling
	}
	return pos
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
