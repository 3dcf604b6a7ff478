package graph

// Page is a skip/limit window over a collection
type Page struct {
	Limit int
	Skip  int
}

// Apply returns the window of n items selected by the page as [start, end).
func (p Page) Apply(n int) (int, int) {
	start := p.Skip
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := n
	if p.Limit >= 0 && start+p.Limit < n {
		end = start + p.Limit
	}
	return start, end
}
