package pathfind

// item is a frontier entry for the search.
type item struct {
	cell  int
	cost  int
	index int
}

// frontier is a min-heap on cost. Items remember their position so their cost
// can be lowered in place with heap.Fix.
type frontier []*item

func (h frontier) Len() int           { return len(h) }
func (h frontier) Less(i, j int) bool { return h[i].cost < h[j].cost }
func (h frontier) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *frontier) Push(x any) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *frontier) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}
