package annotation

// CycleDetector tracks "overrides declared under A reach into B" edges
// between named schemas and detects when accepting another edge would close
// a cycle. It is independent of structural recursion in the schema graph.
type CycleDetector struct {
	edges map[string]map[string]struct{}
	// cycles caches name pairs already proven to form a cycle.
	cycles map[namePair]struct{}
}

type namePair struct {
	a, b string
}

func newNamePair(x, y string) namePair {
	if y < x {
		x, y = y, x
	}
	return namePair{a: x, b: y}
}

// NewCycleDetector returns an empty detector.
func NewCycleDetector() *CycleDetector {
	return &CycleDetector{
		edges:  make(map[string]map[string]struct{}, 16),
		cycles: make(map[namePair]struct{}, 4),
	}
}

// DetectCycle reports whether an edge start -> end would form a cycle with
// the edges accepted so far.
func (d *CycleDetector) DetectCycle(start, end string) bool {
	if start == end {
		return true
	}
	pair := newNamePair(start, end)
	if _, ok := d.cycles[pair]; ok {
		return true
	}
	if d.reaches(end, start) {
		d.cycles[pair] = struct{}{}
		return true
	}
	return false
}

// AddEdge accepts the edge from -> to.
func (d *CycleDetector) AddEdge(from, to string) {
	next, ok := d.edges[from]
	if !ok {
		next = make(map[string]struct{}, 2)
		d.edges[from] = next
	}
	next[to] = struct{}{}
}

// reaches runs a depth-first search from src over accepted edges.
func (d *CycleDetector) reaches(src, target string) bool {
	visited := map[string]struct{}{src: {}}
	stack := []string{src}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == target {
			return true
		}
		for next := range d.edges[cur] {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			stack = append(stack, next)
		}
	}
	return false
}
