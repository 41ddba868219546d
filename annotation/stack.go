package annotation

// segmentDeque is a double-ended queue of path segments.
type segmentDeque struct {
	data []string
}

// newSegmentDeque creates a deque holding segs in order.
func newSegmentDeque(segs ...string) *segmentDeque {
	data := make([]string, len(segs), len(segs)+4)
	copy(data, segs)
	return &segmentDeque{data: data}
}

// pushBack adds a segment at the tail.
func (d *segmentDeque) pushBack(s string) {
	d.data = append(d.data, s)
}

// pushFront adds a segment at the head.
func (d *segmentDeque) pushFront(s string) {
	d.data = append(d.data, "")
	copy(d.data[1:], d.data)
	d.data[0] = s
}

// popFront removes and returns the head segment.
// Panics if the deque is empty.
func (d *segmentDeque) popFront() string {
	if len(d.data) == 0 {
		panic("segment deque underflow")
	}
	s := d.data[0]
	d.data = d.data[1:]
	return s
}

// peekFront returns the head segment without removing it.
func (d *segmentDeque) peekFront() (string, bool) {
	if len(d.data) == 0 {
		return "", false
	}
	return d.data[0], true
}

// empty checks if the deque is empty.
func (d *segmentDeque) empty() bool {
	return len(d.data) == 0
}

// len returns the number of segments.
func (d *segmentDeque) len() int {
	return len(d.data)
}

// slice returns a copy of the segments, head first.
func (d *segmentDeque) slice() []string {
	return clonePath(d.data)
}
