package annotation

import "sort"

// orderCandidates returns the candidates in the order handed to a handler.
// Overrides always precede direct annotations. Direct annotations keep
// their arrival order, which runs from the usage site inwards.
func orderCandidates(in []*PathStruct, order CandidateOrder) []*PathStruct {
	out := make([]*PathStruct, len(in))
	copy(out, in)
	switch order {
	case NearestFirst:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.IsOverride() != b.IsOverride() {
				return a.IsOverride()
			}
			if a.IsOverride() && a.depth != b.depth {
				return a.depth > b.depth
			}
			return a.seq < b.seq
		})
	case OutermostFirst:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.IsOverride() != b.IsOverride() {
				return a.IsOverride()
			}
			return a.seq < b.seq
		})
	default:
		panic(order)
	}
	return out
}

func candidatesOf(ps []*PathStruct) []Candidate {
	out := make([]Candidate, len(ps))
	for i, p := range ps {
		out[i] = p.candidate()
	}
	return out
}
