package annotation

import (
	"sort"

	schema "github.com/speakeasy-api/schemaannotate"
)

const (
	msgUnreached       = "Overriding pathSpec defined %s does not point to a valid primitive field"
	msgPathTooLong     = "Overriding pathSpec defined %s does not point to a valid primitive field: Path might be too long"
	msgPathTooShort    = "Overriding pathSpec defined %s does not point to a valid primitive field: Path might be too short"
	msgNotAMap         = "Overrides entries should be key-value pairs that form a map"
	msgMalformedKey    = "MalFormated key as pathspec found: %s"
	msgResolveFailed   = "Annotations override resolution failed in handlers for %s"
	msgCyclicOverrides = "Found overrides that forms a cyclic-referencing: Overrides entry in traverser path \"%s\" with its pathSpec value \"%s\" is pointing to the field with traverser path \"%s\" and schema name \"%s\", this is causing cyclic-referencing."
)

// overrideVisitor resolves one annotation namespace. It rebuilds the
// visited graph as a skeleton copy and stores resolved properties on the
// copied leaves. One visitor serves exactly one traversal.
type overrideVisitor struct {
	handler Handler
	ns      string
	order   CandidateOrder
	log     Logger
	limit   int

	// skeletons maps a source node to the copy shared by every site that
	// reaches it without pending overrides.
	skeletons   map[schema.Schema]schema.Schema
	cycles      *CycleDetector
	messages    *messageList
	constructed schema.Schema
	seq         int
}

// overrideContext is the visitor state a node hands to its children.
type overrideContext struct {
	candidates      []*PathStruct
	lastConstructed schema.Schema
}

func newOverrideVisitor(h Handler, opts Options, log Logger) *overrideVisitor {
	return &overrideVisitor{
		handler:   h,
		ns:        h.Namespace(),
		order:     opts.CandidateOrder,
		log:       log,
		limit:     opts.LogMaxFields,
		skeletons: make(map[schema.Schema]schema.Schema, 64),
		cycles:    NewCycleDetector(),
		messages:  newMessageList(h.Namespace()),
	}
}

func (v *overrideVisitor) InitialContext() any {
	return &overrideContext{}
}

func (v *overrideVisitor) Visit(c *TraverserContext, order Order) error {
	vc, ok := c.VisitorContext.(*overrideContext)
	if !ok {
		return contractViolation("unexpected visitor context %T at %s", c.VisitorContext, schema.JoinPathSpec(c.TraversePath))
	}
	if order == PostOrder {
		v.reportUnreached(vc.candidates)
		return nil
	}

	next := &overrideContext{}
	cur := c.Current
	var out schema.Schema
	var candidates []*PathStruct

	if c.Parent == nil {
		out = buildSkeleton(cur)
		v.skeletons[cur] = out
		v.constructed = out
		if isNamedLeaf(cur) {
			if val, ok := cur.Properties().Lookup(v.ns); ok {
				schema.MergeResolved(out, schema.Properties{v.ns: val})
			}
		}
		if r, ok := cur.(*schema.Record); ok && len(r.Includes) > 0 {
			candidates = append(candidates, v.fromIncludes(r, c.TraversePath)...)
		}
		next.candidates = candidates
		next.lastConstructed = out
		c.VisitorContext = next
		return nil
	}

	candidates = v.inherit(vc.candidates, c)

	switch p := c.Parent.(type) {
	case *schema.Record:
		fieldPath := c.TraversePath[:len(c.TraversePath)-1]
		candidates = append(candidates, v.fromField(c.EnclosingField, fieldPath)...)
	case *schema.Typeref:
		candidates = append(candidates, v.fromTyperef(p, c.TraversePath)...)
	}

	if t, ok := cur.(*schema.Typeref); ok {
		for _, ps := range candidates {
			ps.remaining.pushFront(t.FullName)
		}
	}

	if r, ok := cur.(*schema.Record); ok {
		for _, ps := range candidates {
			if !ps.IsOverride() {
				continue
			}
			if v.cycles.DetectCycle(ps.startName, r.FullName) {
				v.log.Debugf("override cycle: %s reaches %s at %s", ps, r.FullName, schema.JoinPathSpec(c.TraversePath))
				v.messages.add(c.TraversePath, CategoryCyclicOverride, msgCyclicOverrides,
					schema.JoinPathSpec(ps.originPath), ps.pathSpec, schema.JoinPathSpec(c.TraversePath), r.FullName)
				c.Continuation = ContinueStop
				next.candidates = candidates
				c.VisitorContext = next
				return nil
			}
			v.cycles.AddEdge(ps.startName, r.FullName)
		}
	}

	var err error
	if schema.IsLeaf(cur) {
		out, err = v.visitLeaf(c, vc, &candidates)
	} else {
		out, err = v.visitComplex(c, vc, candidates)
	}
	if err != nil {
		return err
	}

	// Include overrides only travel with a descent; they must not force one.
	if r, ok := cur.(*schema.Record); ok && len(r.Includes) > 0 && c.Continuation != ContinueStop {
		candidates = append(candidates, v.fromIncludes(r, c.TraversePath)...)
	}

	next.candidates = candidates
	next.lastConstructed = out
	c.VisitorContext = next
	return nil
}

// inherit keeps the parent's candidates whose next segment names the
// current node and moves that segment to the matched side.
func (v *overrideVisitor) inherit(parent []*PathStruct, c *TraverserContext) []*PathStruct {
	var segment string
	if t, ok := c.Parent.(*schema.Typeref); ok {
		segment = t.FullName
	} else if len(c.PathSpec) > 0 {
		segment = c.PathSpec[len(c.PathSpec)-1]
	}

	var out []*PathStruct
	for _, ps := range parent {
		head, ok := ps.remaining.peekFront()
		if !ok || head != segment {
			continue
		}
		ps.matched.pushBack(ps.remaining.popFront())
		out = append(out, ps)
	}
	return out
}

func (v *overrideVisitor) visitLeaf(c *TraverserContext, vc *overrideContext, candidates *[]*PathStruct) (schema.Schema, error) {
	cur := c.Current
	if isNamedLeaf(cur) {
		if val, ok := cur.Properties().Lookup(v.ns); ok {
			origin := OriginEnum
			if cur.Kind() == schema.KindFixed {
				origin = OriginFixed
			}
			*candidates = append(*candidates, v.newPathStruct("", val, origin, c.TraversePath, cur))
		}
	}

	cands := *candidates
	out, err := v.attach(c, vc.lastConstructed, len(cands) > 0)
	if err != nil {
		return nil, err
	}
	if len(cands) > 0 {
		ordered := orderCandidates(cands, v.order)
		schema.MergeResolved(out, v.resolve(ordered, c))
	}

	for _, ps := range cands {
		if !ps.IsOverride() {
			continue
		}
		if ps.remaining.empty() {
			ps.validity = Valid
			continue
		}
		ps.validity = Invalid
		v.messages.add(ps.originPath, CategoryPathTooLong, msgPathTooLong, ps.pathSpec)
	}
	return out, nil
}

func (v *overrideVisitor) visitComplex(c *TraverserContext, vc *overrideContext, candidates []*PathStruct) (schema.Schema, error) {
	pending := false
	for _, ps := range candidates {
		if ps.IsOverride() && ps.remaining.empty() {
			ps.validity = Invalid
			v.messages.add(ps.originPath, CategoryPathTooShort, msgPathTooShort, ps.pathSpec)
			continue
		}
		if !ps.IsOverride() || ps.validity == Unchecked {
			pending = true
		}
	}

	if pending {
		// The subtree gets its own copy so the pending values land only
		// under this site.
		c.Continuation = ContinueDescend
		return v.attach(c, vc.lastConstructed, true)
	}

	if _, seen := v.skeletons[c.Current]; seen {
		c.Continuation = ContinueStop
	} else {
		c.Continuation = ContinueDescend
	}
	return v.attach(c, vc.lastConstructed, false)
}

// attach creates or reuses the copy of the current node and links it into
// the copy of its parent.
func (v *overrideVisitor) attach(c *TraverserContext, parent schema.Schema, fresh bool) (schema.Schema, error) {
	src := c.Current
	var out schema.Schema
	if fresh {
		out = buildSkeleton(src)
	} else if cached, ok := v.skeletons[src]; ok {
		out = cached
	} else {
		out = buildSkeleton(src)
		v.skeletons[src] = out
	}

	switch c.EntryMode {
	case EntryField:
		r, ok := parent.(*schema.Record)
		if !ok || c.EnclosingField == nil {
			return nil, contractViolation("field %s attached to %T", schema.JoinPathSpec(c.TraversePath), parent)
		}
		r.Fields = append(r.Fields, copyField(c.EnclosingField, out, r))
	case EntryMapKey:
		m, ok := parent.(*schema.Map)
		if !ok {
			return nil, contractViolation("map key %s attached to %T", schema.JoinPathSpec(c.TraversePath), parent)
		}
		m.Key = out
	case EntryMapValue:
		m, ok := parent.(*schema.Map)
		if !ok {
			return nil, contractViolation("map value %s attached to %T", schema.JoinPathSpec(c.TraversePath), parent)
		}
		m.Values = out
	case EntryArrayItem:
		a, ok := parent.(*schema.Array)
		if !ok {
			return nil, contractViolation("array item %s attached to %T", schema.JoinPathSpec(c.TraversePath), parent)
		}
		a.Items = out
	case EntryUnionMember:
		u, ok := parent.(*schema.Union)
		if !ok || c.EnclosingMember == nil {
			return nil, contractViolation("union member %s attached to %T", schema.JoinPathSpec(c.TraversePath), parent)
		}
		u.Members = append(u.Members, copyMember(c.EnclosingMember, out))
	case EntryTyperefRef:
		t, ok := parent.(*schema.Typeref)
		if !ok {
			return nil, contractViolation("typeref target %s attached to %T", schema.JoinPathSpec(c.TraversePath), parent)
		}
		t.Ref = out
	case EntryRoot:
	default:
		panic(c.EntryMode)
	}
	return out, nil
}

func (v *overrideVisitor) resolve(ordered []*PathStruct, c *TraverserContext) schema.Properties {
	v.log.Debugf("resolving %s at %s from %d candidates", schemaSummary(c.Current, v.limit), schema.JoinPathSpec(c.PathSpec), len(ordered))
	res := v.handler.Resolve(candidatesOf(ordered), ResolutionMeta{
		Path: clonePath(c.PathSpec),
		Node: c.Current,
	})
	if res.Failed {
		v.log.Warnf("handler %s failed to resolve %s", v.ns, schema.JoinPathSpec(c.PathSpec))
		v.messages.add(c.PathSpec, CategoryResolveFailed, msgResolveFailed, v.ns)
		for _, m := range res.Messages {
			v.messages.add(c.PathSpec, CategoryResolveFailed, "%s", m)
		}
	}
	return res.Resolved
}

// reportUnreached invalidates overrides that never reached a leaf.
func (v *overrideVisitor) reportUnreached(candidates []*PathStruct) {
	for _, ps := range candidates {
		if ps.IsOverride() && ps.validity == Unchecked {
			ps.validity = Invalid
			v.messages.add(ps.originPath, CategoryUnreachable, msgUnreached, ps.pathSpec)
		}
	}
}

// fromField turns a field's annotation into candidates. A field whose type
// resolves to a leaf carries a direct value; any other field carries an
// override map.
func (v *overrideVisitor) fromField(f *schema.Field, fieldPath []string) []*PathStruct {
	if f == nil {
		return nil
	}
	if schema.IsLeaf(schema.Dereference(f.Type)) {
		val, ok := f.Properties.Lookup(v.ns)
		if !ok {
			return nil
		}
		ps := v.newPathStruct("", val, OriginField, fieldPath, f)
		ps.matched.pushBack(f.Name)
		return []*PathStruct{ps}
	}
	var owner string
	if f.Record != nil {
		owner = f.Record.FullName
	}
	return v.overrides(f.Properties, OriginFieldOverride, fieldPath, f, owner)
}

func (v *overrideVisitor) fromTyperef(t *schema.Typeref, path []string) []*PathStruct {
	if !schema.IsLeaf(schema.Dereference(t)) {
		out := v.overrides(t.Properties(), OriginTyperefOverride, path, t, t.FullName)
		for _, ps := range out {
			ps.matched.pushBack(t.FullName)
		}
		return out
	}
	val, ok := t.Properties().Lookup(v.ns)
	if !ok {
		return nil
	}
	ps := v.newPathStruct("", val, OriginTyperef, path, t)
	ps.matched.pushBack(t.FullName)
	return []*PathStruct{ps}
}

// fromIncludes reads the override map declared on a record with includes.
// They rank with the overrides of the field holding the record and follow
// them. Keys addressing the record itself are too short.
func (v *overrideVisitor) fromIncludes(r *schema.Record, path []string) []*PathStruct {
	all := v.overrides(r.Properties(), OriginIncludeOverride, path, r, r.FullName)
	out := all[:0]
	for _, ps := range all {
		if ps.remaining.empty() {
			ps.validity = Invalid
			v.messages.add(ps.originPath, CategoryPathTooShort, msgPathTooShort, ps.pathSpec)
			continue
		}
		if ps.depth > 0 {
			ps.depth--
		}
		out = append(out, ps)
	}
	return out
}

// overrides reads the override map under the visitor's namespace. Keys
// that are not valid PathSpecs are reported and skipped.
func (v *overrideVisitor) overrides(props schema.Properties, origin OriginKind, path []string, source any, startName string) []*PathStruct {
	raw, ok := props.Lookup(v.ns)
	if !ok {
		return nil
	}
	entries, ok := asOverrideMap(raw)
	if !ok {
		v.messages.add(path, CategoryInvalidOverrides, msgNotAMap)
		return nil
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*PathStruct, 0, len(keys))
	for _, k := range keys {
		if !schema.ValidatePathSpec(k) {
			v.messages.add(path, CategoryMalformedPathSpec, msgMalformedKey, k)
			continue
		}
		ps := v.newPathStruct(k, entries[k], origin, path, source)
		ps.startName = startName
		out = append(out, ps)
	}
	if len(out) > 0 {
		v.log.Debugf("%d %s overrides declared at %s", len(out), origin, schema.JoinPathSpec(path))
	}
	return out
}

func (v *overrideVisitor) newPathStruct(pathSpec string, value any, origin OriginKind, path []string, source any) *PathStruct {
	ps := newPathStruct(pathSpec, value, origin, path, source)
	ps.seq = v.seq
	v.seq++
	return ps
}

// asOverrideMap accepts the map shapes produced by common decoders.
func asOverrideMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case schema.Properties:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func isNamedLeaf(s schema.Schema) bool {
	switch s.Kind() {
	case schema.KindEnum, schema.KindFixed:
		return true
	default:
		return false
	}
}
