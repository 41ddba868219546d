// Package schema models schema graphs whose nodes and fields carry
// namespaced annotations. Graphs may share subtrees and contain cycles;
// node identity (pointer equality) is significant.
package schema

import "sort"

// Properties maps a property name, typically an annotation namespace, to a
// value. Values are opaque to this package: scalars, lists, or nested
// Properties / map[string]any.
type Properties map[string]any

// Clone returns a shallow copy of p. A nil map clones to nil.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Lookup returns the value stored under key. Nil values count as absent.
func (p Properties) Lookup(key string) (any, bool) {
	v, ok := p[key]
	return v, ok && v != nil
}

// Keys returns the keys of p in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Schema is a node of the schema graph. The set of implementations is
// closed: *Primitive, *Record, *Union, *Map, *Array, *Typeref, *Enum and
// *Fixed.
type Schema interface {
	Kind() Kind
	// MemberKey is the key identifying this schema as a union member, and
	// the component it contributes to a detailed traverse path.
	MemberKey() string
	// Properties are the declared properties of the node.
	Properties() Properties
	SetProperty(key string, v any)
	// ResolvedProperties hold the computed annotations; only leaf nodes of
	// a processed graph carry them. Nil until set.
	ResolvedProperties() Properties
	SetResolvedProperties(p Properties)

	isSchema()
}

type node struct {
	props    Properties
	resolved Properties
}

func (n *node) Properties() Properties { return n.props }

func (n *node) SetProperties(p Properties) { n.props = p }

func (n *node) SetProperty(key string, v any) {
	if n.props == nil {
		n.props = Properties{}
	}
	n.props[key] = v
}

func (n *node) ResolvedProperties() Properties { return n.resolved }

func (n *node) SetResolvedProperties(p Properties) { n.resolved = p }

func (*node) isSchema() {}

// Primitive is a scalar type.
type Primitive struct {
	node
	Type PrimitiveType
}

func (p *Primitive) Kind() Kind        { return KindPrimitive }
func (p *Primitive) MemberKey() string { return string(p.Type) }

// Record is a named structure with ordered fields. Fields already contain
// the fields contributed by Includes.
type Record struct {
	node
	FullName string
	Doc      string
	Aliases  []string
	Fields   []*Field
	Includes []*Record
}

func (r *Record) Kind() Kind        { return KindRecord }
func (r *Record) MemberKey() string { return r.FullName }

// Field returns the field with the given name, or nil.
func (r *Record) Field(name string) *Field {
	for _, f := range r.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// AddFields appends fields to r. Fields without an owning record are
// attached to r.
func (r *Record) AddFields(fields ...*Field) *Record {
	for _, f := range fields {
		if f.Record == nil {
			f.Record = r
		}
		r.Fields = append(r.Fields, f)
	}
	return r
}

// Include records others as includes of r and places their fields ahead of
// the fields r already has. Included fields keep their original owner.
func (r *Record) Include(others ...*Record) *Record {
	var inherited []*Field
	for _, o := range others {
		r.Includes = append(r.Includes, o)
		inherited = append(inherited, o.Fields...)
	}
	r.Fields = append(inherited, r.Fields...)
	return r
}

// Field is a named member of a record. Field properties are distinct from
// the properties of the field's type.
type Field struct {
	Name       string
	Type       Schema
	Optional   bool
	Default    any
	Doc        string
	Aliases    []string
	Properties Properties
	// Record is the record that declares the field.
	Record *Record
}

// Union is a tagged choice between member types.
type Union struct {
	node
	Members []*Member
}

func (u *Union) Kind() Kind        { return KindUnion }
func (u *Union) MemberKey() string { return "union" }

// Member returns the member whose key equals key, or nil.
func (u *Union) Member(key string) *Member {
	for _, m := range u.Members {
		if m.Key() == key {
			return m
		}
	}
	return nil
}

// Member is one alternative of a union.
type Member struct {
	Alias      string
	Type       Schema
	Doc        string
	Properties Properties
}

// Key is the alias when set, otherwise the member type's member key.
func (m *Member) Key() string {
	if m.Alias != "" {
		return m.Alias
	}
	if m.Type == nil {
		return ""
	}
	return m.Type.MemberKey()
}

// Map has string keys and homogeneous values.
type Map struct {
	node
	Key    Schema
	Values Schema
}

func (m *Map) Kind() Kind        { return KindMap }
func (m *Map) MemberKey() string { return "map" }

// Array holds homogeneous items.
type Array struct {
	node
	Items Schema
}

func (a *Array) Kind() Kind        { return KindArray }
func (a *Array) MemberKey() string { return "array" }

// Typeref is a named alias of another schema.
type Typeref struct {
	node
	FullName string
	Doc      string
	Aliases  []string
	Ref      Schema
}

func (t *Typeref) Kind() Kind        { return KindTyperef }
func (t *Typeref) MemberKey() string { return t.FullName }

// Enum is a named set of symbols.
type Enum struct {
	node
	FullName string
	Doc      string
	Symbols  []string
}

func (e *Enum) Kind() Kind        { return KindEnum }
func (e *Enum) MemberKey() string { return e.FullName }

// Fixed is a named fixed-size byte sequence.
type Fixed struct {
	node
	FullName string
	Doc      string
	Size     int
}

func (f *Fixed) Kind() Kind        { return KindFixed }
func (f *Fixed) MemberKey() string { return f.FullName }

// Dereference follows typeref chains until it reaches a non-typeref node.
// A typeref with no target, or a chain that loops, stops at the typeref.
func Dereference(s Schema) Schema {
	var seen map[*Typeref]struct{}
	for {
		t, ok := s.(*Typeref)
		if !ok || t.Ref == nil {
			return s
		}
		if seen == nil {
			seen = make(map[*Typeref]struct{}, 4)
		}
		if _, loop := seen[t]; loop {
			return s
		}
		seen[t] = struct{}{}
		s = t.Ref
	}
}

// MergeResolved copies p into the resolved properties of s, replacing the
// map rather than writing through it.
func MergeResolved(s Schema, p Properties) {
	if len(p) == 0 {
		return
	}
	merged := make(Properties, len(s.ResolvedProperties())+len(p))
	for k, v := range s.ResolvedProperties() {
		merged[k] = v
	}
	for k, v := range p {
		merged[k] = v
	}
	s.SetResolvedProperties(merged)
}

// IsLeaf reports whether s stores resolved properties directly: primitives,
// enums and fixed types.
func IsLeaf(s Schema) bool {
	if s == nil {
		return false
	}
	switch s.Kind() {
	case KindPrimitive, KindEnum, KindFixed:
		return true
	case KindRecord, KindUnion, KindMap, KindArray, KindTyperef:
		return false
	default:
		panic(s.Kind())
	}
}

// FullNameOf returns the full name of a named schema.
func FullNameOf(s Schema) (string, bool) {
	switch v := s.(type) {
	case *Record:
		return v.FullName, true
	case *Typeref:
		return v.FullName, true
	case *Enum:
		return v.FullName, true
	case *Fixed:
		return v.FullName, true
	default:
		return "", false
	}
}
