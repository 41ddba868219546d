package annotation

import (
	"fmt"

	schema "github.com/speakeasy-api/schemaannotate"
)

// OriginKind records where a candidate annotation was declared.
type OriginKind int

const (
	// OriginFieldOverride is an override map on a record field.
	OriginFieldOverride OriginKind = iota
	// OriginIncludeOverride is an override map on a record with includes.
	OriginIncludeOverride
	// OriginTyperefOverride is an override map on a typeref to a complex type.
	OriginTyperefOverride
	// OriginTyperef is a direct annotation on a typeref to a leaf type.
	OriginTyperef
	// OriginEnum is a direct annotation on an enum.
	OriginEnum
	// OriginFixed is a direct annotation on a fixed type.
	OriginFixed
	// OriginField is a direct annotation on a field of leaf type.
	OriginField
)

func (k OriginKind) String() string {
	switch k {
	case OriginFieldOverride:
		return "field-override"
	case OriginIncludeOverride:
		return "include-override"
	case OriginTyperefOverride:
		return "typeref-override"
	case OriginTyperef:
		return "typeref"
	case OriginEnum:
		return "enum"
	case OriginFixed:
		return "fixed"
	case OriginField:
		return "field"
	default:
		panic(k)
	}
}

// IsOverride reports whether the origin redirects a value through a PathSpec.
func (k OriginKind) IsOverride() bool {
	switch k {
	case OriginFieldOverride, OriginIncludeOverride, OriginTyperefOverride:
		return true
	default:
		return false
	}
}

// Validity is the settlement state of an override.
type Validity int

const (
	Unchecked Validity = iota
	Valid
	Invalid
)

func (v Validity) String() string {
	switch v {
	case Unchecked:
		return "unchecked"
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		panic(v)
	}
}

// PathStruct tracks one override or direct annotation while it travels
// down the schema. Each matched descent moves one segment from the
// remaining deque to the matched deque.
type PathStruct struct {
	pathSpec   string
	value      any
	origin     OriginKind
	originPath []string
	source     any // *schema.Field or schema.Schema
	matched    *segmentDeque
	remaining  *segmentDeque
	validity   Validity
	startName  string

	// depth and seq order candidates: depth is the length of the origin
	// path, seq the creation order within a run.
	depth int
	seq   int
}

func newPathStruct(pathSpec string, value any, origin OriginKind, originPath []string, source any) *PathStruct {
	return &PathStruct{
		pathSpec:   pathSpec,
		value:      value,
		origin:     origin,
		originPath: clonePath(originPath),
		source:     source,
		matched:    newSegmentDeque(),
		remaining:  newSegmentDeque(schema.SplitPathSpec(pathSpec)...),
		depth:      len(originPath),
	}
}

func (p *PathStruct) PathSpec() string        { return p.pathSpec }
func (p *PathStruct) Value() any              { return p.value }
func (p *PathStruct) Origin() OriginKind      { return p.origin }
func (p *PathStruct) OriginPath() []string    { return clonePath(p.originPath) }
func (p *PathStruct) Source() any             { return p.source }
func (p *PathStruct) Matched() []string       { return p.matched.slice() }
func (p *PathStruct) Remaining() []string     { return p.remaining.slice() }
func (p *PathStruct) Validity() Validity      { return p.validity }
func (p *PathStruct) StartSchemaName() string { return p.startName }
func (p *PathStruct) IsOverride() bool        { return p.origin.IsOverride() }

func (p *PathStruct) candidate() Candidate {
	return Candidate{PathSpec: p.pathSpec, Value: p.value, Origin: p.origin}
}

func (p *PathStruct) String() string {
	return fmt.Sprintf("PathStruct{%s %q from %s matched=%v remaining=%v %s}",
		p.origin, p.pathSpec, schema.JoinPathSpec(p.originPath), p.matched.data, p.remaining.data, p.validity)
}
