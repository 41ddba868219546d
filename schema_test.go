package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindPrimitive: "primitive",
		KindRecord:    "record",
		KindUnion:     "union",
		KindMap:       "map",
		KindArray:     "array",
		KindTyperef:   "typeref",
		KindEnum:      "enum",
		KindFixed:     "fixed",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}

func TestKindStringPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown kind")
		}
	}()
	_ = Kind(99).String()
}

func TestMemberKeys(t *testing.T) {
	tests := []struct {
		name string
		s    Schema
		want string
	}{
		{"primitive", IntType(), "int"},
		{"record", NewRecord("com.example.Foo"), "com.example.Foo"},
		{"typeref", NewTyperef("com.example.Ref", StringType()), "com.example.Ref"},
		{"enum", NewEnum("com.example.Fruit", "APPLE"), "com.example.Fruit"},
		{"fixed", NewFixed("com.example.MD5", 16), "com.example.MD5"},
		{"map", MapOf(StringType()), "map"},
		{"array", ArrayOf(StringType()), "array"},
		{"union", UnionOf(), "union"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.MemberKey(); got != tt.want {
				t.Errorf("MemberKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnionMemberLookup(t *testing.T) {
	u := UnionOf(
		NewMember(IntType()),
		NewMember(StringType()).WithAlias("shortAnswer"),
		NewMember(ArrayOf(StringType())),
	)
	if m := u.Member("int"); m == nil || m.Type.Kind() != KindPrimitive {
		t.Fatalf("expected int member, got %+v", m)
	}
	if m := u.Member("shortAnswer"); m == nil || m.Alias != "shortAnswer" {
		t.Fatalf("expected aliased member, got %+v", m)
	}
	if m := u.Member("string"); m != nil {
		t.Errorf("aliased member must not be addressable by type key, got %+v", m)
	}
	if m := u.Member("array"); m == nil {
		t.Error("expected array member")
	}
}

func TestRecordIncludeOrdersInheritedFieldsFirst(t *testing.T) {
	base := NewRecord("com.example.Base", NewField("id", LongType()))
	r := NewRecord("com.example.Derived", NewField("name", StringType()))
	r.Include(base)

	var names []string
	for _, f := range r.Fields {
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"id", "name"}, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if r.Field("id").Record != base {
		t.Error("included field should keep its declaring record")
	}
	if r.Field("name").Record != r {
		t.Error("own field should be owned by the record")
	}
	if len(r.Includes) != 1 || r.Includes[0] != base {
		t.Errorf("unexpected includes: %v", r.Includes)
	}
}

func TestDereference(t *testing.T) {
	leaf := IntType()
	inner := NewTyperef("com.example.Inner", leaf)
	outer := NewTyperef("com.example.Outer", inner)

	if got := Dereference(outer); got != leaf {
		t.Fatalf("Dereference(outer) = %v, want the int leaf", got)
	}
	if got := Dereference(leaf); got != leaf {
		t.Fatal("Dereference of a non-typeref must return it unchanged")
	}

	dangling := NewTyperef("com.example.Dangling", nil)
	if got := Dereference(dangling); got != dangling {
		t.Fatal("dangling typeref should dereference to itself")
	}

	a := NewTyperef("com.example.A", nil)
	b := NewTyperef("com.example.B", a)
	a.Ref = b
	if got := Dereference(a); got == nil {
		t.Fatal("looping typerefs should terminate")
	}
}

func TestIsLeaf(t *testing.T) {
	leaves := []Schema{IntType(), NewEnum("E"), NewFixed("F", 4)}
	for _, s := range leaves {
		if !IsLeaf(s) {
			t.Errorf("%s should be a leaf", s.Kind())
		}
	}
	complexes := []Schema{NewRecord("R"), UnionOf(), MapOf(IntType()), ArrayOf(IntType()), NewTyperef("T", IntType())}
	for _, s := range complexes {
		if IsLeaf(s) {
			t.Errorf("%s should not be a leaf", s.Kind())
		}
	}
	if IsLeaf(nil) {
		t.Error("nil is not a leaf")
	}
}

func TestPropertiesHelpers(t *testing.T) {
	p := Properties{"b": 1, "a": nil}
	if _, ok := p.Lookup("a"); ok {
		t.Error("nil value should count as absent")
	}
	if v, ok := p.Lookup("b"); !ok || v != 1 {
		t.Errorf("Lookup(b) = %v, %v", v, ok)
	}
	if diff := cmp.Diff([]string{"a", "b"}, p.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
	c := p.Clone()
	c["c"] = 3
	if _, ok := p["c"]; ok {
		t.Error("Clone must not alias the source map")
	}
	var nilProps Properties
	if nilProps.Clone() != nil {
		t.Error("nil clone should stay nil")
	}
}

func TestResolvedPropertiesAreDistinctFromDeclared(t *testing.T) {
	s := Annotate(StringType(), "ns", "declared")
	if len(s.ResolvedProperties()) != 0 {
		t.Fatal("fresh node should have empty resolved properties")
	}
	MergeResolved(s, Properties{"ns": "resolved"})
	if s.Properties()["ns"] != "declared" {
		t.Error("writing resolved properties must not touch declared ones")
	}
	first := s.ResolvedProperties()
	MergeResolved(s, Properties{"other": 1})
	if diff := cmp.Diff(Properties{"ns": "resolved", "other": 1}, s.ResolvedProperties()); diff != "" {
		t.Errorf("merged resolved properties mismatch (-want +got):\n%s", diff)
	}
	if len(first) != 1 {
		t.Error("MergeResolved must not write through a previously returned map")
	}
}
