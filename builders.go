package schema

// ============================================================================
// PRIMITIVES
// ============================================================================

// NewPrimitive creates a primitive of the given type.
func NewPrimitive(t PrimitiveType) *Primitive {
	return &Primitive{Type: t}
}

// StringType creates a string primitive.
func StringType() *Primitive { return NewPrimitive(TypeString) }

// IntType creates an int primitive.
func IntType() *Primitive { return NewPrimitive(TypeInt) }

// LongType creates a long primitive.
func LongType() *Primitive { return NewPrimitive(TypeLong) }

// FloatType creates a float primitive.
func FloatType() *Primitive { return NewPrimitive(TypeFloat) }

// DoubleType creates a double primitive.
func DoubleType() *Primitive { return NewPrimitive(TypeDouble) }

// BooleanType creates a boolean primitive.
func BooleanType() *Primitive { return NewPrimitive(TypeBoolean) }

// BytesType creates a bytes primitive.
func BytesType() *Primitive { return NewPrimitive(TypeBytes) }

// NullType creates a null primitive.
func NullType() *Primitive { return NewPrimitive(TypeNull) }

// ============================================================================
// NAMED AND COMPLEX TYPES
// ============================================================================

// NewRecord creates a record with the given fields. Recursive records are
// built by creating the record first and calling AddFields afterwards.
func NewRecord(fullName string, fields ...*Field) *Record {
	r := &Record{FullName: fullName}
	return r.AddFields(fields...)
}

// NewField creates a field of the given type.
func NewField(name string, typ Schema) *Field {
	return &Field{Name: name, Type: typ}
}

// WithProperty sets a field property and returns the field.
func (f *Field) WithProperty(key string, v any) *Field {
	if f.Properties == nil {
		f.Properties = Properties{}
	}
	f.Properties[key] = v
	return f
}

// AsOptional marks the field optional and returns it.
func (f *Field) AsOptional() *Field {
	f.Optional = true
	return f
}

// ArrayOf creates an array of items.
func ArrayOf(items Schema) *Array {
	return &Array{Items: items}
}

// MapOf creates a map with string keys and the given values.
func MapOf(values Schema) *Map {
	return &Map{Key: StringType(), Values: values}
}

// UnionOf creates a union of the given members.
func UnionOf(members ...*Member) *Union {
	return &Union{Members: members}
}

// NewMember creates a union member for typ.
func NewMember(typ Schema) *Member {
	return &Member{Type: typ}
}

// WithAlias sets the member alias and returns the member.
func (m *Member) WithAlias(alias string) *Member {
	m.Alias = alias
	return m
}

// WithProperty sets a member property and returns the member.
func (m *Member) WithProperty(key string, v any) *Member {
	if m.Properties == nil {
		m.Properties = Properties{}
	}
	m.Properties[key] = v
	return m
}

// NewTyperef creates a typeref to ref.
func NewTyperef(fullName string, ref Schema) *Typeref {
	return &Typeref{FullName: fullName, Ref: ref}
}

// NewEnum creates an enum with the given symbols.
func NewEnum(fullName string, symbols ...string) *Enum {
	return &Enum{FullName: fullName, Symbols: symbols}
}

// NewFixed creates a fixed type of size bytes.
func NewFixed(fullName string, size int) *Fixed {
	return &Fixed{FullName: fullName, Size: size}
}

// Annotate sets a property on s and returns s.
func Annotate[S Schema](s S, key string, v any) S {
	s.SetProperty(key, v)
	return s
}
