package schema

// Kind tags the variant of a schema node.
type Kind int

const (
	KindPrimitive Kind = iota
	KindRecord
	KindUnion
	KindMap
	KindArray
	KindTyperef
	KindEnum
	KindFixed
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindRecord:
		return "record"
	case KindUnion:
		return "union"
	case KindMap:
		return "map"
	case KindArray:
		return "array"
	case KindTyperef:
		return "typeref"
	case KindEnum:
		return "enum"
	case KindFixed:
		return "fixed"
	default:
		panic(k)
	}
}

// PrimitiveType names a scalar type. The value doubles as the union member key.
type PrimitiveType string

const (
	TypeInt     PrimitiveType = "int"
	TypeLong    PrimitiveType = "long"
	TypeFloat   PrimitiveType = "float"
	TypeDouble  PrimitiveType = "double"
	TypeBoolean PrimitiveType = "boolean"
	TypeString  PrimitiveType = "string"
	TypeBytes   PrimitiveType = "bytes"
	TypeNull    PrimitiveType = "null"
)

// ParsePrimitiveType maps a type name to a PrimitiveType.
func ParsePrimitiveType(s string) (PrimitiveType, bool) {
	switch t := PrimitiveType(s); t {
	case TypeInt, TypeLong, TypeFloat, TypeDouble, TypeBoolean, TypeString, TypeBytes, TypeNull:
		return t, true
	default:
		return "", false
	}
}
