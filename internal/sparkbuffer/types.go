// Package sparkbuffer decodes the typed binary "SparkBuffer" table format
// into JSON (spec.md §4.8): a type-definition sector describes bean and
// enum shapes, a root descriptor names the top-level value's type, and a
// data sector holds the actual values, addressed with offset-based
// pointers for bean/array/map references.
//
// The "parse a type catalogue once, then walk data records through it"
// shape mirrors scigolib-hdf5's datatype-message parsing ahead of its
// dataspace/data reads, though the two formats otherwise share nothing —
// SparkBuffer's type system, pointer-chasing and string pool are specific
// to this spec.
package sparkbuffer

import "fmt"

// Tag is a SparkBuffer value type tag. Numeric values are not specified by
// the format description available to this implementation; they are
// assigned in the order spec.md §4.8 lists the type system and are only
// ever compared against values produced by this same decoder.
type Tag uint8

const (
	TagBool Tag = iota
	TagByte
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagString
	TagEnum
	TagBean
	TagArray
	TagMap
)

func (t Tag) String() string {
	switch t {
	case TagBool:
		return "bool"
	case TagByte:
		return "byte"
	case TagInt:
		return "int"
	case TagLong:
		return "long"
	case TagFloat:
		return "float"
	case TagDouble:
		return "double"
	case TagString:
		return "string"
	case TagEnum:
		return "enum"
	case TagBean:
		return "bean"
	case TagArray:
		return "array"
	case TagMap:
		return "map"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// IsAggregate reports whether values of this tag are pointer-referenced
// (beans) or otherwise carry a registered type hash (enum), per spec.md §3
// ("Aggregate types (enum/bean) carry a 32-bit hash identifying a
// registered type").
func (t Tag) IsAggregate() bool {
	return t == TagBean || t == TagEnum
}

// Is64Bit reports whether this tag's inline value needs 8-byte alignment
// before it is read (spec.md §4.8 rule 4).
func (t Tag) Is64Bit() bool {
	return t == TagLong || t == TagDouble
}

// Field describes one bean field or one root-descriptor value.
type Field struct {
	Name string
	Tag  Tag

	// TypeHash identifies the registered Bean/Enum type when Tag is
	// TagBean or TagEnum.
	TypeHash uint32

	// Element* describe the element type when Tag is TagArray.
	ElementTag      Tag
	ElementTypeHash uint32

	// Key*/Value* describe the key/value types when Tag is TagMap.
	KeyTag        Tag
	KeyTypeHash   uint32
	ValueTag      Tag
	ValueTypeHash uint32
}

// BeanType is a registered bean shape (spec.md §4.8: "Beans carry
// (hash, name, fieldCount, fields[])").
type BeanType struct {
	Hash   uint32
	Name   string
	Fields []Field
}

// EnumValue is one named constant of an EnumType.
type EnumValue struct {
	Name  string
	Value int32
}

// EnumType is a registered enum shape.
type EnumType struct {
	Hash   uint32
	Name   string
	Values []EnumValue
}

// nameForValue returns the constant name for v, or the raw number
// stringified if v matches no known constant (a defensive fallback; the
// format does not document this case).
func (e EnumType) nameForValue(v int32) string {
	for _, ev := range e.Values {
		if ev.Value == v {
			return ev.Name
		}
	}
	return fmt.Sprintf("%d", v)
}

// Registry holds the type catalogue parsed from one file's type-def
// sector. Constructed fresh per file and never shared across files
// (spec.md §3 "Type registry lifecycle"; spec.md §9 flags the source's
// process-wide mutable registry for replacement with exactly this
// per-decode-instance ownership).
type Registry struct {
	beans map[uint32]BeanType
	enums map[uint32]EnumType
}

func newRegistry() *Registry {
	return &Registry{
		beans: make(map[uint32]BeanType),
		enums: make(map[uint32]EnumType),
	}
}

func (r *Registry) bean(hash uint32) (BeanType, bool) {
	b, ok := r.beans[hash]
	return b, ok
}

func (r *Registry) enum(hash uint32) (EnumType, bool) {
	e, ok := r.enums[hash]
	return e, ok
}
