package sparkbuffer

import (
	"fmt"
	"math"

	"github.com/SherkeyXD/BydTools-sub000/internal/xerr"
)

// nullOffset is the sentinel offset meaning "null" for both string-pool
// references and bean/array/map pointers (spec.md §3: "offset −1 denotes
// null").
const nullOffset = -1

// decodeValue reads one value of the shape described by f at the current
// cursor position.
func (d *Decoder) decodeValue(f Field) (any, error) {
	switch f.Tag {
	case TagBool:
		v, err := d.r.Bool()
		return v, err
	case TagByte:
		return nil, fmt.Errorf("field %q has byte tag: %w", f.Name, xerr.ErrUnsupportedField)
	case TagInt:
		v, err := d.r.U32()
		return int32(v), err
	case TagLong:
		if err := d.align8(); err != nil {
			return nil, err
		}
		v, err := d.r.U64()
		return int64(v), err
	case TagFloat:
		v, err := d.r.U32()
		if err != nil {
			return nil, err
		}
		return math.Float32frombits(v), nil
	case TagDouble:
		if err := d.align8(); err != nil {
			return nil, err
		}
		v, err := d.r.U64()
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(v), nil
	case TagString:
		return d.decodeStringRef()
	case TagEnum:
		return d.decodeEnumInline(f.TypeHash)
	case TagBean:
		return d.decodePointer(f)
	case TagArray:
		return d.decodePointer(f)
	case TagMap:
		return d.decodePointer(f)
	default:
		return nil, fmt.Errorf("field %q has tag %s: %w", f.Name, f.Tag, xerr.ErrUnsupportedField)
	}
}

// decodeStringRef reads a 32-bit string-pool offset and resolves it.
func (d *Decoder) decodeStringRef() (any, error) {
	off, err := d.r.U32()
	if err != nil {
		return nil, err
	}
	if int32(off) == nullOffset {
		return nil, nil
	}
	return d.readPooledString(int(off))
}

// readPooledString reads a length-prefixed string from an absolute file
// offset, restoring the cursor afterward.
func (d *Decoder) readPooledString(off int) (string, error) {
	save := d.r.Offset()
	defer func() { _ = d.r.Seek(save) }()

	if err := d.r.Seek(off); err != nil {
		return "", err
	}
	return d.r.LPString16()
}

// decodeEnumInline reads an inline 4-byte enum value and resolves it to
// its constant name via the registry.
func (d *Decoder) decodeEnumInline(typeHash uint32) (any, error) {
	if err := d.align4(); err != nil {
		return nil, err
	}
	raw, err := d.r.U32()
	if err != nil {
		return nil, err
	}
	et, ok := d.registry.enum(typeHash)
	if !ok {
		return int32(raw), nil
	}
	return et.nameForValue(int32(raw)), nil
}

// decodePointer reads an aligned 32-bit offset (bean/array/map field are
// all pointer-referenced per spec.md §3), follows it if non-null, decodes
// the referent, and restores the cursor.
func (d *Decoder) decodePointer(f Field) (any, error) {
	if err := d.align4(); err != nil {
		return nil, err
	}
	off, err := d.r.U32()
	if err != nil {
		return nil, err
	}
	if int32(off) == nullOffset {
		return nil, nil
	}

	save := d.r.Offset()
	defer func() { _ = d.r.Seek(save) }()

	if err := d.r.Seek(int(off)); err != nil {
		return nil, err
	}

	switch f.Tag {
	case TagBean:
		return d.decodeBean(f.TypeHash)
	case TagArray:
		return d.decodeArray(f)
	case TagMap:
		return d.decodeMap(f)
	default:
		return nil, fmt.Errorf("decodePointer called with non-pointer tag %s: %w", f.Tag, xerr.ErrUnsupportedField)
	}
}

// decodeBean decodes a registered bean type's fields in declared order
// into an OrderedObject (spec.md §4.8 step 3).
func (d *Decoder) decodeBean(typeHash uint32) (any, error) {
	bt, ok := d.registry.bean(typeHash)
	if !ok {
		return nil, fmt.Errorf("bean type hash %08x not registered: %w", typeHash, xerr.ErrCorruptOrWrongKey)
	}

	obj := make(OrderedObject, 0, len(bt.Fields))
	var prevTag Tag
	hasPrev := false
	for _, field := range bt.Fields {
		if hasPrev && prevTag == TagBool && field.Tag != TagBool {
			if err := d.align4(); err != nil {
				return nil, err
			}
		}
		v, err := d.decodeValue(field)
		if err != nil {
			return nil, fmt.Errorf("bean %q field %q: %w", bt.Name, field.Name, err)
		}
		obj = append(obj, KV{Key: field.Name, Value: v})
		prevTag, hasPrev = field.Tag, true
	}
	return obj, nil
}

// decodeArray decodes an element count followed by that many elements of
// the declared element type (spec.md §4.8 step 3 "Array").
func (d *Decoder) decodeArray(f Field) (any, error) {
	count, err := d.r.U32()
	if err != nil {
		return nil, err
	}
	elemField := Field{Tag: f.ElementTag, TypeHash: f.ElementTypeHash}
	out := make([]any, 0, count)
	for i := uint32(0); i < count; i++ {
		v, err := d.decodeValue(elemField)
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// decodeMap decodes a KV count, skips count*8 bytes of indexing
// bookkeeping, then reads that many (key, value) pairs in order
// (spec.md §4.8 step 3 "Map"; spec.md §8 scenario 5).
func (d *Decoder) decodeMap(f Field) (any, error) {
	count, err := d.r.U32()
	if err != nil {
		return nil, err
	}
	if _, err := d.r.Raw(int(count) * 8); err != nil {
		return nil, fmt.Errorf("skipping map bookkeeping: %w", err)
	}

	keyField := Field{Tag: f.KeyTag, TypeHash: f.KeyTypeHash}
	valField := Field{Tag: f.ValueTag, TypeHash: f.ValueTypeHash}

	obj := make(OrderedObject, 0, count)
	for i := uint32(0); i < count; i++ {
		k, err := d.decodeValue(keyField)
		if err != nil {
			return nil, fmt.Errorf("map key %d: %w", i, err)
		}
		v, err := d.decodeValue(valField)
		if err != nil {
			return nil, fmt.Errorf("map value %d: %w", i, err)
		}
		obj = append(obj, KV{Key: fmt.Sprint(k), Value: v})
	}
	return obj, nil
}
