package sparkbuffer

import (
	"fmt"

	"github.com/SherkeyXD/BydTools-sub000/internal/binreader"
	"github.com/SherkeyXD/BydTools-sub000/internal/xerr"
)

// Decoder decodes one SparkBuffer file into an ordered JSON-able value
// tree. Each Decoder owns its own Registry; nothing is shared across
// files (spec.md §3 "Type registry lifecycle").
type Decoder struct {
	r        *binreader.Reader
	registry *Registry
}

// NewDecoder constructs a Decoder over a whole-file buffer.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{r: binreader.New(data), registry: newRegistry()}
}

// Decode reads the three header offsets, parses the type-def sector into
// the Decoder's Registry, then decodes the root value (spec.md §4.8).
func (d *Decoder) Decode() (any, error) {
	typeDefOff, err := d.r.U32()
	if err != nil {
		return nil, fmt.Errorf("reading type-def offset: %w", err)
	}
	rootDefOff, err := d.r.U32()
	if err != nil {
		return nil, fmt.Errorf("reading root-def offset: %w", err)
	}
	dataOff, err := d.r.U32()
	if err != nil {
		return nil, fmt.Errorf("reading data offset: %w", err)
	}

	if err := d.parseTypeDefs(int(typeDefOff)); err != nil {
		return nil, fmt.Errorf("parsing type defs: %w", err)
	}

	root, err := d.parseRootDescriptor(int(rootDefOff))
	if err != nil {
		return nil, fmt.Errorf("parsing root descriptor: %w", err)
	}

	if err := d.r.Seek(int(dataOff)); err != nil {
		return nil, fmt.Errorf("seeking to data sector: %w", err)
	}
	return d.decodeRootValue(root)
}

// decodeRootValue decodes the value described by the root descriptor at
// the current cursor position. Unlike a bean/array/map field, which is
// pointer-referenced (spec.md §3), the root value's body sits directly at
// the data offset (spec.md §8 scenario 5: the map's count and bookkeeping
// immediately follow the data offset, with no intervening pointer word).
func (d *Decoder) decodeRootValue(f Field) (any, error) {
	switch f.Tag {
	case TagBean:
		return d.decodeBean(f.TypeHash)
	case TagArray:
		return d.decodeArray(f)
	case TagMap:
		return d.decodeMap(f)
	default:
		return d.decodeValue(f)
	}
}

// align4 advances the cursor to the next 4-byte boundary.
func (d *Decoder) align4() error {
	off := d.r.Offset()
	if pad := off % 4; pad != 0 {
		if _, err := d.r.Raw(4 - pad); err != nil {
			return err
		}
	}
	return nil
}

// align8 advances the cursor to the next 8-byte boundary.
func (d *Decoder) align8() error {
	off := d.r.Offset()
	if pad := off % 8; pad != 0 {
		if _, err := d.r.Raw(8 - pad); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) parseTypeDefs(off int) error {
	if err := d.r.Seek(off); err != nil {
		return err
	}
	count, err := d.r.U32()
	if err != nil {
		return fmt.Errorf("reading type count: %w", err)
	}

	for i := uint32(0); i < count; i++ {
		if err := d.align4(); err != nil {
			return err
		}
		tag, err := d.r.U8()
		if err != nil {
			return fmt.Errorf("reading type %d's tag: %w", i, err)
		}
		switch Tag(tag) {
		case TagBean:
			b, err := d.parseBeanType()
			if err != nil {
				return fmt.Errorf("reading bean type %d: %w", i, err)
			}
			d.registry.beans[b.Hash] = b
		case TagEnum:
			e, err := d.parseEnumType()
			if err != nil {
				return fmt.Errorf("reading enum type %d: %w", i, err)
			}
			d.registry.enums[e.Hash] = e
		default:
			return fmt.Errorf("type-def entry %d has tag %s, want bean or enum: %w", i, Tag(tag), xerr.ErrUnsupportedField)
		}
	}
	return nil
}

func (d *Decoder) parseBeanType() (BeanType, error) {
	var b BeanType
	var err error
	if b.Hash, err = d.r.U32(); err != nil {
		return b, err
	}
	if b.Name, err = d.r.LPString16(); err != nil {
		return b, err
	}
	fieldCount, err := d.r.U32()
	if err != nil {
		return b, err
	}
	b.Fields = make([]Field, fieldCount)
	for i := range b.Fields {
		f, err := d.parseFieldDescriptor()
		if err != nil {
			return b, fmt.Errorf("field %d: %w", i, err)
		}
		b.Fields[i] = f
	}
	return b, nil
}

func (d *Decoder) parseEnumType() (EnumType, error) {
	var e EnumType
	var err error
	if e.Hash, err = d.r.U32(); err != nil {
		return e, err
	}
	if e.Name, err = d.r.LPString16(); err != nil {
		return e, err
	}
	count, err := d.r.U32()
	if err != nil {
		return e, err
	}
	e.Values = make([]EnumValue, count)
	for i := range e.Values {
		name, err := d.r.LPString16()
		if err != nil {
			return e, fmt.Errorf("enum value %d name: %w", i, err)
		}
		v, err := d.r.U32()
		if err != nil {
			return e, fmt.Errorf("enum value %d: %w", i, err)
		}
		e.Values[i] = EnumValue{Name: name, Value: int32(v)}
	}
	return e, nil
}

// parseFieldDescriptor reads (name, tag, optional aggregate-type hashes
// and subtype tags) — the same shape used both for bean fields and for
// the root descriptor (spec.md §4.8 steps 1 and 2).
func (d *Decoder) parseFieldDescriptor() (Field, error) {
	var f Field
	var err error
	if f.Name, err = d.r.LPString16(); err != nil {
		return f, fmt.Errorf("reading name: %w", err)
	}
	tag, err := d.r.U8()
	if err != nil {
		return f, fmt.Errorf("reading tag: %w", err)
	}
	f.Tag = Tag(tag)

	switch f.Tag {
	case TagBean, TagEnum:
		if err := d.align4(); err != nil {
			return f, err
		}
		if f.TypeHash, err = d.r.U32(); err != nil {
			return f, fmt.Errorf("reading type hash: %w", err)
		}
	case TagArray:
		et, err := d.r.U8()
		if err != nil {
			return f, fmt.Errorf("reading element tag: %w", err)
		}
		f.ElementTag = Tag(et)
		if f.ElementTag.IsAggregate() {
			if err := d.align4(); err != nil {
				return f, err
			}
			if f.ElementTypeHash, err = d.r.U32(); err != nil {
				return f, fmt.Errorf("reading element type hash: %w", err)
			}
		}
	case TagMap:
		kt, err := d.r.U8()
		if err != nil {
			return f, fmt.Errorf("reading key tag: %w", err)
		}
		f.KeyTag = Tag(kt)
		vt, err := d.r.U8()
		if err != nil {
			return f, fmt.Errorf("reading value tag: %w", err)
		}
		f.ValueTag = Tag(vt)
		if f.KeyTag.IsAggregate() {
			if err := d.align4(); err != nil {
				return f, err
			}
			if f.KeyTypeHash, err = d.r.U32(); err != nil {
				return f, fmt.Errorf("reading key type hash: %w", err)
			}
		}
		if f.ValueTag.IsAggregate() {
			if err := d.align4(); err != nil {
				return f, err
			}
			if f.ValueTypeHash, err = d.r.U32(); err != nil {
				return f, fmt.Errorf("reading value type hash: %w", err)
			}
		}
	}
	return f, nil
}

func (d *Decoder) parseRootDescriptor(off int) (Field, error) {
	if err := d.r.Seek(off); err != nil {
		return Field{}, err
	}
	return d.parseFieldDescriptor()
}
