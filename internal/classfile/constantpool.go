package classfile

import (
	"math"
	"strconv"
	"unicode/utf8"

	jerrors "jclift/internal/errors"
)

// Constant tag wire values (spec §6).
const (
	TagUtf8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldRef            = 9
	TagMethodRef            = 10
	TagInterfaceMethodRef = 11
	TagNameAndType        = 12
	TagMethodHandle       = 15
	TagMethodType         = 16
	TagDynamic            = 17
	TagInvokeDynamic      = 18
	TagModule             = 19
	TagPackage            = 20
)

// Constant is the closed tagged union of constant-pool entries. Exactly
// one of the typed fields is meaningful, selected by Tag.
type Constant struct {
	Tag byte

	Utf8    string
	Integer int32
	Float   float32
	Long    int64
	Double  float64

	ClassNameIndex uint16 // Class

	StringIndex uint16 // String: utf8 index

	ClassIndex       uint16 // FieldRef/MethodRef/InterfaceMethodRef
	NameAndTypeIndex uint16 // FieldRef/MethodRef/InterfaceMethodRef, Dynamic/InvokeDynamic

	NameIndex       uint16 // NameAndType
	DescriptorIndex uint16 // NameAndType, MethodType(descriptor)

	MethodHandleKind uint8  // MethodHandle
	RefIndex         uint16 // MethodHandle

	BootstrapAttrIndex uint16 // Dynamic/InvokeDynamic

	ModulePackageIndex uint16 // Module/Package: utf8 index
}

// TagName renders a human-readable tag name for error messages.
func TagName(tag byte) string {
	switch tag {
	case TagUtf8:
		return "Utf8"
	case TagInteger:
		return "Integer"
	case TagFloat:
		return "Float"
	case TagLong:
		return "Long"
	case TagDouble:
		return "Double"
	case TagClass:
		return "Class"
	case TagString:
		return "String"
	case TagFieldRef:
		return "FieldRef"
	case TagMethodRef:
		return "MethodRef"
	case TagInterfaceMethodRef:
		return "InterfaceMethodRef"
	case TagNameAndType:
		return "NameAndType"
	case TagMethodHandle:
		return "MethodHandle"
	case TagMethodType:
		return "MethodType"
	case TagDynamic:
		return "Dynamic"
	case TagInvokeDynamic:
		return "InvokeDynamic"
	case TagModule:
		return "Module"
	case TagPackage:
		return "Package"
	default:
		return "Tag(" + strconv.Itoa(int(tag)) + ")"
	}
}

// ConstantPool is a 1-based mapping from pool index to Constant. Long and
// Double entries occupy two consecutive indices; the second is absent.
// Built once, sequentially, during class parsing; read-only and safely
// shared across goroutines afterward.
type ConstantPool struct {
	entries map[uint16]Constant
	count   uint16 // the wire "constant_pool_count" (highest valid index + 1)
}

// ParseConstantPool reads the constant_pool_count and that many (minus
// one) constant entries, honoring the Long/Double two-slot rule.
func ParseConstantPool(r *Reader) (*ConstantPool, error) {
	count, err := r.U2()
	if err != nil {
		return nil, jerrors.NewReadError(r.Pos(), "constant pool count", err)
	}
	pool := &ConstantPool{entries: make(map[uint16]Constant, count), count: count}
	for i := uint16(1); i < count; i++ {
		c, err := parseConstant(r)
		if err != nil {
			return nil, jerrors.NewReadError(r.Pos(), "constant pool entry", err)
		}
		pool.entries[i] = c
		if c.Tag == TagLong || c.Tag == TagDouble {
			i++ // next index is absent, per spec invariant
		}
	}
	return pool, nil
}

func parseConstant(r *Reader) (Constant, error) {
	tag, err := r.U1()
	if err != nil {
		return Constant{}, err
	}
	switch tag {
	case TagUtf8:
		n, err := r.U2()
		if err != nil {
			return Constant{}, err
		}
		b, err := r.Bytes(int(n))
		if err != nil {
			return Constant{}, err
		}
		return Constant{Tag: tag, Utf8: decodeModifiedUTF8(b)}, nil
	case TagInteger:
		v, err := r.I4()
		return Constant{Tag: tag, Integer: v}, err
	case TagFloat:
		v, err := r.U4()
		return Constant{Tag: tag, Float: float32FromBits(v)}, err
	case TagLong:
		hi, err := r.U4()
		if err != nil {
			return Constant{}, err
		}
		lo, err := r.U4()
		return Constant{Tag: tag, Long: int64(uint64(hi)<<32 | uint64(lo))}, err
	case TagDouble:
		hi, err := r.U4()
		if err != nil {
			return Constant{}, err
		}
		lo, err := r.U4()
		return Constant{Tag: tag, Double: float64FromBits(uint64(hi)<<32 | uint64(lo))}, err
	case TagClass:
		v, err := r.U2()
		return Constant{Tag: tag, ClassNameIndex: v}, err
	case TagString:
		v, err := r.U2()
		return Constant{Tag: tag, StringIndex: v}, err
	case TagFieldRef, TagMethodRef, TagInterfaceMethodRef:
		ci, err := r.U2()
		if err != nil {
			return Constant{}, err
		}
		nt, err := r.U2()
		return Constant{Tag: tag, ClassIndex: ci, NameAndTypeIndex: nt}, err
	case TagNameAndType:
		ni, err := r.U2()
		if err != nil {
			return Constant{}, err
		}
		di, err := r.U2()
		return Constant{Tag: tag, NameIndex: ni, DescriptorIndex: di}, err
	case TagMethodHandle:
		kind, err := r.U1()
		if err != nil {
			return Constant{}, err
		}
		ref, err := r.U2()
		return Constant{Tag: tag, MethodHandleKind: kind, RefIndex: ref}, err
	case TagMethodType:
		v, err := r.U2()
		return Constant{Tag: tag, DescriptorIndex: v}, err
	case TagDynamic, TagInvokeDynamic:
		bi, err := r.U2()
		if err != nil {
			return Constant{}, err
		}
		nt, err := r.U2()
		return Constant{Tag: tag, BootstrapAttrIndex: bi, NameAndTypeIndex: nt}, err
	case TagModule, TagPackage:
		v, err := r.U2()
		return Constant{Tag: tag, ModulePackageIndex: v}, err
	default:
		return Constant{}, jerrors.NewReadError(r.Pos(), "unknown constant tag "+strconv.Itoa(int(tag)), nil)
	}
}

// Get returns the raw constant at index, validating it exists.
func (p *ConstantPool) Get(index uint16) (Constant, error) {
	c, ok := p.entries[index]
	if !ok {
		return Constant{}, jerrors.NewPoolIndexError(index)
	}
	return c, nil
}

// GetUtf8 resolves a Utf8 constant and returns its string.
func (p *ConstantPool) GetUtf8(index uint16) (string, error) {
	c, err := p.Get(index)
	if err != nil {
		return "", err
	}
	if c.Tag != TagUtf8 {
		return "", jerrors.NewPoolTagError(index, "Utf8", TagName(c.Tag))
	}
	return c.Utf8, nil
}

// GetClassPath resolves a Class constant to its dereferenced ClassPath.
func (p *ConstantPool) GetClassPath(index uint16) (ClassPath, error) {
	c, err := p.Get(index)
	if err != nil {
		return ClassPath{}, err
	}
	if c.Tag != TagClass {
		return ClassPath{}, jerrors.NewPoolTagError(index, "Class", TagName(c.Tag))
	}
	name, err := p.GetUtf8(c.ClassNameIndex)
	if err != nil {
		return ClassPath{}, err
	}
	return ClassPathFromInternal(name), nil
}

// NameAndType is the dereferenced view of a NameAndType constant.
type NameAndType struct {
	Name       string
	Descriptor Descriptor
}

// GetNameAndType resolves a NameAndType constant to its name and parsed
// descriptor.
func (p *ConstantPool) GetNameAndType(index uint16) (NameAndType, error) {
	c, err := p.Get(index)
	if err != nil {
		return NameAndType{}, err
	}
	if c.Tag != TagNameAndType {
		return NameAndType{}, jerrors.NewPoolTagError(index, "NameAndType", TagName(c.Tag))
	}
	name, err := p.GetUtf8(c.NameIndex)
	if err != nil {
		return NameAndType{}, err
	}
	desc, err := p.GetUtf8(c.DescriptorIndex)
	if err != nil {
		return NameAndType{}, err
	}
	return NameAndType{Name: name, Descriptor: ParseDescriptor(desc)}, nil
}

// MemberRef is the dereferenced view of a FieldRef/MethodRef/
// InterfaceMethodRef constant.
type MemberRef struct {
	Class ClassPath
	NameAndType
}

// GetMemberRef resolves any of the three member-ref constant kinds.
func (p *ConstantPool) GetMemberRef(index uint16) (MemberRef, error) {
	c, err := p.Get(index)
	if err != nil {
		return MemberRef{}, err
	}
	switch c.Tag {
	case TagFieldRef, TagMethodRef, TagInterfaceMethodRef:
	default:
		return MemberRef{}, jerrors.NewPoolTagError(index, "FieldRef|MethodRef|InterfaceMethodRef", TagName(c.Tag))
	}
	class, err := p.GetClassPath(c.ClassIndex)
	if err != nil {
		return MemberRef{}, err
	}
	nt, err := p.GetNameAndType(c.NameAndTypeIndex)
	if err != nil {
		return MemberRef{}, err
	}
	return MemberRef{Class: class, NameAndType: nt}, nil
}

// GetString resolves a String constant to its referenced utf8 text.
func (p *ConstantPool) GetString(index uint16) (string, error) {
	c, err := p.Get(index)
	if err != nil {
		return "", err
	}
	if c.Tag != TagString {
		return "", jerrors.NewPoolTagError(index, "String", TagName(c.Tag))
	}
	return p.GetUtf8(c.StringIndex)
}

func float32FromBits(bits uint32) float32 {
	return math.Float32frombits(bits)
}

func float64FromBits(bits uint64) float64 {
	return math.Float64frombits(bits)
}

// decodeModifiedUTF8 best-effort decodes the class file's modified-UTF-8
// payload: the encoded-null two-byte form (0xC0 0x80) is folded back to a
// literal NUL; everything else is handled by the standard UTF-8 decoder,
// which is close enough for a best-effort decompiler (see DESIGN.md).
func decodeModifiedUTF8(b []byte) string {
	out := make([]rune, 0, len(b))
	for i := 0; i < len(b); {
		if i+1 < len(b) && b[i] == 0xC0 && b[i+1] == 0x80 {
			out = append(out, 0)
			i += 2
			continue
		}
		r, size := utf8.DecodeRune(b[i:])
		out = append(out, r)
		i += size
	}
	return string(out)
}
