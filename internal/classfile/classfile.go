package classfile

import (
	jerrors "jclift/internal/errors"
)

const magic = 0xCAFEBABE

// Attribute is a name (resolved via the constant pool) plus its raw
// payload bytes. Only the Code attribute is interpreted by the core; the
// rest (SourceFile, LineNumberTable, InnerClasses, Signature, ...) are
// kept as raw bytes for a caller that wants them.
type Attribute struct {
	Name string
	Data []byte
}

// ExceptionHandler is one entry of a Code attribute's exception table.
type ExceptionHandler struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16 // 0 == catches everything (finally)
}

// Code is the payload of a method's Code attribute: the bytecode and
// everything needed to decode and lift it.
type Code struct {
	MaxStack   uint16
	MaxLocals  uint16
	Bytes      []byte
	Exceptions []ExceptionHandler
	Attributes []Attribute
}

// Member is a field or method record: access flags, name/descriptor, and
// attributes (a method's attributes include its Code attribute, if any).
type Member struct {
	AccessFlags AccessFlags
	Name        string
	Descriptor  Descriptor
	Attributes  []Attribute
	Code        *Code // non-nil for methods with a Code attribute
}

// Class is the top-level parsed class-file container.
type Class struct {
	MinorVersion uint16
	MajorVersion uint16
	Pool         *ConstantPool
	AccessFlags  AccessFlags
	This         ClassPath
	Super        ClassPath // zero value when the wire super_class index is 0 (java/lang/Object or an interface)
	HasSuper     bool
	Interfaces   []ClassPath
	Fields       []Member
	Methods      []Member
	Attributes   []Attribute
}

// Parse reads a full class file from raw bytes.
func Parse(data []byte) (*Class, error) {
	r := NewReader(data)

	m, err := r.U4()
	if err != nil {
		return nil, jerrors.NewReadError(r.Pos(), "magic", err)
	}
	if m != magic {
		return nil, jerrors.NewReadError(0, "invalid magic", nil)
	}

	minor, err := r.U2()
	if err != nil {
		return nil, jerrors.NewReadError(r.Pos(), "minor_version", err)
	}
	major, err := r.U2()
	if err != nil {
		return nil, jerrors.NewReadError(r.Pos(), "major_version", err)
	}

	pool, err := ParseConstantPool(r)
	if err != nil {
		return nil, err
	}

	accessFlags, err := r.U2()
	if err != nil {
		return nil, jerrors.NewReadError(r.Pos(), "access_flags", err)
	}

	thisIdx, err := r.U2()
	if err != nil {
		return nil, jerrors.NewReadError(r.Pos(), "this_class", err)
	}
	this, err := pool.GetClassPath(thisIdx)
	if err != nil {
		return nil, err
	}

	superIdx, err := r.U2()
	if err != nil {
		return nil, jerrors.NewReadError(r.Pos(), "super_class", err)
	}
	var super ClassPath
	hasSuper := superIdx != 0
	if hasSuper {
		super, err = pool.GetClassPath(superIdx)
		if err != nil {
			return nil, err
		}
	}

	ifaceCount, err := r.U2()
	if err != nil {
		return nil, jerrors.NewReadError(r.Pos(), "interfaces_count", err)
	}
	interfaces := make([]ClassPath, 0, ifaceCount)
	for i := uint16(0); i < ifaceCount; i++ {
		idx, err := r.U2()
		if err != nil {
			return nil, jerrors.NewReadError(r.Pos(), "interface index", err)
		}
		cp, err := pool.GetClassPath(idx)
		if err != nil {
			return nil, err
		}
		interfaces = append(interfaces, cp)
	}

	fields, err := parseMembers(r, pool)
	if err != nil {
		return nil, err
	}
	methods, err := parseMembers(r, pool)
	if err != nil {
		return nil, err
	}
	attrs, err := parseAttributes(r, pool)
	if err != nil {
		return nil, err
	}

	return &Class{
		MinorVersion: minor,
		MajorVersion: major,
		Pool:         pool,
		AccessFlags:  AccessFlags(accessFlags),
		This:         this,
		Super:        super,
		HasSuper:     hasSuper,
		Interfaces:   interfaces,
		Fields:       fields,
		Methods:      methods,
		Attributes:   attrs,
	}, nil
}

func parseMembers(r *Reader, pool *ConstantPool) ([]Member, error) {
	count, err := r.U2()
	if err != nil {
		return nil, jerrors.NewReadError(r.Pos(), "member count", err)
	}
	members := make([]Member, 0, count)
	for i := uint16(0); i < count; i++ {
		af, err := r.U2()
		if err != nil {
			return nil, jerrors.NewReadError(r.Pos(), "member access_flags", err)
		}
		nameIdx, err := r.U2()
		if err != nil {
			return nil, jerrors.NewReadError(r.Pos(), "member name_index", err)
		}
		name, err := pool.GetUtf8(nameIdx)
		if err != nil {
			return nil, err
		}
		descIdx, err := r.U2()
		if err != nil {
			return nil, jerrors.NewReadError(r.Pos(), "member descriptor_index", err)
		}
		descStr, err := pool.GetUtf8(descIdx)
		if err != nil {
			return nil, err
		}
		attrs, err := parseAttributes(r, pool)
		if err != nil {
			return nil, err
		}
		member := Member{
			AccessFlags: AccessFlags(af),
			Name:        name,
			Descriptor:  ParseDescriptor(descStr),
			Attributes:  attrs,
		}
		for _, a := range attrs {
			if a.Name == "Code" {
				code, err := parseCode(a.Data, pool)
				if err != nil {
					return nil, err
				}
				member.Code = code
				break
			}
		}
		members = append(members, member)
	}
	return members, nil
}

func parseAttributes(r *Reader, pool *ConstantPool) ([]Attribute, error) {
	count, err := r.U2()
	if err != nil {
		return nil, jerrors.NewReadError(r.Pos(), "attribute count", err)
	}
	attrs := make([]Attribute, 0, count)
	for i := uint16(0); i < count; i++ {
		nameIdx, err := r.U2()
		if err != nil {
			return nil, jerrors.NewReadError(r.Pos(), "attribute name_index", err)
		}
		name, err := pool.GetUtf8(nameIdx)
		if err != nil {
			return nil, err
		}
		length, err := r.U4()
		if err != nil {
			return nil, jerrors.NewReadError(r.Pos(), "attribute length", err)
		}
		data, err := r.Bytes(int(length))
		if err != nil {
			return nil, jerrors.NewReadError(r.Pos(), "attribute payload", err)
		}
		attrs = append(attrs, Attribute{Name: name, Data: data})
	}
	return attrs, nil
}

func parseCode(data []byte, pool *ConstantPool) (*Code, error) {
	r := NewReader(data)
	maxStack, err := r.U2()
	if err != nil {
		return nil, jerrors.NewReadError(r.Pos(), "max_stack", err)
	}
	maxLocals, err := r.U2()
	if err != nil {
		return nil, jerrors.NewReadError(r.Pos(), "max_locals", err)
	}
	codeLen, err := r.U4()
	if err != nil {
		return nil, jerrors.NewReadError(r.Pos(), "code_length", err)
	}
	codeBytes, err := r.Bytes(int(codeLen))
	if err != nil {
		return nil, jerrors.NewReadError(r.Pos(), "code", err)
	}
	excCount, err := r.U2()
	if err != nil {
		return nil, jerrors.NewReadError(r.Pos(), "exception_table_length", err)
	}
	exceptions := make([]ExceptionHandler, 0, excCount)
	for i := uint16(0); i < excCount; i++ {
		start, err := r.U2()
		if err != nil {
			return nil, jerrors.NewReadError(r.Pos(), "exception start_pc", err)
		}
		end, err := r.U2()
		if err != nil {
			return nil, jerrors.NewReadError(r.Pos(), "exception end_pc", err)
		}
		handler, err := r.U2()
		if err != nil {
			return nil, jerrors.NewReadError(r.Pos(), "exception handler_pc", err)
		}
		catchType, err := r.U2()
		if err != nil {
			return nil, jerrors.NewReadError(r.Pos(), "exception catch_type", err)
		}
		exceptions = append(exceptions, ExceptionHandler{StartPC: start, EndPC: end, HandlerPC: handler, CatchType: catchType})
	}
	attrs, err := parseAttributes(r, pool)
	if err != nil {
		return nil, err
	}
	return &Code{
		MaxStack:   maxStack,
		MaxLocals:  maxLocals,
		Bytes:      codeBytes,
		Exceptions: exceptions,
		Attributes: attrs,
	}, nil
}
