package bytecode

import (
	jerrors "jclift/internal/errors"
)

// Entry pairs a decoded Instruction with its absolute byte offset, per
// spec §3's InstructionSequence invariant (offsets strictly increasing,
// equal to the consumed byte positions of the original code).
type Entry struct {
	Offset int64
	Instr  Instruction
}

// InstructionSequence is the decoder's output: an ordered list of
// (offset, Instruction) pairs.
type InstructionSequence []Entry

// ByOffset finds the instruction decoded at the given absolute offset, if
// any — the check behind "for every branch target t, there exists some
// decoded instruction at offset t".
func (seq InstructionSequence) ByOffset(offset int64) (Entry, bool) {
	// Linear scan, stopping early once offsets pass the one sought; this is
	// the single shared definition of "does this offset exist".
	for _, e := range seq {
		if e.Offset == offset {
			return e, true
		}
		if e.Offset > offset {
			break
		}
	}
	return Entry{}, false
}

type byteCursor struct {
	data []byte
	pos  int
}

func (c *byteCursor) u1() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, jerrors.NewReadError(int64(c.pos), "truncated code stream", nil)
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

func (c *byteCursor) i1() (int8, error) {
	b, err := c.u1()
	return int8(b), err
}

func (c *byteCursor) u2() (uint16, error) {
	hi, err := c.u1()
	if err != nil {
		return 0, err
	}
	lo, err := c.u1()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (c *byteCursor) i2() (int16, error) {
	v, err := c.u2()
	return int16(v), err
}

func (c *byteCursor) u4() (uint32, error) {
	b0, err := c.u1()
	if err != nil {
		return 0, err
	}
	b1, err := c.u1()
	if err != nil {
		return 0, err
	}
	b2, err := c.u1()
	if err != nil {
		return 0, err
	}
	b3, err := c.u1()
	if err != nil {
		return 0, err
	}
	return uint32(b0)<<24 | uint32(b1)<<16 | uint32(b2)<<8 | uint32(b3), nil
}

func (c *byteCursor) i4() (int32, error) {
	v, err := c.u4()
	return int32(v), err
}

// Decode turns a Code attribute's raw bytecode into an InstructionSequence.
// Fails fast with a *errors.DecodeError on an unknown opcode or unknown
// NEWARRAY primitive tag; other failures surface as read errors.
func Decode(code []byte) (InstructionSequence, error) {
	c := &byteCursor{data: code}
	var seq InstructionSequence

	for c.pos < len(c.data) {
		start := int64(c.pos)
		opcodeByte, err := c.u1()
		if err != nil {
			return nil, err
		}

		wide := false
		if opcodeByte == 0xc4 { // WIDE prefix: re-enter decode for the following instruction
			wide = true
			opcodeByte, err = c.u1()
			if err != nil {
				return nil, err
			}
		}

		entry, ok := opcodeTable[opcodeByte]
		if !ok {
			return nil, jerrors.NewUnknownOpcodeError(start, opcodeByte)
		}

		ins := Instruction{Op: entry.op, Mnemonic: entry.mnemonic}

		switch entry.form {
		case formNone:
			// no operands

		case formImplicitConst:
			ins.IntImm = entry.implicit

		case formImplicitIndex:
			ins.Index = uint16(entry.implicit)

		case formI1:
			v, err := c.i1()
			if err != nil {
				return nil, err
			}
			ins.IntImm = int32(v)

		case formI2:
			v, err := c.i2()
			if err != nil {
				return nil, err
			}
			ins.IntImm = int32(v)

		case formU1PoolIndex:
			v, err := c.u1()
			if err != nil {
				return nil, err
			}
			ins.PoolIndex = uint16(v)

		case formU2PoolIndex:
			v, err := c.u2()
			if err != nil {
				return nil, err
			}
			ins.PoolIndex = v

		case formVarIndex:
			if wide {
				v, err := c.u2()
				if err != nil {
					return nil, err
				}
				ins.Index = v
			} else {
				v, err := c.u1()
				if err != nil {
					return nil, err
				}
				ins.Index = uint16(v)
			}

		case formIInc:
			if wide {
				idx, err := c.u2()
				if err != nil {
					return nil, err
				}
				delta, err := c.i2()
				if err != nil {
					return nil, err
				}
				ins.Index = idx
				ins.IIncDelta = int32(delta)
			} else {
				idx, err := c.u1()
				if err != nil {
					return nil, err
				}
				delta, err := c.i1()
				if err != nil {
					return nil, err
				}
				ins.Index = uint16(idx)
				ins.IIncDelta = int32(delta)
			}

		case formBranch16:
			v, err := c.i2()
			if err != nil {
				return nil, err
			}
			ins.Target = start + int64(v)

		case formBranch32:
			v, err := c.i4()
			if err != nil {
				return nil, err
			}
			ins.Target = start + int64(v)

		case formInvokeInterface:
			v, err := c.u2()
			if err != nil {
				return nil, err
			}
			ins.PoolIndex = v
			if _, err := c.u1(); err != nil { // count, discarded
				return nil, err
			}
			if _, err := c.u1(); err != nil { // reserved, discarded
				return nil, err
			}

		case formInvokeDynamic:
			v, err := c.u2()
			if err != nil {
				return nil, err
			}
			ins.PoolIndex = v
			if _, err := c.u2(); err != nil { // reserved, discarded
				return nil, err
			}

		case formMultiANewArray:
			v, err := c.u2()
			if err != nil {
				return nil, err
			}
			dims, err := c.u1()
			if err != nil {
				return nil, err
			}
			ins.PoolIndex = v
			ins.Dims = dims

		case formNewArray:
			tag, err := c.u1()
			if err != nil {
				return nil, err
			}
			if _, ok := arrayTypeName(PrimitiveArrayType(tag)); !ok {
				return nil, jerrors.NewUnknownArrayTypeError(start, tag)
			}
			ins.ArrayType = PrimitiveArrayType(tag)

		case formTableSwitch:
			if err := decodeTableSwitch(c, start, &ins); err != nil {
				return nil, err
			}

		case formLookupSwitch:
			if err := decodeLookupSwitch(c, start, &ins); err != nil {
				return nil, err
			}

		case formWide:
			// handled above by peeking the next opcode; unreachable here
		}

		seq = append(seq, Entry{Offset: start, Instr: ins})
	}

	return seq, nil
}

func arrayTypeName(t PrimitiveArrayType) (string, bool) {
	switch t {
	case ArrayBoolean, ArrayChar, ArrayFloat, ArrayDouble, ArrayByte, ArrayShort, ArrayInt, ArrayLong:
		return primitiveArrayTypeName(t), true
	default:
		return "", false
	}
}

func decodeTableSwitch(c *byteCursor, start int64, ins *Instruction) error {
	alignTo4(c, start)
	def, err := c.i4()
	if err != nil {
		return err
	}
	low, err := c.i4()
	if err != nil {
		return err
	}
	high, err := c.i4()
	if err != nil {
		return err
	}
	ins.Op = OpTableSwitch
	ins.SwitchDefault = start + int64(def)
	ins.SwitchLow = low
	ins.SwitchHigh = high
	n := int(high) - int(low) + 1
	if n < 0 {
		n = 0
	}
	ins.SwitchOffsets = make([]int64, 0, n)
	for i := 0; i < n; i++ {
		off, err := c.i4()
		if err != nil {
			return err
		}
		ins.SwitchOffsets = append(ins.SwitchOffsets, start+int64(off))
	}
	return nil
}

func decodeLookupSwitch(c *byteCursor, start int64, ins *Instruction) error {
	alignTo4(c, start)
	def, err := c.i4()
	if err != nil {
		return err
	}
	npairs, err := c.i4()
	if err != nil {
		return err
	}
	ins.Op = OpLookupSwitch
	ins.SwitchDefault = start + int64(def)
	ins.LookupCases = make([]LookupCase, 0, npairs)
	for i := int32(0); i < npairs; i++ {
		key, err := c.i4()
		if err != nil {
			return err
		}
		target, err := c.i4()
		if err != nil {
			return err
		}
		ins.LookupCases = append(ins.LookupCases, LookupCase{Key: key, Target: start + int64(target)})
	}
	return nil
}

// alignTo4 consumes padding bytes so the cursor sits on the next 4-byte
// boundary relative to the start of the code array (spec §4.1: alignment
// is "relative to the start of the code block", not the instruction's own
// start — the opcode byte itself is already consumed by the time this
// runs, so padding is computed from the code-relative position).
func alignTo4(c *byteCursor, instrStart int64) {
	for c.pos%4 != 0 {
		c.pos++
	}
}
