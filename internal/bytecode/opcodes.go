// Package bytecode decodes the linear JVM opcode stream into a tagged
// Instruction sequence with resolved branch targets and materialized
// operands. It is the ~20%-of-budget core component the lifter consumes.
package bytecode

// Op is the canonical, decode-time instruction tag. Indexed short forms
// (ILOAD_0..3, ICONST_m1..5, ...) are folded into their general form at
// decode time (spec §4.1: "variants... unified"); Op names the unified
// operation, not the raw opcode byte.
type Op int

const (
	OpNop Op = iota
	OpAConstNull
	OpIConst // IntImm holds the value (-1..5)
	OpLConst
	OpFConst
	OpDConst
	OpBIPush
	OpSIPush
	OpLdc // PoolIndex set; LDC, LDC_W and LDC2_W all decode to this Op (they differ in index width, not semantics)
	OpILoad
	OpLLoad
	OpFLoad
	OpDLoad
	OpALoad
	OpIALoad
	OpLALoad
	OpFALoad
	OpDALoad
	OpAALoad
	OpBALoad
	OpCALoad
	OpSALoad
	OpIStore
	OpLStore
	OpFStore
	OpDStore
	OpAStore
	OpIAStore
	OpLAStore
	OpFAStore
	OpDAStore
	OpAAStore
	OpBAStore
	OpCAStore
	OpSAStore
	OpPop
	OpPop2
	OpDup
	OpDupX1
	OpDupX2
	OpDup2
	OpDup2X1
	OpDup2X2
	OpSwap
	OpIAdd
	OpLAdd
	OpFAdd
	OpDAdd
	OpISub
	OpLSub
	OpFSub
	OpDSub
	OpIMul
	OpLMul
	OpFMul
	OpDMul
	OpIDiv
	OpLDiv
	OpFDiv
	OpDDiv
	OpIRem
	OpLRem
	OpFRem
	OpDRem
	OpINeg
	OpLNeg
	OpFNeg
	OpDNeg
	OpIShl
	OpLShl
	OpIShr
	OpLShr
	OpIUShr
	OpLUShr
	OpIAnd
	OpLAnd
	OpIOr
	OpLOr
	OpIXor
	OpLXor
	OpIInc
	OpI2L
	OpI2F
	OpI2D
	OpL2I
	OpL2F
	OpL2D
	OpF2I
	OpF2L
	OpF2D
	OpD2I
	OpD2L
	OpD2F
	OpI2B
	OpI2C
	OpI2S
	OpLCmp
	OpFCmpL
	OpFCmpG
	OpDCmpL
	OpDCmpG
	OpIfEq
	OpIfNe
	OpIfLt
	OpIfGe
	OpIfGt
	OpIfLe
	OpIfICmpEq
	OpIfICmpNe
	OpIfICmpLt
	OpIfICmpGe
	OpIfICmpGt
	OpIfICmpLe
	OpIfACmpEq
	OpIfACmpNe
	OpGoto
	OpJsr
	OpRet
	OpTableSwitch
	OpLookupSwitch
	OpIReturn
	OpLReturn
	OpFReturn
	OpDReturn
	OpAReturn
	OpReturn
	OpGetStatic
	OpPutStatic
	OpGetField
	OpPutField
	OpInvokeVirtual
	OpInvokeSpecial
	OpInvokeStatic
	OpInvokeInterface
	OpInvokeDynamic
	OpNew
	OpNewArray
	OpANewArray
	OpArrayLength
	OpAThrow
	OpCheckCast
	OpInstanceOf
	OpMonitorEnter
	OpMonitorExit
	OpMultiANewArray
	OpIfNull
	OpIfNonNull
	OpBreakpoint // reserved for debuggers (0xCA); never emitted by javac, decoded as a zero-operand no-op
)

// PrimitiveArrayType is NEWARRAY's byte operand, resolved to a named type.
type PrimitiveArrayType byte

const (
	ArrayBoolean PrimitiveArrayType = 4
	ArrayChar    PrimitiveArrayType = 5
	ArrayFloat   PrimitiveArrayType = 6
	ArrayDouble  PrimitiveArrayType = 7
	ArrayByte    PrimitiveArrayType = 8
	ArrayShort   PrimitiveArrayType = 9
	ArrayInt     PrimitiveArrayType = 10
	ArrayLong    PrimitiveArrayType = 11
)

func primitiveArrayTypeName(t PrimitiveArrayType) string {
	switch t {
	case ArrayBoolean:
		return "boolean"
	case ArrayChar:
		return "char"
	case ArrayFloat:
		return "float"
	case ArrayDouble:
		return "double"
	case ArrayByte:
		return "byte"
	case ArrayShort:
		return "short"
	case ArrayInt:
		return "int"
	case ArrayLong:
		return "long"
	default:
		return "?"
	}
}

// opcodeTable maps the raw wire byte to the decode dispatch entry: the
// unified Op it produces and the shape of its operands. This is the
// "canonical opcode list... assumed to be available to the implementer"
// the spec refers to (spec §6).
type operandForm int

const (
	formNone operandForm = iota
	formImplicitConst    // value embedded in the opcode byte itself (ICONST_m1..5, etc.)
	formImplicitIndex    // local index embedded in the opcode byte (?LOAD_0..3)
	formI1               // one signed byte
	formU1               // one unsigned byte
	formI2               // one signed 16-bit
	formU1PoolIndex       // LDC: one unsigned byte, widened to pool index
	formU2PoolIndex       // LDC_W/LDC2_W/field/method/class/invokedynamic: 16-bit pool index
	formVarIndex          // generic ?LOAD/?STORE/RET: byte index, doubled under WIDE
	formIInc              // byte index + signed byte delta, doubled under WIDE
	formBranch16
	formBranch32
	formTableSwitch
	formLookupSwitch
	formInvokeInterface // pool index + count byte + reserved byte
	formInvokeDynamic   // pool index + two reserved bytes
	formMultiANewArray  // pool index + dims byte
	formNewArray        // one byte primitive tag
	formWide            // the WIDE prefix itself
)

type opcodeEntry struct {
	mnemonic string
	op       Op
	form     operandForm
	implicit int32 // for formImplicitConst/formImplicitIndex: the embedded value
}

var opcodeTable = buildOpcodeTable()

func buildOpcodeTable() map[byte]opcodeEntry {
	t := make(map[byte]opcodeEntry, 206)
	add := func(b byte, mnemonic string, op Op, form operandForm, implicit int32) {
		t[b] = opcodeEntry{mnemonic: mnemonic, op: op, form: form, implicit: implicit}
	}

	add(0x00, "nop", OpNop, formNone, 0)
	add(0x01, "aconst_null", OpAConstNull, formNone, 0)
	for i, name := range []string{"iconst_m1", "iconst_0", "iconst_1", "iconst_2", "iconst_3", "iconst_4", "iconst_5"} {
		add(byte(0x02+i), name, OpIConst, formImplicitConst, int32(i-1))
	}
	add(0x09, "lconst_0", OpLConst, formImplicitConst, 0)
	add(0x0a, "lconst_1", OpLConst, formImplicitConst, 1)
	add(0x0b, "fconst_0", OpFConst, formImplicitConst, 0)
	add(0x0c, "fconst_1", OpFConst, formImplicitConst, 1)
	add(0x0d, "fconst_2", OpFConst, formImplicitConst, 2)
	add(0x0e, "dconst_0", OpDConst, formImplicitConst, 0)
	add(0x0f, "dconst_1", OpDConst, formImplicitConst, 1)
	add(0x10, "bipush", OpBIPush, formI1, 0)
	add(0x11, "sipush", OpSIPush, formI2, 0)
	add(0x12, "ldc", OpLdc, formU1PoolIndex, 0)
	add(0x13, "ldc_w", OpLdc, formU2PoolIndex, 0)
	add(0x14, "ldc2_w", OpLdc, formU2PoolIndex, 0)
	add(0x15, "iload", OpILoad, formVarIndex, 0)
	add(0x16, "lload", OpLLoad, formVarIndex, 0)
	add(0x17, "fload", OpFLoad, formVarIndex, 0)
	add(0x18, "dload", OpDLoad, formVarIndex, 0)
	add(0x19, "aload", OpALoad, formVarIndex, 0)
	for i := 0; i < 4; i++ {
		add(byte(0x1a+i), "iload_"+itoa(i), OpILoad, formImplicitIndex, int32(i))
		add(byte(0x1e+i), "lload_"+itoa(i), OpLLoad, formImplicitIndex, int32(i))
		add(byte(0x22+i), "fload_"+itoa(i), OpFLoad, formImplicitIndex, int32(i))
		add(byte(0x26+i), "dload_"+itoa(i), OpDLoad, formImplicitIndex, int32(i))
		add(byte(0x2a+i), "aload_"+itoa(i), OpALoad, formImplicitIndex, int32(i))
	}
	add(0x2e, "iaload", OpIALoad, formNone, 0)
	add(0x2f, "laload", OpLALoad, formNone, 0)
	add(0x30, "faload", OpFALoad, formNone, 0)
	add(0x31, "daload", OpDALoad, formNone, 0)
	add(0x32, "aaload", OpAALoad, formNone, 0)
	add(0x33, "baload", OpBALoad, formNone, 0)
	add(0x34, "caload", OpCALoad, formNone, 0)
	add(0x35, "saload", OpSALoad, formNone, 0)
	add(0x36, "istore", OpIStore, formVarIndex, 0)
	add(0x37, "lstore", OpLStore, formVarIndex, 0)
	add(0x38, "fstore", OpFStore, formVarIndex, 0)
	add(0x39, "dstore", OpDStore, formVarIndex, 0)
	add(0x3a, "astore", OpAStore, formVarIndex, 0)
	for i := 0; i < 4; i++ {
		add(byte(0x3b+i), "istore_"+itoa(i), OpIStore, formImplicitIndex, int32(i))
		add(byte(0x3f+i), "lstore_"+itoa(i), OpLStore, formImplicitIndex, int32(i))
		add(byte(0x43+i), "fstore_"+itoa(i), OpFStore, formImplicitIndex, int32(i))
		add(byte(0x47+i), "dstore_"+itoa(i), OpDStore, formImplicitIndex, int32(i))
		add(byte(0x4b+i), "astore_"+itoa(i), OpAStore, formImplicitIndex, int32(i))
	}
	add(0x4f, "iastore", OpIAStore, formNone, 0)
	add(0x50, "lastore", OpLAStore, formNone, 0)
	add(0x51, "fastore", OpFAStore, formNone, 0)
	add(0x52, "dastore", OpDAStore, formNone, 0)
	add(0x53, "aastore", OpAAStore, formNone, 0)
	add(0x54, "bastore", OpBAStore, formNone, 0)
	add(0x55, "castore", OpCAStore, formNone, 0)
	add(0x56, "sastore", OpSAStore, formNone, 0)
	add(0x57, "pop", OpPop, formNone, 0)
	add(0x58, "pop2", OpPop2, formNone, 0)
	add(0x59, "dup", OpDup, formNone, 0)
	add(0x5a, "dup_x1", OpDupX1, formNone, 0)
	add(0x5b, "dup_x2", OpDupX2, formNone, 0)
	add(0x5c, "dup2", OpDup2, formNone, 0)
	add(0x5d, "dup2_x1", OpDup2X1, formNone, 0)
	add(0x5e, "dup2_x2", OpDup2X2, formNone, 0)
	add(0x5f, "swap", OpSwap, formNone, 0)
	add(0x60, "iadd", OpIAdd, formNone, 0)
	add(0x61, "ladd", OpLAdd, formNone, 0)
	add(0x62, "fadd", OpFAdd, formNone, 0)
	add(0x63, "dadd", OpDAdd, formNone, 0)
	add(0x64, "isub", OpISub, formNone, 0)
	add(0x65, "lsub", OpLSub, formNone, 0)
	add(0x66, "fsub", OpFSub, formNone, 0)
	add(0x67, "dsub", OpDSub, formNone, 0)
	add(0x68, "imul", OpIMul, formNone, 0)
	add(0x69, "lmul", OpLMul, formNone, 0)
	add(0x6a, "fmul", OpFMul, formNone, 0)
	add(0x6b, "dmul", OpDMul, formNone, 0)
	add(0x6c, "idiv", OpIDiv, formNone, 0)
	add(0x6d, "ldiv", OpLDiv, formNone, 0)
	add(0x6e, "fdiv", OpFDiv, formNone, 0)
	add(0x6f, "ddiv", OpDDiv, formNone, 0)
	add(0x70, "irem", OpIRem, formNone, 0)
	add(0x71, "lrem", OpLRem, formNone, 0)
	add(0x72, "frem", OpFRem, formNone, 0)
	add(0x73, "drem", OpDRem, formNone, 0)
	add(0x74, "ineg", OpINeg, formNone, 0)
	add(0x75, "lneg", OpLNeg, formNone, 0)
	add(0x76, "fneg", OpFNeg, formNone, 0)
	add(0x77, "dneg", OpDNeg, formNone, 0)
	add(0x78, "ishl", OpIShl, formNone, 0)
	add(0x79, "lshl", OpLShl, formNone, 0)
	add(0x7a, "ishr", OpIShr, formNone, 0)
	add(0x7b, "lshr", OpLShr, formNone, 0)
	add(0x7c, "iushr", OpIUShr, formNone, 0)
	add(0x7d, "lushr", OpLUShr, formNone, 0)
	add(0x7e, "iand", OpIAnd, formNone, 0)
	add(0x7f, "land", OpLAnd, formNone, 0)
	add(0x80, "ior", OpIOr, formNone, 0)
	add(0x81, "lor", OpLOr, formNone, 0)
	add(0x82, "ixor", OpIXor, formNone, 0)
	add(0x83, "lxor", OpLXor, formNone, 0)
	add(0x84, "iinc", OpIInc, formIInc, 0)
	add(0x85, "i2l", OpI2L, formNone, 0)
	add(0x86, "i2f", OpI2F, formNone, 0)
	add(0x87, "i2d", OpI2D, formNone, 0)
	add(0x88, "l2i", OpL2I, formNone, 0)
	add(0x89, "l2f", OpL2F, formNone, 0)
	add(0x8a, "l2d", OpL2D, formNone, 0)
	add(0x8b, "f2i", OpF2I, formNone, 0)
	add(0x8c, "f2l", OpF2L, formNone, 0)
	add(0x8d, "f2d", OpF2D, formNone, 0)
	add(0x8e, "d2i", OpD2I, formNone, 0)
	add(0x8f, "d2l", OpD2L, formNone, 0)
	add(0x90, "d2f", OpD2F, formNone, 0)
	add(0x91, "i2b", OpI2B, formNone, 0)
	add(0x92, "i2c", OpI2C, formNone, 0)
	add(0x93, "i2s", OpI2S, formNone, 0)
	add(0x94, "lcmp", OpLCmp, formNone, 0)
	add(0x95, "fcmpl", OpFCmpL, formNone, 0)
	add(0x96, "fcmpg", OpFCmpG, formNone, 0)
	add(0x97, "dcmpl", OpDCmpL, formNone, 0)
	add(0x98, "dcmpg", OpDCmpG, formNone, 0)
	add(0x99, "ifeq", OpIfEq, formBranch16, 0)
	add(0x9a, "ifne", OpIfNe, formBranch16, 0)
	add(0x9b, "iflt", OpIfLt, formBranch16, 0)
	add(0x9c, "ifge", OpIfGe, formBranch16, 0)
	add(0x9d, "ifgt", OpIfGt, formBranch16, 0)
	add(0x9e, "ifle", OpIfLe, formBranch16, 0)
	add(0x9f, "if_icmpeq", OpIfICmpEq, formBranch16, 0)
	add(0xa0, "if_icmpne", OpIfICmpNe, formBranch16, 0)
	add(0xa1, "if_icmplt", OpIfICmpLt, formBranch16, 0)
	add(0xa2, "if_icmpge", OpIfICmpGe, formBranch16, 0)
	add(0xa3, "if_icmpgt", OpIfICmpGt, formBranch16, 0)
	add(0xa4, "if_icmple", OpIfICmpLe, formBranch16, 0)
	add(0xa5, "if_acmpeq", OpIfACmpEq, formBranch16, 0)
	add(0xa6, "if_acmpne", OpIfACmpNe, formBranch16, 0)
	add(0xa7, "goto", OpGoto, formBranch16, 0)
	add(0xa8, "jsr", OpJsr, formBranch16, 0)
	add(0xa9, "ret", OpRet, formVarIndex, 0)
	add(0xaa, "tableswitch", OpTableSwitch, formTableSwitch, 0)
	add(0xab, "lookupswitch", OpLookupSwitch, formLookupSwitch, 0)
	add(0xac, "ireturn", OpIReturn, formNone, 0)
	add(0xad, "lreturn", OpLReturn, formNone, 0)
	add(0xae, "freturn", OpFReturn, formNone, 0)
	add(0xaf, "dreturn", OpDReturn, formNone, 0)
	add(0xb0, "areturn", OpAReturn, formNone, 0)
	add(0xb1, "return", OpReturn, formNone, 0)
	add(0xb2, "getstatic", OpGetStatic, formU2PoolIndex, 0)
	add(0xb3, "putstatic", OpPutStatic, formU2PoolIndex, 0)
	add(0xb4, "getfield", OpGetField, formU2PoolIndex, 0)
	add(0xb5, "putfield", OpPutField, formU2PoolIndex, 0)
	add(0xb6, "invokevirtual", OpInvokeVirtual, formU2PoolIndex, 0)
	add(0xb7, "invokespecial", OpInvokeSpecial, formU2PoolIndex, 0)
	add(0xb8, "invokestatic", OpInvokeStatic, formU2PoolIndex, 0)
	add(0xb9, "invokeinterface", OpInvokeInterface, formInvokeInterface, 0)
	add(0xba, "invokedynamic", OpInvokeDynamic, formInvokeDynamic, 0)
	add(0xbb, "new", OpNew, formU2PoolIndex, 0)
	add(0xbc, "newarray", OpNewArray, formNewArray, 0)
	add(0xbd, "anewarray", OpANewArray, formU2PoolIndex, 0)
	add(0xbe, "arraylength", OpArrayLength, formNone, 0)
	add(0xbf, "athrow", OpAThrow, formNone, 0)
	add(0xc0, "checkcast", OpCheckCast, formU2PoolIndex, 0)
	add(0xc1, "instanceof", OpInstanceOf, formU2PoolIndex, 0)
	add(0xc2, "monitorenter", OpMonitorEnter, formNone, 0)
	add(0xc3, "monitorexit", OpMonitorExit, formNone, 0)
	add(0xc4, "wide", OpNop, formWide, 0)
	add(0xc5, "multianewarray", OpMultiANewArray, formMultiANewArray, 0)
	add(0xc6, "ifnull", OpIfNull, formBranch16, 0)
	add(0xc7, "ifnonnull", OpIfNonNull, formBranch16, 0)
	add(0xc8, "goto_w", OpGoto, formBranch32, 0)
	add(0xc9, "jsr_w", OpJsr, formBranch32, 0)
	add(0xca, "breakpoint", OpBreakpoint, formNone, 0)

	return t
}

func itoa(i int) string {
	if i < 0 || i > 9 {
		return "?"
	}
	return string(rune('0' + i))
}
