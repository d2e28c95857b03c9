package bytecode

// LookupCase is one key/target pair of a LOOKUPSWITCH.
type LookupCase struct {
	Key    int32
	Target int64
}

// Instruction is a single decoded opcode with its operands already
// materialized: typed immediates, local-variable indices, pool
// references, and branch targets resolved to absolute byte offsets into
// the code array (never relative deltas — spec §4.1's central decision).
type Instruction struct {
	Op       Op
	Mnemonic string // the wire opcode's name, for diagnostics/emission of stubs

	IntImm int32 // IConst/LConst/FConst/DConst/BIPush/SIPush literal value

	Index uint16 // local variable index (loads/stores/ret) or MULTIANEWARRAY dims count is separate (see Dims)

	PoolIndex uint16 // Ldc/field/method/class/invokedynamic/multianewarray pool reference

	Target int64 // absolute branch target (conditional branches, goto, jsr, ifnull/ifnonnull)

	IIncDelta int32 // IINC's signed delta

	ArrayType PrimitiveArrayType // NEWARRAY's resolved primitive tag

	Dims uint8 // MULTIANEWARRAY's dimension count

	// TableSwitch
	SwitchDefault int64
	SwitchLow     int32
	SwitchHigh    int32
	SwitchOffsets []int64 // absolute targets, (high-low+1) entries

	// LookupSwitch
	LookupCases []LookupCase
}
