package bytecode

import "testing"

// TestDecodeIConstReturn is scenario S1: ICONST_1, IRETURN.
func TestDecodeIConstReturn(t *testing.T) {
	seq, err := Decode([]byte{0x04, 0xac})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(seq) != 2 {
		t.Fatalf("len(seq) = %d, want 2", len(seq))
	}
	if seq[0].Instr.Op != OpIConst || seq[0].Instr.IntImm != 1 {
		t.Errorf("seq[0] = %+v, want IConst(1)", seq[0].Instr)
	}
	if seq[1].Instr.Op != OpIReturn {
		t.Errorf("seq[1].Op = %v, want OpIReturn", seq[1].Instr.Op)
	}
}

// TestDecodeIAdd is scenario S2: ILOAD_0, ILOAD_1, IADD, IRETURN.
func TestDecodeIAdd(t *testing.T) {
	seq, err := Decode([]byte{0x1a, 0x1b, 0x60, 0xac})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := []Op{OpILoad, OpILoad, OpIAdd, OpIReturn}
	if len(seq) != len(want) {
		t.Fatalf("len(seq) = %d, want %d", len(seq), len(want))
	}
	for i, op := range want {
		if seq[i].Instr.Op != op {
			t.Errorf("seq[%d].Op = %v, want %v", i, seq[i].Instr.Op, op)
		}
	}
	if seq[0].Instr.Index != 0 || seq[1].Instr.Index != 1 {
		t.Errorf("ILOAD indices = %d,%d, want 0,1", seq[0].Instr.Index, seq[1].Instr.Index)
	}
}

// TestDecodeBranchAbsoluteTarget is scenarios S3/S4: ILOAD_0, IFLT +5,
// ICONST_1, IRETURN, ICONST_2, IRETURN. The IFLT opcode sits at offset 1
// and its signed operand is +5, so the target must resolve to the
// absolute offset 6 (opcode offset + operand), not the raw operand value.
func TestDecodeBranchAbsoluteTarget(t *testing.T) {
	code := []byte{0x1a, 0x9b, 0x00, 0x05, 0x04, 0xac, 0x05, 0xac}
	seq, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	offsets := []int64{0, 1, 4, 5, 6, 7}
	if len(seq) != len(offsets) {
		t.Fatalf("len(seq) = %d, want %d", len(seq), len(offsets))
	}
	for i, off := range offsets {
		if seq[i].Offset != off {
			t.Errorf("seq[%d].Offset = %d, want %d", i, seq[i].Offset, off)
		}
	}
	iflt := seq[1].Instr
	if iflt.Op != OpIfLt {
		t.Fatalf("seq[1].Op = %v, want OpIfLt", iflt.Op)
	}
	if iflt.Target != 6 {
		t.Errorf("IFLT target = %d, want absolute offset 6 (opcode offset 1 + operand 5)", iflt.Target)
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	_, err := Decode([]byte{0xfe}) // unassigned opcode byte
	if err == nil {
		t.Fatal("expected an error for an unknown opcode")
	}
}

// TestInvariantOffsetContiguity checks invariant 1: offset(i) + size(i) ==
// offset(next), by construction (the decoder advances the cursor by
// exactly what it consumed).
func TestInvariantOffsetContiguity(t *testing.T) {
	code := []byte{
		0x10, 0x05, // bipush 5
		0x3c,       // istore_1
		0x15, 0x01, // iload 1 (explicit form, not the short one)
		0xac, // ireturn
	}
	seq, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for i := 0; i < len(seq)-1; i++ {
		if seq[i].Offset >= seq[i+1].Offset {
			t.Errorf("offsets not strictly increasing at %d: %d >= %d", i, seq[i].Offset, seq[i+1].Offset)
		}
	}
	last := seq[len(seq)-1]
	if last.Offset != int64(len(code)-1) {
		t.Errorf("last instruction offset = %d, want %d", last.Offset, len(code)-1)
	}
}

func TestDecodeWideIincAndLoad(t *testing.T) {
	// wide iinc 300, 2 ; wide iload 300
	code := []byte{
		0xc4, 0x84, 0x01, 0x2c, 0x00, 0x02,
		0xc4, 0x15, 0x01, 0x2c,
	}
	seq, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if seq[0].Instr.Op != OpIInc || seq[0].Instr.Index != 300 || seq[0].Instr.IIncDelta != 2 {
		t.Errorf("wide iinc = %+v", seq[0].Instr)
	}
	if seq[1].Instr.Op != OpILoad || seq[1].Instr.Index != 300 {
		t.Errorf("wide iload = %+v", seq[1].Instr)
	}
}

func TestDecodeTableSwitchAlignment(t *testing.T) {
	// tableswitch at offset 1 (after a 1-byte nop), needs 2 padding bytes
	// to reach the next multiple of 4 (offset 4).
	code := []byte{
		0x00,                   // nop @0
		0xaa,                   // tableswitch @1
		0x00, 0x00,             // padding to offset 4
		0x00, 0x00, 0x00, 20, // default -> 20
		0x00, 0x00, 0x00, 0, // low = 0
		0x00, 0x00, 0x00, 1, // high = 1
		0x00, 0x00, 0x00, 30, // offsets[0] -> 30
		0x00, 0x00, 0x00, 40, // offsets[1] -> 40
	}
	seq, err := Decode(code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	ts := seq[1].Instr
	if ts.Op != OpTableSwitch {
		t.Fatalf("Op = %v, want OpTableSwitch", ts.Op)
	}
	if ts.SwitchDefault != 1+20 {
		t.Errorf("default = %d, want %d", ts.SwitchDefault, 1+20)
	}
	if len(ts.SwitchOffsets) != 2 || ts.SwitchOffsets[0] != 1+30 || ts.SwitchOffsets[1] != 1+40 {
		t.Errorf("offsets = %v", ts.SwitchOffsets)
	}
}
