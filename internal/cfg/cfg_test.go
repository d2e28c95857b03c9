package cfg

import (
	"testing"

	"jclift/internal/bytecode"
)

// TestBuildBranch is scenario S3: ILOAD_0, IFLT +5, ICONST_1, IRETURN,
// ICONST_2, IRETURN at offsets 0..7. The IFLT opcode sits at offset 1, so
// its absolute target is 1+5 = 6. Three blocks at 0, 4, 6; block 0's
// successors are [6, 4] (true branch before fallthrough).
func TestBuildBranch(t *testing.T) {
	code := []byte{0x1a, 0x9b, 0x00, 0x05, 0x04, 0xac, 0x05, 0xac}
	seq, err := bytecode.Decode(code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	g := Build(seq, nil)

	for _, off := range []int64{0, 4, 6} {
		if _, ok := g.Blocks[off]; !ok {
			t.Errorf("missing block at offset %d", off)
		}
	}
	if len(g.Blocks) != 3 {
		t.Fatalf("len(Blocks) = %d, want 3", len(g.Blocks))
	}
	b0 := g.Blocks[0]
	if len(b0.Successors) != 2 || b0.Successors[0] != 6 || b0.Successors[1] != 4 {
		t.Errorf("block 0 successors = %v, want [6 4]", b0.Successors)
	}
	b4 := g.Blocks[4]
	if len(b4.Successors) != 0 {
		t.Errorf("block 4 (ends in ireturn) successors = %v, want none", b4.Successors)
	}
	b6 := g.Blocks[6]
	if len(b6.Successors) != 0 {
		t.Errorf("block 6 (ends in ireturn) successors = %v, want none", b6.Successors)
	}
}

// TestInvariantSuccessorsAreBlockEntries checks invariant 3: every
// successor of a block with successors is itself a block entry offset.
func TestInvariantSuccessorsAreBlockEntries(t *testing.T) {
	simple := []byte{0x1a, 0x9b, 0x00, 0x05, 0x04, 0xac, 0x05, 0xac}
	seq, err := bytecode.Decode(simple)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	g := Build(seq, nil)
	for entry, b := range g.Blocks {
		for _, succ := range b.Successors {
			if _, ok := g.Blocks[succ]; !ok {
				t.Errorf("block %d has successor %d which is not a block entry", entry, succ)
			}
		}
	}
}
