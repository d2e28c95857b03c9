package lifter

import (
	"reflect"
	"strings"
	"testing"

	"github.com/kr/pretty"

	"jclift/internal/ast"
	"jclift/internal/bytecode"
	"jclift/internal/cfg"
	"jclift/internal/classfile"
)

// assertStmtsEqual renders a field-by-field diff via kr/pretty on
// mismatch, instead of a single opaque %#v dump of the whole slice.
func assertStmtsEqual(t *testing.T, got, want []ast.Stmt) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("lifted statements differ:\n%s", strings.Join(pretty.Diff(want, got), "\n"))
	}
}

func decodeAndBuild(t *testing.T, code []byte) *cfg.Graph {
	t.Helper()
	seq, err := bytecode.Decode(code)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return cfg.Build(seq, nil)
}

// TestLiftIConstReturn is scenario S1: ICONST_1, IRETURN lifts to a single
// Return statement wrapping an IntConst.
func TestLiftIConstReturn(t *testing.T) {
	g := decodeAndBuild(t, []byte{0x04, 0xac})
	stmts, err := LiftBlock(g.Blocks[0], nil)
	if err != nil {
		t.Fatalf("LiftBlock: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("len(stmts) = %d, want 1", len(stmts))
	}
	ret, ok := stmts[0].(ast.Return)
	if !ok {
		t.Fatalf("stmts[0] = %T, want ast.Return", stmts[0])
	}
	ic, ok := ret.Value.(ast.IntConst)
	if !ok || ic.Value != 1 {
		t.Errorf("Return.Value = %#v, want IntConst{1}", ret.Value)
	}
}

// TestLiftIConstReturnWhole asserts the entire lifted statement slice in
// one shot, via assertStmtsEqual, rather than unwrapping each field.
func TestLiftIConstReturnWhole(t *testing.T) {
	g := decodeAndBuild(t, []byte{0x04, 0xac})
	stmts, err := LiftBlock(g.Blocks[0], nil)
	if err != nil {
		t.Fatalf("LiftBlock: %v", err)
	}
	want := []ast.Stmt{ast.Return{Value: ast.IntConst{Value: 1}}}
	assertStmtsEqual(t, stmts, want)
}

// TestLiftIAdd is scenario S2: ILOAD_0, ILOAD_1, IADD, IRETURN lifts to
// Return(Binary{Add, Variable(0), Variable(1)}).
func TestLiftIAdd(t *testing.T) {
	g := decodeAndBuild(t, []byte{0x1a, 0x1b, 0x60, 0xac})
	stmts, err := LiftBlock(g.Blocks[0], nil)
	if err != nil {
		t.Fatalf("LiftBlock: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("len(stmts) = %d, want 1", len(stmts))
	}
	ret, ok := stmts[0].(ast.Return)
	if !ok {
		t.Fatalf("stmts[0] = %T, want ast.Return", stmts[0])
	}
	bin, ok := ret.Value.(ast.Binary)
	if !ok {
		t.Fatalf("Return.Value = %T, want ast.Binary", ret.Value)
	}
	if bin.Op != ast.OpAdd {
		t.Errorf("bin.Op = %v, want OpAdd", bin.Op)
	}
	left, ok := bin.Left.(ast.Variable)
	if !ok || left.Index != 0 {
		t.Errorf("bin.Left = %#v, want Variable{Index:0}", bin.Left)
	}
	right, ok := bin.Right.(ast.Variable)
	if !ok || right.Index != 1 {
		t.Errorf("bin.Right = %#v, want Variable{Index:1}", bin.Right)
	}
}

// TestLiftBranch is scenarios S3/S4: ILOAD_0, IFLT +5, ICONST_1, IRETURN,
// ICONST_2, IRETURN. The IFLT opcode sits at offset 1, so its absolute
// target is 1+5 = 6. Block 0 lifts to a single IfCmp statement over
// Variable(0) targeting offset 6; blocks 4 and 6 each lift to a Return.
func TestLiftBranch(t *testing.T) {
	g := decodeAndBuild(t, []byte{0x1a, 0x9b, 0x00, 0x05, 0x04, 0xac, 0x05, 0xac})

	stmts0, err := LiftBlock(g.Blocks[0], nil)
	if err != nil {
		t.Fatalf("LiftBlock(0): %v", err)
	}
	if len(stmts0) != 1 {
		t.Fatalf("len(stmts0) = %d, want 1", len(stmts0))
	}
	ifc, ok := stmts0[0].(ast.IfCmp)
	if !ok {
		t.Fatalf("stmts0[0] = %T, want ast.IfCmp", stmts0[0])
	}
	if ifc.Target != 6 {
		t.Errorf("ifc.Target = %d, want 6", ifc.Target)
	}
	if len(ifc.Operands) != 1 {
		t.Fatalf("len(ifc.Operands) = %d, want 1", len(ifc.Operands))
	}
	if v, ok := ifc.Operands[0].(ast.Variable); !ok || v.Index != 0 {
		t.Errorf("ifc.Operands[0] = %#v, want Variable{Index:0}", ifc.Operands[0])
	}

	stmts4, err := LiftBlock(g.Blocks[4], nil)
	if err != nil {
		t.Fatalf("LiftBlock(4): %v", err)
	}
	if len(stmts4) != 1 {
		t.Fatalf("len(stmts4) = %d, want 1", len(stmts4))
	}
	if ret, ok := stmts4[0].(ast.Return); !ok {
		t.Fatalf("stmts4[0] = %T, want ast.Return", stmts4[0])
	} else if ic, ok := ret.Value.(ast.IntConst); !ok || ic.Value != 1 {
		t.Errorf("block 4 Return.Value = %#v, want IntConst{1}", ret.Value)
	}

	stmts6, err := LiftBlock(g.Blocks[6], nil)
	if err != nil {
		t.Fatalf("LiftBlock(6): %v", err)
	}
	if ret, ok := stmts6[0].(ast.Return); !ok {
		t.Fatalf("stmts6[0] = %T, want ast.Return", stmts6[0])
	} else if ic, ok := ret.Value.(ast.IntConst); !ok || ic.Value != 2 {
		t.Errorf("block 6 Return.Value = %#v, want IntConst{2}", ret.Value)
	}
}

// buildWirePool is shared test scaffolding for hand-encoding a minimal
// constant pool; mirrors the classfile package's own test helper.
func buildWirePool(t *testing.T, entries func(add func(tag byte, payload []byte))) *classfile.ConstantPool {
	t.Helper()
	var raw []byte
	count := 1
	entries(func(tag byte, payload []byte) {
		raw = append(raw, tag)
		raw = append(raw, payload...)
		count++
	})
	buf := make([]byte, 0, len(raw)+2)
	buf = append(buf, byte(count>>8), byte(count))
	buf = append(buf, raw...)
	r := classfile.NewReader(buf)
	pool, err := classfile.ParseConstantPool(r)
	if err != nil {
		t.Fatalf("ParseConstantPool: %v", err)
	}
	return pool
}

func u2(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }

// TestLiftInvokeArgOrder is scenario S5: invokestatic with two int
// arguments recovers them in left-to-right source order despite being
// popped right-to-left off the stack.
func TestLiftInvokeArgOrder(t *testing.T) {
	pool := buildWirePool(t, func(add func(tag byte, payload []byte)) {
		add(classfile.TagUtf8, append(u2(7), []byte("pkg/Foo")...))     // 1
		add(classfile.TagClass, u2(1))                                  // 2
		add(classfile.TagUtf8, append(u2(3), []byte("add")...))         // 3
		add(classfile.TagUtf8, append(u2(4), []byte("(II)I")...))       // 4
		add(classfile.TagNameAndType, append(u2(3), u2(4)...))          // 5
		add(classfile.TagMethodRef, append(u2(2), u2(5)...))            // 6
	})

	code := []byte{
		0x10, 0x01, // bipush 1
		0x10, 0x02, // bipush 2
		0xb8, 0x00, 0x06, // invokestatic #6
		0xac, // ireturn
	}
	g := decodeAndBuild(t, code)
	stmts, err := LiftBlock(g.Blocks[0], pool)
	if err != nil {
		t.Fatalf("LiftBlock: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("len(stmts) = %d, want 1", len(stmts))
	}
	ret, ok := stmts[0].(ast.Return)
	if !ok {
		t.Fatalf("stmts[0] = %T, want ast.Return", stmts[0])
	}
	inv, ok := ret.Value.(ast.Invoke)
	if !ok {
		t.Fatalf("ret.Value = %T, want ast.Invoke", ret.Value)
	}
	if inv.Name != "add" {
		t.Errorf("inv.Name = %q, want add", inv.Name)
	}
	if len(inv.Args) != 2 {
		t.Fatalf("len(inv.Args) = %d, want 2", len(inv.Args))
	}
	a0, ok0 := inv.Args[0].(ast.IntConst)
	a1, ok1 := inv.Args[1].(ast.IntConst)
	if !ok0 || !ok1 || a0.Value != 1 || a1.Value != 2 {
		t.Errorf("inv.Args = %#v, want [IntConst{1} IntConst{2}]", inv.Args)
	}
}

// TestLiftStackNotEmptyAtBlockEnd checks the block post-condition: a
// dangling pushed value with no corresponding pop/store fails the lift.
func TestLiftStackNotEmptyAtBlockEnd(t *testing.T) {
	g := decodeAndBuild(t, []byte{0x04, 0x04, 0xac}) // iconst_1, iconst_1, ireturn
	_, err := LiftBlock(g.Blocks[0], nil)
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
}

// TestLiftPop2Category1 checks POP2 pops two category-1 values.
func TestLiftPop2Category1(t *testing.T) {
	g := decodeAndBuild(t, []byte{0x04, 0x05, 0x58, 0xb1}) // iconst_1, iconst_2, pop2, return
	stmts, err := LiftBlock(g.Blocks[0], nil)
	if err != nil {
		t.Fatalf("LiftBlock: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("len(stmts) = %d, want 1", len(stmts))
	}
	if _, ok := stmts[0].(ast.Return); !ok {
		t.Fatalf("stmts[0] = %T, want ast.Return", stmts[0])
	}
}

// TestLiftPop2Category2 checks POP2 pops a single category-2 (long) value.
func TestLiftPop2Category2(t *testing.T) {
	g := decodeAndBuild(t, []byte{0x09, 0x58, 0xb1}) // lconst_0, pop2, return
	stmts, err := LiftBlock(g.Blocks[0], nil)
	if err != nil {
		t.Fatalf("LiftBlock: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("len(stmts) = %d, want 1", len(stmts))
	}
}
