// Package lifter performs per-block symbolic execution over the decoded
// instruction stream, producing AST statements and pushing expression
// trees onto a typed operand stack (spec §4.3 — the ~30%-of-budget core).
package lifter

import (
	"sort"

	"jclift/internal/ast"
	"jclift/internal/bytecode"
	"jclift/internal/cfg"
	"jclift/internal/classfile"
	jerrors "jclift/internal/errors"
)

// LiftBlock converts one basic block's instruction slice into a list of
// AST statements, modelling the operand stack symbolically. The stack
// must be empty at block end, or LiftBlock fails with a *errors.LiftError
// (spec §4.3's block post-condition; see DESIGN.md for the cross-block
// extension point this deliberately doesn't implement).
func LiftBlock(b *cfg.Block, pool *classfile.ConstantPool) ([]ast.Stmt, error) {
	s := &stack{}
	var stmts []ast.Stmt

	for _, e := range b.Instructions {
		s.offset = e.Offset
		stmt, err := step(s, e, pool)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}

	if s.len() != 0 {
		return nil, jerrors.NewStackNotEmptyError(b.Entry, s.len())
	}
	return stmts, nil
}

// MethodResult is one method's lifted-AST-per-block output, keyed by
// block entry offset, or the error that stopped the lift.
type MethodResult struct {
	Blocks map[int64][]ast.Stmt
	CFG    *cfg.Graph
	Err    error
}

// LiftMethod is the convenience wrapper spec §4.4 names: decode, build
// the CFG, and lift every block of one method's Code attribute. Every
// block is attempted independently, so one block's failure does not stop
// the rest from lifting into Blocks; blocks are visited in ascending
// entry-offset order (not Go map order) so that when more than one block
// fails, Err is deterministically the first one by offset. The method as
// a whole is still considered failed whenever any block fails (spec §7:
// "fatal for the enclosing method; other methods in the class still
// lift").
func LiftMethod(code *classfile.Code, pool *classfile.ConstantPool) MethodResult {
	seq, err := bytecode.Decode(code.Bytes)
	if err != nil {
		return MethodResult{Err: err}
	}
	graph := cfg.Build(seq, code.Exceptions)

	offsets := make([]int64, 0, len(graph.Blocks))
	for offset := range graph.Blocks {
		offsets = append(offsets, offset)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	blocks := make(map[int64][]ast.Stmt, len(graph.Blocks))
	var firstErr error
	for _, offset := range offsets {
		stmts, err := LiftBlock(graph.Blocks[offset], pool)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		blocks[offset] = stmts
	}
	return MethodResult{Blocks: blocks, CFG: graph, Err: firstErr}
}

// step lifts one instruction against the symbolic stack, returning the
// statement it emits (if any — most instructions only push an expression
// and emit nothing).
func step(s *stack, e bytecode.Entry, pool *classfile.ConstantPool) (ast.Stmt, error) {
	ins := e.Instr
	switch ins.Op {

	// ---- Constants ----
	case bytecode.OpAConstNull:
		s.push(ast.NullConst{})
	case bytecode.OpIConst, bytecode.OpBIPush, bytecode.OpSIPush:
		s.push(ast.IntConst{Value: ins.IntImm})
	case bytecode.OpLConst:
		s.push(ast.LongConst{Value: int64(ins.IntImm)})
	case bytecode.OpFConst:
		s.push(ast.FloatConst{Value: float32(ins.IntImm)})
	case bytecode.OpDConst:
		s.push(ast.DoubleConst{Value: float64(ins.IntImm)})
	case bytecode.OpLdc:
		return nil, liftLdc(s, ins, pool, e.Offset)

	// ---- Loads ----
	case bytecode.OpILoad:
		s.push(ast.Variable{Index: ins.Index, Type: classfile.KindInt})
	case bytecode.OpLLoad:
		s.push(ast.Variable{Index: ins.Index, Type: classfile.KindLong})
	case bytecode.OpFLoad:
		s.push(ast.Variable{Index: ins.Index, Type: classfile.KindFloat})
	case bytecode.OpDLoad:
		s.push(ast.Variable{Index: ins.Index, Type: classfile.KindDouble})
	case bytecode.OpALoad:
		s.push(ast.Variable{Index: ins.Index, Type: classfile.KindClass})

	// ---- Stores ----
	case bytecode.OpIStore, bytecode.OpLStore, bytecode.OpFStore, bytecode.OpDStore, bytecode.OpAStore:
		v, err := s.pop()
		if err != nil {
			return nil, err
		}
		return ast.Set{Index: ins.Index, Value: v}, nil

	// ---- Array loads ----
	case bytecode.OpIALoad, bytecode.OpLALoad, bytecode.OpFALoad, bytecode.OpDALoad,
		bytecode.OpAALoad, bytecode.OpBALoad, bytecode.OpCALoad, bytecode.OpSALoad:
		idx, err := s.pop()
		if err != nil {
			return nil, err
		}
		arr, err := s.pop()
		if err != nil {
			return nil, err
		}
		s.push(ast.ArrayLoad{Array: arr, Index: idx, ElemType: arrayLoadElemType(ins.Op)})

	// ---- Array stores ----
	case bytecode.OpIAStore, bytecode.OpLAStore, bytecode.OpFAStore, bytecode.OpDAStore,
		bytecode.OpAAStore, bytecode.OpBAStore, bytecode.OpCAStore, bytecode.OpSAStore:
		val, err := s.pop()
		if err != nil {
			return nil, err
		}
		idx, err := s.pop()
		if err != nil {
			return nil, err
		}
		arr, err := s.pop()
		if err != nil {
			return nil, err
		}
		return ast.ArrayStore{Array: arr, Index: idx, Value: val, ElemType: arrayStoreElemType(ins.Op)}, nil

	// ---- Stack manipulation ----
	case bytecode.OpPop:
		_, err := s.pop()
		return nil, err
	case bytecode.OpPop2:
		return nil, liftPop2(s)
	case bytecode.OpDup:
		v, err := s.pop()
		if err != nil {
			return nil, err
		}
		s.push(v)
		s.push(v)
	case bytecode.OpDupX1:
		return nil, liftDupX1(s)
	case bytecode.OpDupX2:
		return nil, liftDupX2(s)
	case bytecode.OpDup2:
		return nil, liftDup2(s)
	case bytecode.OpDup2X1:
		return nil, liftDup2X1(s)
	case bytecode.OpDup2X2:
		return nil, liftDup2X2(s)
	case bytecode.OpSwap:
		a, err := s.pop()
		if err != nil {
			return nil, err
		}
		b, err := s.pop()
		if err != nil {
			return nil, err
		}
		s.push(a)
		s.push(b)

	// ---- Arithmetic ----
	case bytecode.OpIAdd, bytecode.OpLAdd, bytecode.OpFAdd, bytecode.OpDAdd,
		bytecode.OpISub, bytecode.OpLSub, bytecode.OpFSub, bytecode.OpDSub,
		bytecode.OpIMul, bytecode.OpLMul, bytecode.OpFMul, bytecode.OpDMul,
		bytecode.OpIDiv, bytecode.OpLDiv, bytecode.OpFDiv, bytecode.OpDDiv,
		bytecode.OpIRem, bytecode.OpLRem, bytecode.OpFRem, bytecode.OpDRem,
		bytecode.OpIAnd, bytecode.OpLAnd, bytecode.OpIOr, bytecode.OpLOr,
		bytecode.OpIXor, bytecode.OpLXor, bytecode.OpIShl, bytecode.OpLShl,
		bytecode.OpIShr, bytecode.OpLShr, bytecode.OpIUShr, bytecode.OpLUShr:
		right, err := s.pop() // top of stack is the right-hand operand (spec §4.3)
		if err != nil {
			return nil, err
		}
		left, err := s.pop()
		if err != nil {
			return nil, err
		}
		op, typ := binOpFor(ins.Op)
		s.push(ast.Binary{Op: op, Left: left, Right: right, Type: typ})

	case bytecode.OpINeg, bytecode.OpLNeg, bytecode.OpFNeg, bytecode.OpDNeg:
		v, err := s.pop()
		if err != nil {
			return nil, err
		}
		s.push(ast.Negate{Value: v, Type: negateType(ins.Op)})

	// ---- Comparisons ----
	case bytecode.OpFCmpL, bytecode.OpDCmpL:
		right, err := s.pop()
		if err != nil {
			return nil, err
		}
		left, err := s.pop()
		if err != nil {
			return nil, err
		}
		s.push(ast.Comparison{Order: ast.OrderingLess, Left: left, Right: right})
	case bytecode.OpFCmpG, bytecode.OpDCmpG:
		right, err := s.pop()
		if err != nil {
			return nil, err
		}
		left, err := s.pop()
		if err != nil {
			return nil, err
		}
		s.push(ast.Comparison{Order: ast.OrderingGreater, Left: left, Right: right})
	case bytecode.OpLCmp:
		right, err := s.pop()
		if err != nil {
			return nil, err
		}
		left, err := s.pop()
		if err != nil {
			return nil, err
		}
		s.push(ast.SignedComparison{Left: left, Right: right})

	// ---- Conversions ----
	case bytecode.OpI2L, bytecode.OpI2F, bytecode.OpI2D, bytecode.OpL2I, bytecode.OpL2F, bytecode.OpL2D,
		bytecode.OpF2I, bytecode.OpF2L, bytecode.OpF2D, bytecode.OpD2I, bytecode.OpD2L, bytecode.OpD2F,
		bytecode.OpI2B, bytecode.OpI2C, bytecode.OpI2S:
		v, err := s.pop()
		if err != nil {
			return nil, err
		}
		s.push(ast.PrimitiveCast{Value: v, Target: conversionTarget(ins.Op)})

	// ---- Reference ops ----
	case bytecode.OpCheckCast:
		v, err := s.pop()
		if err != nil {
			return nil, err
		}
		cp, err := pool.GetClassPath(ins.PoolIndex)
		if err != nil {
			return nil, err
		}
		s.push(ast.ClassCast{Value: v, Class: cp})
	case bytecode.OpInstanceOf:
		v, err := s.pop()
		if err != nil {
			return nil, err
		}
		cp, err := pool.GetClassPath(ins.PoolIndex)
		if err != nil {
			return nil, err
		}
		s.push(ast.InstanceOf{Value: v, Class: cp})
	case bytecode.OpNew:
		cp, err := pool.GetClassPath(ins.PoolIndex)
		if err != nil {
			return nil, err
		}
		s.push(ast.New{Class: cp})
	case bytecode.OpANewArray:
		count, err := s.pop()
		if err != nil {
			return nil, err
		}
		cp, err := pool.GetClassPath(ins.PoolIndex)
		if err != nil {
			return nil, err
		}
		elem := classfile.Descriptor{Kind: classfile.KindClass, Class: cp}
		s.push(ast.NewArrayMulti{Type: classfile.Descriptor{Kind: classfile.KindArray, ArrayDims: 1, ArrayElem: &elem}, Dims: []ast.Expr{count}})
	case bytecode.OpNewArray:
		count, err := s.pop()
		if err != nil {
			return nil, err
		}
		s.push(ast.NewArrayPrim{Elem: newArrayElemKind(ins.ArrayType), Count: count})
	case bytecode.OpMultiANewArray:
		dims, err := s.popN(int(ins.Dims))
		if err != nil {
			return nil, err
		}
		c, err := pool.Get(ins.PoolIndex)
		if err != nil {
			return nil, err
		}
		if c.Tag != classfile.TagClass {
			return nil, jerrors.NewLiftError(e.Offset, "MULTIANEWARRAY pool entry is not a Class constant")
		}
		descStr, err := pool.GetUtf8(c.ClassNameIndex)
		if err != nil {
			return nil, err
		}
		s.push(ast.NewArrayMulti{Type: classfile.ParseDescriptor(descStr), Dims: dims})
	case bytecode.OpArrayLength:
		v, err := s.pop()
		if err != nil {
			return nil, err
		}
		s.push(ast.ArrayLength{Array: v})

	// ---- Field / static access ----
	case bytecode.OpGetField:
		recv, err := s.pop()
		if err != nil {
			return nil, err
		}
		ref, err := pool.GetMemberRef(ins.PoolIndex)
		if err != nil {
			return nil, err
		}
		s.push(ast.FieldGet{Receiver: recv, Owner: ref.Class, Name: ref.Name, Type: ref.Descriptor})
	case bytecode.OpPutField:
		val, err := s.pop()
		if err != nil {
			return nil, err
		}
		recv, err := s.pop()
		if err != nil {
			return nil, err
		}
		ref, err := pool.GetMemberRef(ins.PoolIndex)
		if err != nil {
			return nil, err
		}
		return ast.FieldSet{Receiver: recv, Owner: ref.Class, Name: ref.Name, Type: ref.Descriptor, Value: val}, nil
	case bytecode.OpGetStatic:
		ref, err := pool.GetMemberRef(ins.PoolIndex)
		if err != nil {
			return nil, err
		}
		s.push(ast.StaticGet{Owner: ref.Class, Name: ref.Name, Type: ref.Descriptor})
	case bytecode.OpPutStatic:
		val, err := s.pop()
		if err != nil {
			return nil, err
		}
		ref, err := pool.GetMemberRef(ins.PoolIndex)
		if err != nil {
			return nil, err
		}
		return ast.StaticSet{Owner: ref.Class, Name: ref.Name, Type: ref.Descriptor, Value: val}, nil

	// ---- Invocation ----
	case bytecode.OpInvokeStatic:
		return liftInvoke(s, ins, pool, ast.InvokeStatic, false, e.Offset)
	case bytecode.OpInvokeVirtual:
		return liftInvoke(s, ins, pool, ast.InvokeVirtual, true, e.Offset)
	case bytecode.OpInvokeSpecial:
		return liftInvoke(s, ins, pool, ast.InvokeSpecial, true, e.Offset)
	case bytecode.OpInvokeInterface:
		return liftInvoke(s, ins, pool, ast.InvokeInterface, true, e.Offset)
	case bytecode.OpInvokeDynamic:
		return nil, jerrors.NewUnsupportedOpcodeError(e.Offset, "invokedynamic")

	// ---- Returns ----
	case bytecode.OpReturn:
		return ast.Return{}, nil
	case bytecode.OpIReturn, bytecode.OpLReturn, bytecode.OpFReturn, bytecode.OpDReturn, bytecode.OpAReturn:
		v, err := s.pop()
		if err != nil {
			return nil, err
		}
		return ast.Return{Value: v}, nil

	// ---- Monitor ----
	case bytecode.OpMonitorEnter:
		v, err := s.pop()
		if err != nil {
			return nil, err
		}
		return ast.MonitorEnter{Value: v}, nil
	case bytecode.OpMonitorExit:
		v, err := s.pop()
		if err != nil {
			return nil, err
		}
		return ast.MonitorExit{Value: v}, nil

	case bytecode.OpAThrow:
		v, err := s.pop()
		if err != nil {
			return nil, err
		}
		return ast.Throw{Value: v}, nil

	case bytecode.OpIInc:
		return ast.Increment{Index: ins.Index, Delta: ins.IIncDelta}, nil

	// ---- Conditional branches ----
	case bytecode.OpIfEq, bytecode.OpIfNe, bytecode.OpIfLt, bytecode.OpIfGe, bytecode.OpIfGt, bytecode.OpIfLe,
		bytecode.OpIfNull, bytecode.OpIfNonNull:
		v, err := s.pop()
		if err != nil {
			return nil, err
		}
		return ast.IfCmp{Mnemonic: ins.Mnemonic, Operands: []ast.Expr{v}, Target: ins.Target}, nil
	case bytecode.OpIfICmpEq, bytecode.OpIfICmpNe, bytecode.OpIfICmpLt, bytecode.OpIfICmpGe, bytecode.OpIfICmpGt, bytecode.OpIfICmpLe,
		bytecode.OpIfACmpEq, bytecode.OpIfACmpNe:
		right, err := s.pop()
		if err != nil {
			return nil, err
		}
		left, err := s.pop()
		if err != nil {
			return nil, err
		}
		return ast.IfCmp{Mnemonic: ins.Mnemonic, Operands: []ast.Expr{left, right}, Target: ins.Target}, nil

	case bytecode.OpGoto:
		return ast.IfCmp{Mnemonic: "goto", Target: ins.Target}, nil

	case bytecode.OpTableSwitch:
		key, err := s.pop()
		if err != nil {
			return nil, err
		}
		return ast.SwitchTable{Key: key, Default: ins.SwitchDefault, Low: ins.SwitchLow, High: ins.SwitchHigh, Offsets: ins.SwitchOffsets}, nil
	case bytecode.OpLookupSwitch:
		key, err := s.pop()
		if err != nil {
			return nil, err
		}
		cases := make([]ast.SwitchCase, len(ins.LookupCases))
		for i, c := range ins.LookupCases {
			cases[i] = ast.SwitchCase{Key: c.Key, Target: c.Target}
		}
		return ast.SwitchLookup{Key: key, Default: ins.SwitchDefault, Cases: cases}, nil

	case bytecode.OpJsr:
		s.push(ast.JsrReturnAddress{Target: ins.Target})
		return ast.Jsr{Target: ins.Target}, nil
	case bytecode.OpRet:
		return nil, jerrors.NewUnsupportedOpcodeError(e.Offset, "ret")

	case bytecode.OpNop, bytecode.OpBreakpoint:
		// no-op: no stack effect, no statement

	default:
		return nil, jerrors.NewUnsupportedOpcodeError(e.Offset, ins.Mnemonic)
	}

	return nil, nil
}

func liftLdc(s *stack, ins bytecode.Instruction, pool *classfile.ConstantPool, offset int64) error {
	c, err := pool.Get(ins.PoolIndex)
	if err != nil {
		return err
	}
	switch c.Tag {
	case classfile.TagInteger:
		s.push(ast.IntConst{Value: c.Integer})
	case classfile.TagFloat:
		s.push(ast.FloatConst{Value: c.Float})
	case classfile.TagLong:
		s.push(ast.LongConst{Value: c.Long})
	case classfile.TagDouble:
		s.push(ast.DoubleConst{Value: c.Double})
	case classfile.TagString:
		str, err := pool.GetString(ins.PoolIndex)
		if err != nil {
			return err
		}
		s.push(ast.StringConst{Value: str})
	case classfile.TagClass:
		cp, err := pool.GetClassPath(ins.PoolIndex)
		if err != nil {
			return err
		}
		s.push(ast.New{Class: cp}) // class literal; pushed as ast.New, so the emitter renders it as "new X()", not "X.class"
	default:
		return jerrors.NewLiftError(offset, "LDC over unsupported constant kind "+classfile.TagName(c.Tag))
	}
	return nil
}

func liftInvoke(s *stack, ins bytecode.Instruction, pool *classfile.ConstantPool, kind ast.InvokeKind, hasReceiver bool, offset int64) (ast.Stmt, error) {
	ref, err := pool.GetMemberRef(ins.PoolIndex)
	if err != nil {
		return nil, err
	}
	if ref.Descriptor.Kind != classfile.KindMethod {
		return nil, jerrors.NewLiftError(offset, "invoke target does not have a method descriptor")
	}
	args, err := s.popN(len(ref.Descriptor.MethodParams))
	if err != nil {
		return nil, err
	}
	var receiver ast.Expr
	if hasReceiver {
		receiver, err = s.pop()
		if err != nil {
			return nil, err
		}
	}
	inv := ast.Invoke{Kind: kind, Owner: ref.Class, Name: ref.Name, Desc: ref.Descriptor, Receiver: receiver, Args: args}
	if ref.Descriptor.MethodReturn.Kind == classfile.KindVoid {
		return ast.ExprStmt{Expr: inv}, nil
	}
	s.push(inv)
	return nil, nil
}
