package lifter

import (
	"jclift/internal/ast"
	"jclift/internal/bytecode"
	"jclift/internal/classfile"
)

// binOpFor maps an arithmetic/bitwise opcode to its unified BinOp tag and
// the JVM type family it operates on.
func binOpFor(op bytecode.Op) (ast.BinOp, classfile.DescriptorKind) {
	switch op {
	case bytecode.OpIAdd:
		return ast.OpAdd, classfile.KindInt
	case bytecode.OpLAdd:
		return ast.OpAdd, classfile.KindLong
	case bytecode.OpFAdd:
		return ast.OpAdd, classfile.KindFloat
	case bytecode.OpDAdd:
		return ast.OpAdd, classfile.KindDouble
	case bytecode.OpISub:
		return ast.OpSub, classfile.KindInt
	case bytecode.OpLSub:
		return ast.OpSub, classfile.KindLong
	case bytecode.OpFSub:
		return ast.OpSub, classfile.KindFloat
	case bytecode.OpDSub:
		return ast.OpSub, classfile.KindDouble
	case bytecode.OpIMul:
		return ast.OpMul, classfile.KindInt
	case bytecode.OpLMul:
		return ast.OpMul, classfile.KindLong
	case bytecode.OpFMul:
		return ast.OpMul, classfile.KindFloat
	case bytecode.OpDMul:
		return ast.OpMul, classfile.KindDouble
	case bytecode.OpIDiv:
		return ast.OpDiv, classfile.KindInt
	case bytecode.OpLDiv:
		return ast.OpDiv, classfile.KindLong
	case bytecode.OpFDiv:
		return ast.OpDiv, classfile.KindFloat
	case bytecode.OpDDiv:
		return ast.OpDiv, classfile.KindDouble
	case bytecode.OpIRem:
		return ast.OpRem, classfile.KindInt
	case bytecode.OpLRem:
		return ast.OpRem, classfile.KindLong
	case bytecode.OpFRem:
		return ast.OpRem, classfile.KindFloat
	case bytecode.OpDRem:
		return ast.OpRem, classfile.KindDouble
	case bytecode.OpIAnd:
		return ast.OpAnd, classfile.KindInt
	case bytecode.OpLAnd:
		return ast.OpAnd, classfile.KindLong
	case bytecode.OpIOr:
		return ast.OpOr, classfile.KindInt
	case bytecode.OpLOr:
		return ast.OpOr, classfile.KindLong
	case bytecode.OpIXor:
		return ast.OpXor, classfile.KindInt
	case bytecode.OpLXor:
		return ast.OpXor, classfile.KindLong
	case bytecode.OpIShl:
		return ast.OpShL, classfile.KindInt
	case bytecode.OpLShl:
		return ast.OpShL, classfile.KindLong
	case bytecode.OpIShr:
		return ast.OpShR, classfile.KindInt
	case bytecode.OpLShr:
		return ast.OpShR, classfile.KindLong
	case bytecode.OpIUShr:
		return ast.OpUShR, classfile.KindInt
	case bytecode.OpLUShr:
		return ast.OpUShR, classfile.KindLong
	default:
		return ast.OpAdd, classfile.KindInt // unreachable: caller switch is exhaustive over this set
	}
}

func negateType(op bytecode.Op) classfile.DescriptorKind {
	switch op {
	case bytecode.OpLNeg:
		return classfile.KindLong
	case bytecode.OpFNeg:
		return classfile.KindFloat
	case bytecode.OpDNeg:
		return classfile.KindDouble
	default:
		return classfile.KindInt
	}
}

// conversionTarget maps a conversion opcode to its destination primitive
// kind, per the corrected I2B/I2C/I2S mapping (each narrows to its own
// named type, not the historical mis-mapping to float).
func conversionTarget(op bytecode.Op) classfile.DescriptorKind {
	switch op {
	case bytecode.OpI2L, bytecode.OpF2L, bytecode.OpD2L:
		return classfile.KindLong
	case bytecode.OpI2F, bytecode.OpL2F, bytecode.OpD2F:
		return classfile.KindFloat
	case bytecode.OpI2D, bytecode.OpL2D, bytecode.OpF2D:
		return classfile.KindDouble
	case bytecode.OpL2I, bytecode.OpF2I, bytecode.OpD2I:
		return classfile.KindInt
	case bytecode.OpI2B:
		return classfile.KindByte
	case bytecode.OpI2C:
		return classfile.KindChar
	case bytecode.OpI2S:
		return classfile.KindShort
	default:
		return classfile.KindInt
	}
}

func arrayLoadElemType(op bytecode.Op) classfile.DescriptorKind {
	switch op {
	case bytecode.OpIALoad:
		return classfile.KindInt
	case bytecode.OpLALoad:
		return classfile.KindLong
	case bytecode.OpFALoad:
		return classfile.KindFloat
	case bytecode.OpDALoad:
		return classfile.KindDouble
	case bytecode.OpAALoad:
		return classfile.KindClass
	case bytecode.OpBALoad:
		return classfile.KindByte
	case bytecode.OpCALoad:
		return classfile.KindChar
	case bytecode.OpSALoad:
		return classfile.KindShort
	default:
		return classfile.KindInt
	}
}

func arrayStoreElemType(op bytecode.Op) classfile.DescriptorKind {
	switch op {
	case bytecode.OpIAStore:
		return classfile.KindInt
	case bytecode.OpLAStore:
		return classfile.KindLong
	case bytecode.OpFAStore:
		return classfile.KindFloat
	case bytecode.OpDAStore:
		return classfile.KindDouble
	case bytecode.OpAAStore:
		return classfile.KindClass
	case bytecode.OpBAStore:
		return classfile.KindByte
	case bytecode.OpCAStore:
		return classfile.KindChar
	case bytecode.OpSAStore:
		return classfile.KindShort
	default:
		return classfile.KindInt
	}
}

func newArrayElemKind(t bytecode.PrimitiveArrayType) classfile.DescriptorKind {
	switch t {
	case bytecode.ArrayBoolean:
		return classfile.KindBoolean
	case bytecode.ArrayChar:
		return classfile.KindChar
	case bytecode.ArrayFloat:
		return classfile.KindFloat
	case bytecode.ArrayDouble:
		return classfile.KindDouble
	case bytecode.ArrayByte:
		return classfile.KindByte
	case bytecode.ArrayShort:
		return classfile.KindShort
	case bytecode.ArrayInt:
		return classfile.KindInt
	case bytecode.ArrayLong:
		return classfile.KindLong
	default:
		return classfile.KindInt
	}
}

// ---- Stack-shuffle family ----
//
// POP2/DUP2 and their _x1/_x2 variants behave differently depending on
// whether the top one or two values are category-2 (long/double); this
// lifter decides that by inspecting the popped expressions' static type
// (isCategory2), per the best-effort rule for symbolic execution.

func liftPop2(s *stack) error {
	v, err := s.pop()
	if err != nil {
		return err
	}
	if isCategory2(v) {
		return nil
	}
	_, err = s.pop()
	return err
}

func liftDupX1(s *stack) error {
	top, err := s.pop()
	if err != nil {
		return err
	}
	below, err := s.pop()
	if err != nil {
		return err
	}
	s.push(top)
	s.push(below)
	s.push(top)
	return nil
}

func liftDupX2(s *stack) error {
	top, err := s.pop()
	if err != nil {
		return err
	}
	second, err := s.pop()
	if err != nil {
		return err
	}
	if isCategory2(second) {
		s.push(top)
		s.push(second)
		s.push(top)
		return nil
	}
	third, err := s.pop()
	if err != nil {
		return err
	}
	s.push(top)
	s.push(third)
	s.push(second)
	s.push(top)
	return nil
}

func liftDup2(s *stack) error {
	top, err := s.pop()
	if err != nil {
		return err
	}
	if isCategory2(top) {
		s.push(top)
		s.push(top)
		return nil
	}
	second, err := s.pop()
	if err != nil {
		return err
	}
	s.push(second)
	s.push(top)
	s.push(second)
	s.push(top)
	return nil
}

func liftDup2X1(s *stack) error {
	top, err := s.pop()
	if err != nil {
		return err
	}
	if isCategory2(top) {
		below, err := s.pop()
		if err != nil {
			return err
		}
		s.push(top)
		s.push(below)
		s.push(top)
		return nil
	}
	second, err := s.pop()
	if err != nil {
		return err
	}
	third, err := s.pop()
	if err != nil {
		return err
	}
	s.push(second)
	s.push(top)
	s.push(third)
	s.push(second)
	s.push(top)
	return nil
}

func liftDup2X2(s *stack) error {
	top, err := s.pop()
	if err != nil {
		return err
	}
	if isCategory2(top) {
		second, err := s.pop()
		if err != nil {
			return err
		}
		if isCategory2(second) {
			s.push(top)
			s.push(second)
			s.push(top)
			return nil
		}
		third, err := s.pop()
		if err != nil {
			return err
		}
		s.push(top)
		s.push(third)
		s.push(second)
		s.push(top)
		return nil
	}
	second, err := s.pop()
	if err != nil {
		return err
	}
	third, err := s.pop()
	if err != nil {
		return err
	}
	if isCategory2(third) {
		s.push(second)
		s.push(top)
		s.push(third)
		s.push(second)
		s.push(top)
		return nil
	}
	fourth, err := s.pop()
	if err != nil {
		return err
	}
	s.push(second)
	s.push(top)
	s.push(fourth)
	s.push(third)
	s.push(second)
	s.push(top)
	return nil
}
