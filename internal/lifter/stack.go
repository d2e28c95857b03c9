package lifter

import (
	"jclift/internal/ast"
	"jclift/internal/classfile"
	jerrors "jclift/internal/errors"
)

// stack is the lifter's per-block symbolic operand stack: a LIFO of AST
// expressions, initially empty at block entry (spec §4.3). It is not
// safe for concurrent use — each block lift call owns its own stack.
type stack struct {
	values []ast.Expr
	offset int64 // current instruction offset, for error context
}

func (s *stack) push(e ast.Expr) { s.values = append(s.values, e) }

func (s *stack) pop() (ast.Expr, error) {
	if len(s.values) == 0 {
		return nil, jerrors.NewStackUnderflowError(s.offset)
	}
	v := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return v, nil
}

// popN pops n values and returns them in original (bottom-to-top) order —
// used for invocation argument lists, where args were pushed left to
// right and must be popped right to left to recover source order
// (spec §4.3 S5: "args popped in reverse push-order").
func (s *stack) popN(n int) ([]ast.Expr, error) {
	out := make([]ast.Expr, n)
	for i := n - 1; i >= 0; i-- {
		v, err := s.pop()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *stack) peek() (ast.Expr, error) {
	if len(s.values) == 0 {
		return nil, jerrors.NewStackUnderflowError(s.offset)
	}
	return s.values[len(s.values)-1], nil
}

func (s *stack) len() int { return len(s.values) }

// isCategory2 reports whether e is a statically-known category-2 value
// (long/double) — used to tell POP/POP2 and DUP/DUP2 apart symbolically,
// per spec §4.3's best-effort rule (inspect the top expression's type).
func isCategory2(e ast.Expr) bool {
	switch v := e.(type) {
	case ast.LongConst:
		return true
	case ast.DoubleConst:
		return true
	case ast.Variable:
		return v.Type == classfile.KindLong || v.Type == classfile.KindDouble
	case ast.Binary:
		return v.Type == classfile.KindLong || v.Type == classfile.KindDouble
	case ast.FieldGet:
		return isCategory2Descriptor(v.Type)
	case ast.StaticGet:
		return isCategory2Descriptor(v.Type)
	case ast.ArrayLoad:
		return v.ElemType == classfile.KindLong || v.ElemType == classfile.KindDouble
	case ast.Invoke:
		if v.Desc.MethodReturn != nil {
			return isCategory2Descriptor(*v.Desc.MethodReturn)
		}
		return false
	default:
		return false
	}
}

func isCategory2Descriptor(d classfile.Descriptor) bool {
	return d.Kind == classfile.KindLong || d.Kind == classfile.KindDouble
}
