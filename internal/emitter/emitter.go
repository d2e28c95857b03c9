// Package emitter renders lifted AST back to readable, Java-like pseudo
// source (spec §4.4): a best-effort pretty printer, not a recompiler.
package emitter

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"jclift/internal/ast"
	"jclift/internal/classfile"
	"jclift/internal/lifter"
)

// color codes, used only when the destination is a real terminal.
const (
	colorReset  = "\x1b[0m"
	colorKey    = "\x1b[34m" // keywords: if, return, new, ...
	colorString = "\x1b[32m"
	colorNum    = "\x1b[36m"
	colorLabel  = "\x1b[33m"
	colorErr    = "\x1b[31m"
)

// Emitter builds formatted pseudo-source in a strings.Builder and returns
// it as a string, the way teacher's formatter.Formatter does — except this
// one also decides, once, whether the destination supports ANSI color. It
// never writes to the writer given to New; the caller prints the result.
type Emitter struct {
	indent    int
	indentStr string
	output    strings.Builder
	color     bool
}

// New builds an Emitter. Color output is enabled only when w is a file
// descriptor attached to a real terminal (mattn/go-isatty), matching how
// a CLI in this pack decides whether to paint its output.
func New(w io.Writer) *Emitter {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Emitter{indentStr: "    ", color: color}
}

func (e *Emitter) paint(code, s string) string {
	if !e.color {
		return s
	}
	return code + s + colorReset
}

func (e *Emitter) writeIndent() {
	for i := 0; i < e.indent; i++ {
		e.output.WriteString(e.indentStr)
	}
}

// EmitClass renders every method of a parsed class in declaration order.
func (e *Emitter) EmitClass(class *classfile.Class, pool *classfile.ConstantPool) string {
	e.output.Reset()
	e.output.WriteString(e.paint(colorKey, "class") + " " + class.This.NestedDotted() + " {\n")
	e.indent++
	for i, m := range class.Methods {
		if i > 0 {
			e.output.WriteString("\n")
		}
		e.emitMethod(m, pool)
	}
	e.indent--
	e.output.WriteString("}\n")
	return e.output.String()
}

func (e *Emitter) emitMethod(m classfile.Member, pool *classfile.ConstantPool) {
	e.writeIndent()
	e.output.WriteString(e.paint(colorKey, "method") + " " + m.Name + m.Descriptor.String() + " {\n")
	e.indent++
	if m.Code == nil {
		e.writeIndent()
		e.output.WriteString("// abstract or native: no Code attribute\n")
		e.indent--
		e.writeIndent()
		e.output.WriteString("}\n")
		return
	}

	result := lifter.LiftMethod(m.Code, pool)
	if result.Err != nil {
		e.writeIndent()
		e.output.WriteString(e.paint(colorErr, "// decompilation failed: "+result.Err.Error()) + "\n")
		e.indent--
		e.writeIndent()
		e.output.WriteString("}\n")
		return
	}

	offsets := make([]int64, 0, len(result.Blocks))
	for off := range result.Blocks {
		offsets = append(offsets, off)
	}
	sort.Slice(offsets, func(i, j int) bool { return offsets[i] < offsets[j] })

	for _, off := range offsets {
		e.writeIndent()
		e.output.WriteString(e.paint(colorLabel, label(off)) + ":\n")
		e.indent++
		for _, stmt := range result.Blocks[off] {
			e.emitStmt(stmt)
		}
		e.indent--
	}

	e.indent--
	e.writeIndent()
	e.output.WriteString("}\n")
}

func label(offset int64) string {
	return "L" + strconv.FormatInt(offset, 10)
}

func (e *Emitter) emitStmt(stmt ast.Stmt) {
	e.writeIndent()
	switch s := stmt.(type) {
	case ast.Set:
		e.output.WriteString(fmt.Sprintf("local%d = ", s.Index))
		e.emitExpr(s.Value)

	case ast.FieldSet:
		e.emitExpr(s.Receiver)
		e.output.WriteString("." + s.Name + " = ")
		e.emitExpr(s.Value)

	case ast.StaticSet:
		e.output.WriteString(s.Owner.NestedDotted() + "." + s.Name + " = ")
		e.emitExpr(s.Value)

	case ast.ArrayStore:
		e.emitExpr(s.Array)
		e.output.WriteString("[")
		e.emitExpr(s.Index)
		e.output.WriteString("] = ")
		e.emitExpr(s.Value)

	case ast.ExprStmt:
		e.emitExpr(s.Expr)

	case ast.Return:
		e.output.WriteString(e.paint(colorKey, "return"))
		if s.Value != nil {
			e.output.WriteString(" ")
			e.emitExpr(s.Value)
		}

	case ast.Increment:
		e.output.WriteString(fmt.Sprintf("local%d += %d", s.Index, s.Delta))

	case ast.IfCmp:
		if s.Mnemonic == "goto" {
			e.output.WriteString(e.paint(colorKey, "goto") + " " + label(s.Target))
		} else {
			e.output.WriteString(e.paint(colorKey, "if") + " (")
			for i, op := range s.Operands {
				if i > 0 {
					e.output.WriteString(" ")
				}
				e.emitExpr(op)
			}
			e.output.WriteString(" " + s.Mnemonic + ") " + e.paint(colorKey, "goto") + " " + label(s.Target))
		}

	case ast.SwitchTable:
		e.output.WriteString(e.paint(colorKey, "switch") + " (")
		e.emitExpr(s.Key)
		e.output.WriteString(fmt.Sprintf(") /* table %d..%d, default %s */", s.Low, s.High, label(s.Default)))

	case ast.SwitchLookup:
		e.output.WriteString(e.paint(colorKey, "switch") + " (")
		e.emitExpr(s.Key)
		e.output.WriteString(") /* lookup, default " + label(s.Default) + " */")

	case ast.Jsr:
		e.output.WriteString(e.paint(colorKey, "jsr") + " " + label(s.Target))

	case ast.Throw:
		e.output.WriteString(e.paint(colorKey, "throw") + " ")
		e.emitExpr(s.Value)

	case ast.MonitorEnter:
		e.output.WriteString(e.paint(colorKey, "synchronized-enter") + " ")
		e.emitExpr(s.Value)

	case ast.MonitorExit:
		e.output.WriteString(e.paint(colorKey, "synchronized-exit") + " ")
		e.emitExpr(s.Value)

	default:
		e.output.WriteString(fmt.Sprintf("/* unhandled statement %T */", stmt))
	}
	e.output.WriteString(";\n")
}

func (e *Emitter) emitExpr(expr ast.Expr) {
	switch v := expr.(type) {
	case ast.IntConst:
		e.output.WriteString(e.paint(colorNum, strconv.FormatInt(int64(v.Value), 10)))
	case ast.LongConst:
		e.output.WriteString(e.paint(colorNum, strconv.FormatInt(v.Value, 10)+"L"))
	case ast.FloatConst:
		e.output.WriteString(e.paint(colorNum, strconv.FormatFloat(float64(v.Value), 'g', -1, 32)+"f"))
	case ast.DoubleConst:
		e.output.WriteString(e.paint(colorNum, strconv.FormatFloat(v.Value, 'g', -1, 64)))
	case ast.StringConst:
		e.output.WriteString(e.paint(colorString, strconv.Quote(v.Value)))
	case ast.NullConst:
		e.output.WriteString(e.paint(colorKey, "null"))
	case ast.Variable:
		e.output.WriteString(fmt.Sprintf("local%d", v.Index))
	case ast.FieldGet:
		e.emitExpr(v.Receiver)
		e.output.WriteString("." + v.Name)
	case ast.StaticGet:
		e.output.WriteString(v.Owner.NestedDotted() + "." + v.Name)
	case ast.Binary:
		e.emitExpr(v.Left)
		e.output.WriteString(" " + binOpSymbol(v.Op) + " ")
		e.emitExpr(v.Right)
	case ast.Negate:
		e.output.WriteString("-")
		e.emitExpr(v.Value)
	case ast.Comparison:
		e.emitExpr(v.Left)
		if v.Order == ast.OrderingLess {
			e.output.WriteString(" <=> ") // NaN-sorts-low compare
		} else {
			e.output.WriteString(" <=>+ ") // NaN-sorts-high compare
		}
		e.emitExpr(v.Right)
	case ast.SignedComparison:
		e.emitExpr(v.Left)
		e.output.WriteString(" <=> ")
		e.emitExpr(v.Right)
	case ast.PrimitiveCast:
		e.output.WriteString("(" + kindName(v.Target) + ") ")
		wrapParen := isBinaryLike(v.Value)
		if wrapParen {
			e.output.WriteString("(")
		}
		e.emitExpr(v.Value)
		if wrapParen {
			e.output.WriteString(")")
		}
	case ast.ClassCast:
		e.output.WriteString("(" + v.Class.NestedDotted() + ") ")
		e.emitExpr(v.Value)
	case ast.InstanceOf:
		e.emitExpr(v.Value)
		e.output.WriteString(" " + e.paint(colorKey, "instanceof") + " " + v.Class.NestedDotted())
	case ast.New:
		e.output.WriteString(e.paint(colorKey, "new") + " " + v.Class.NestedDotted() + "()")
	case ast.NewArrayPrim:
		e.output.WriteString(e.paint(colorKey, "new") + " " + kindName(v.Elem) + "[")
		e.emitExpr(v.Count)
		e.output.WriteString("]")
	case ast.NewArrayMulti:
		e.output.WriteString(e.paint(colorKey, "new") + " " + v.Type.SourceName())
		for _, d := range v.Dims {
			e.output.WriteString("[")
			e.emitExpr(d)
			e.output.WriteString("]")
		}
	case ast.ArrayLoad:
		e.emitExpr(v.Array)
		e.output.WriteString("[")
		e.emitExpr(v.Index)
		e.output.WriteString("]")
	case ast.ArrayLength:
		e.emitExpr(v.Array)
		e.output.WriteString(".length")
	case ast.Invoke:
		e.emitInvoke(v)
	case ast.JsrReturnAddress:
		e.output.WriteString("/* return address " + label(v.Target) + " */")
	default:
		e.output.WriteString(fmt.Sprintf("/* unhandled expr %T */", expr))
	}
}

func (e *Emitter) emitInvoke(v ast.Invoke) {
	if v.Receiver != nil {
		e.emitExpr(v.Receiver)
		e.output.WriteString(".")
	} else {
		e.output.WriteString(v.Owner.NestedDotted() + ".")
	}
	e.output.WriteString(v.Name + "(")
	for i, a := range v.Args {
		if i > 0 {
			e.output.WriteString(", ")
		}
		e.emitExpr(a)
	}
	e.output.WriteString(")")
}

func binOpSymbol(op ast.BinOp) string {
	switch op {
	case ast.OpMul:
		return "*"
	case ast.OpDiv:
		return "/"
	case ast.OpAdd:
		return "+"
	case ast.OpSub:
		return "-"
	case ast.OpRem:
		return "%"
	case ast.OpAnd:
		return "&"
	case ast.OpOr:
		return "|"
	case ast.OpXor:
		return "^"
	case ast.OpShL:
		return "<<"
	case ast.OpShR:
		return ">>"
	case ast.OpUShR:
		return ">>>"
	default:
		return "?"
	}
}

// kindName renders a bare DescriptorKind (not a full Descriptor — no
// class/array payload available) using the same spelling Descriptor.
// SourceName uses for primitives.
func kindName(k classfile.DescriptorKind) string {
	return classfile.Descriptor{Kind: k}.SourceName()
}

func isBinaryLike(e ast.Expr) bool {
	switch e.(type) {
	case ast.Binary, ast.Negate:
		return true
	default:
		return false
	}
}
