package classfile

import (
	"strconv"
	"strings"
)

// DescriptorKind tags the closed set of descriptor variants.
type DescriptorKind int

const (
	KindByte DescriptorKind = iota
	KindChar
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBoolean
	KindVoid
	KindClass
	KindArray
	KindMethod
	KindUnknown
)

// Descriptor is the tagged-union result of parsing the field/method
// type-descriptor mini-language. Only the fields relevant to Kind are
// populated; this mirrors a closed sum type via a kind tag rather than an
// open class hierarchy.
type Descriptor struct {
	Kind DescriptorKind

	Class ClassPath // valid when Kind == KindClass

	ArrayDims int        // valid when Kind == KindArray, >= 1
	ArrayElem *Descriptor // valid when Kind == KindArray

	MethodParams []Descriptor // valid when Kind == KindMethod
	MethodReturn *Descriptor  // valid when Kind == KindMethod

	Raw string // valid when Kind == KindUnknown: the unparseable original text
}

var primitiveLetters = map[byte]DescriptorKind{
	'B': KindByte, 'C': KindChar, 'D': KindDouble, 'F': KindFloat,
	'I': KindInt, 'J': KindLong, 'S': KindShort, 'Z': KindBoolean, 'V': KindVoid,
}

var primitiveLettersRev = map[DescriptorKind]byte{
	KindByte: 'B', KindChar: 'C', KindDouble: 'D', KindFloat: 'F',
	KindInt: 'I', KindLong: 'J', KindShort: 'S', KindBoolean: 'Z', KindVoid: 'V',
}

// IsPrimitive reports whether the descriptor is one of the nine primitive
// kinds (including void).
func (d Descriptor) IsPrimitive() bool {
	_, ok := primitiveLettersRev[d.Kind]
	return ok
}

// ParseDescriptor parses a single field descriptor or a full method
// descriptor. Malformed input yields Kind == KindUnknown rather than an
// error, per the spec's "Unknown(string)" variant.
func ParseDescriptor(s string) Descriptor {
	if strings.HasPrefix(s, "(") {
		return parseMethodDescriptor(s)
	}
	if s == "V" {
		return Descriptor{Kind: KindVoid}
	}
	d, rest, ok := parseFieldDescriptor(s)
	if !ok || rest != "" {
		return Descriptor{Kind: KindUnknown, Raw: s}
	}
	return d
}

func parseFieldDescriptor(s string) (Descriptor, string, bool) {
	if s == "" {
		return Descriptor{}, s, false
	}
	switch s[0] {
	case 'L':
		end := strings.IndexByte(s, ';')
		if end < 0 {
			return Descriptor{}, s, false
		}
		return Descriptor{Kind: KindClass, Class: ClassPathFromInternal(s[1:end])}, s[end+1:], true
	case '[':
		dims := 0
		i := 0
		for i < len(s) && s[i] == '[' {
			dims++
			i++
		}
		elem, rest, ok := parseFieldDescriptor(s[i:])
		if !ok {
			return Descriptor{}, s, false
		}
		return Descriptor{Kind: KindArray, ArrayDims: dims, ArrayElem: &elem}, rest, true
	default:
		if kind, ok := primitiveLetters[s[0]]; ok && kind != KindVoid {
			return Descriptor{Kind: kind}, s[1:], true
		}
		return Descriptor{}, s, false
	}
}

func parseMethodDescriptor(s string) Descriptor {
	if !strings.HasPrefix(s, "(") {
		return Descriptor{Kind: KindUnknown, Raw: s}
	}
	rest := s[1:]
	var params []Descriptor
	for len(rest) > 0 && rest[0] != ')' {
		d, r, ok := parseFieldDescriptor(rest)
		if !ok {
			return Descriptor{Kind: KindUnknown, Raw: s}
		}
		params = append(params, d)
		rest = r
	}
	if len(rest) == 0 || rest[0] != ')' {
		return Descriptor{Kind: KindUnknown, Raw: s}
	}
	rest = rest[1:]
	var ret Descriptor
	if rest == "V" {
		ret = Descriptor{Kind: KindVoid}
	} else {
		d, r, ok := parseFieldDescriptor(rest)
		if !ok || r != "" {
			return Descriptor{Kind: KindUnknown, Raw: s}
		}
		ret = d
	}
	return Descriptor{Kind: KindMethod, MethodParams: params, MethodReturn: &ret}
}

// String renders the descriptor back to its single-letter encoding;
// ParseDescriptor(d.String()) round-trips for well-formed descriptors.
func (d Descriptor) String() string {
	switch d.Kind {
	case KindClass:
		return "L" + d.Class.Internal() + ";"
	case KindArray:
		return strings.Repeat("[", d.ArrayDims) + d.ArrayElem.String()
	case KindMethod:
		var sb strings.Builder
		sb.WriteByte('(')
		for _, p := range d.MethodParams {
			sb.WriteString(p.String())
		}
		sb.WriteByte(')')
		sb.WriteString(d.MethodReturn.String())
		return sb.String()
	case KindUnknown:
		return d.Raw
	default:
		if c, ok := primitiveLettersRev[d.Kind]; ok {
			return string(c)
		}
		return "?"
	}
}

// SourceName renders a Java-source-like spelling, used by the emitter
// ("int", "java.lang.String", "int[]").
func (d Descriptor) SourceName() string {
	switch d.Kind {
	case KindByte:
		return "byte"
	case KindChar:
		return "char"
	case KindShort:
		return "short"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBoolean:
		return "boolean"
	case KindVoid:
		return "void"
	case KindClass:
		return d.Class.NestedDotted()
	case KindArray:
		return d.ArrayElem.SourceName() + strings.Repeat("[]", d.ArrayDims)
	case KindMethod:
		parts := make([]string, len(d.MethodParams))
		for i, p := range d.MethodParams {
			parts[i] = p.SourceName()
		}
		return "(" + strings.Join(parts, ", ") + ") " + d.MethodReturn.SourceName()
	default:
		return strconv.Quote(d.Raw)
	}
}
