package classfile

import "strings"

// ClassPath is a fully qualified type name decomposed into its package
// segments, any chain of enclosing type names, and the simple name.
// Immutable once constructed; derived from a class file's slash-and-dollar
// internal form (e.g. "a/b/C$D").
type ClassPath struct {
	packageSegments []string
	enclosing       []string
	simpleName      string
}

// ClassPathFromInternal parses the slash-and-dollar internal form used in
// the constant pool ("java/util/List", "a/b/C$D").
func ClassPathFromInternal(internal string) ClassPath {
	pkg, rest := splitPackage(internal)
	parts := strings.Split(rest, "$")
	simple := parts[len(parts)-1]
	enclosing := append([]string(nil), parts[:len(parts)-1]...)
	return ClassPath{packageSegments: pkg, enclosing: enclosing, simpleName: simple}
}

func splitPackage(internal string) (pkg []string, rest string) {
	idx := strings.LastIndex(internal, "/")
	if idx < 0 {
		return nil, internal
	}
	return strings.Split(internal[:idx], "/"), internal[idx+1:]
}

// Internal renders the slash-and-dollar form the class file itself uses.
func (c ClassPath) Internal() string {
	var sb strings.Builder
	for _, s := range c.packageSegments {
		sb.WriteString(s)
		sb.WriteByte('/')
	}
	for _, e := range c.enclosing {
		sb.WriteString(e)
		sb.WriteByte('$')
	}
	sb.WriteString(c.simpleName)
	return sb.String()
}

// PackageDotted renders just the package portion, dot-separated
// ("java.util").
func (c ClassPath) PackageDotted() string {
	return strings.Join(c.packageSegments, ".")
}

// SlashSeparated renders package+enclosing+simple with slashes throughout
// and dollars kept for nesting, i.e. identical to Internal. Provided as a
// named rendering per the spec's three-rendering requirement.
func (c ClassPath) SlashSeparated() string { return c.Internal() }

// NestedDotted renders the fully dotted source-level name
// ("java.util.Map.Entry").
func (c ClassPath) NestedDotted() string {
	segs := append(append([]string{}, c.packageSegments...), c.enclosing...)
	segs = append(segs, c.simpleName)
	return strings.Join(segs, ".")
}

// SimpleName returns the innermost type name ("D" in "a/b/C$D").
func (c ClassPath) SimpleName() string { return c.simpleName }

// Enclosing returns the chain of enclosing type names, outermost first
// ("C" in "a/b/C$D"); empty for a top-level type.
func (c ClassPath) Enclosing() []string { return append([]string(nil), c.enclosing...) }

// PackageSegments returns the package path segments ("a", "b").
func (c ClassPath) PackageSegments() []string { return append([]string(nil), c.packageSegments...) }
