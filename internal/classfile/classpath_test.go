package classfile

import (
	"reflect"
	"testing"
)

func TestClassPathFromInternal(t *testing.T) {
	c := ClassPathFromInternal("a/b/C$D")
	if got := c.Internal(); got != "a/b/C$D" {
		t.Errorf("Internal() = %q, want %q", got, "a/b/C$D")
	}
	if got := c.PackageDotted(); got != "a.b" {
		t.Errorf("PackageDotted() = %q, want %q", got, "a.b")
	}
	if got := c.SimpleName(); got != "D" {
		t.Errorf("SimpleName() = %q, want %q", got, "D")
	}
	if got := c.Enclosing(); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("Enclosing() = %v, want %v", got, []string{"C"})
	}
}

func TestClassPathTopLevel(t *testing.T) {
	c := ClassPathFromInternal("java/lang/String")
	if got := c.SimpleName(); got != "String" {
		t.Errorf("SimpleName() = %q, want %q", got, "String")
	}
	if len(c.Enclosing()) != 0 {
		t.Errorf("Enclosing() = %v, want empty", c.Enclosing())
	}
	if got := c.NestedDotted(); got != "java.lang.String" {
		t.Errorf("NestedDotted() = %q, want %q", got, "java.lang.String")
	}
}
