package emitter

import (
	"strings"
	"testing"

	"jclift/internal/classfile"
)

func u2(v uint16) []byte { return []byte{byte(v >> 8), byte(v)} }

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
	pool, err := classfile.ParseConstantPool(classfile.NewReader(buf))
	if err != nil {
		t.Fatalf("ParseConstantPool: %v", err)
	}
	return pool
}

// TestEmitClassSimpleMethod renders scenario S1 (iconst_1; ireturn) through
// the full class-level emitter and checks the label and return line appear.
func TestEmitClassSimpleMethod(t *testing.T) {
	pool := buildWirePool(t, func(add func(tag byte, payload []byte)) {
		add(classfile.TagUtf8, append(u2(7), []byte("pkg/Foo")...)) // 1
		add(classfile.TagClass, u2(1))                              // 2
	})

	class := &classfile.Class{
		Pool: pool,
		This: classfile.ClassPathFromInternal("pkg/Foo"),
		Methods: []classfile.Member{
			{
				Name:       "answer",
				Descriptor: classfile.ParseDescriptor("()I"),
				Code: &classfile.Code{
					MaxStack:  1,
					MaxLocals: 0,
					Bytes:     []byte{0x04, 0xac},
				},
			},
		},
	}

	out := New(&strings.Builder{}).EmitClass(class, pool)
	if !strings.Contains(out, "L0:") {
		t.Errorf("output missing block label L0:\n%s", out)
	}
	if !strings.Contains(out, "return 1") {
		t.Errorf("output missing lifted return:\n%s", out)
	}
	if !strings.Contains(out, "method answer()I") {
		t.Errorf("output missing method signature:\n%s", out)
	}
}

// TestEmitClassFailedMethod checks a method whose Code fails to lift still
// renders as a commented stub rather than aborting the whole class.
func TestEmitClassFailedMethod(t *testing.T) {
	class := &classfile.Class{
		This: classfile.ClassPathFromInternal("pkg/Bad"),
		Methods: []classfile.Member{
			{
				Name:       "broken",
				Descriptor: classfile.ParseDescriptor("()V"),
				Code: &classfile.Code{
					Bytes: []byte{0xfe}, // unassigned opcode
				},
			},
		},
	}
	out := New(&strings.Builder{}).EmitClass(class, nil)
	if !strings.Contains(out, "decompilation failed") {
		t.Errorf("expected a failure comment, got:\n%s", out)
	}
}
