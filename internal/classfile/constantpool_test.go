package classfile

import "testing"

// buildWirePool hand-encodes a constant_pool_count + entries section the
// way ParseConstantPool expects to read it, so tests can exercise the
// Long/Double two-slot skip without a full class file.
func buildWirePool(t *testing.T, entries []Constant) *Reader {
	t.Helper()
	var data []byte
	appendU2 := func(v uint16) { data = append(data, byte(v>>8), byte(v)) }
	appendU4 := func(v uint32) { data = append(data, byte(v>>24), byte(v>>16), byte(v>>8), byte(v)) }

	count := uint16(1)
	for _, e := range entries {
		count++
		if e.Tag == TagLong || e.Tag == TagDouble {
			count++
		}
	}
	appendU2(count)
	for _, e := range entries {
		data = append(data, e.Tag)
		switch e.Tag {
		case TagInteger:
			appendU4(uint32(e.Integer))
		case TagLong:
			appendU4(uint32(uint64(e.Long) >> 32))
			appendU4(uint32(uint64(e.Long)))
		default:
			t.Fatalf("unsupported tag in test helper: %d", e.Tag)
		}
	}
	return NewReader(data)
}

func TestConstantPoolLongDoubleSkip(t *testing.T) {
	r := buildWirePool(t, []Constant{
		{Tag: TagInteger, Integer: 1},
		{Tag: TagLong, Long: 2},
		{Tag: TagInteger, Integer: 3},
	})
	pool, err := ParseConstantPool(r)
	if err != nil {
		t.Fatalf("ParseConstantPool: %v", err)
	}
	if c, err := pool.Get(1); err != nil || c.Integer != 1 {
		t.Errorf("index 1 = %+v, %v", c, err)
	}
	if c, err := pool.Get(2); err != nil || c.Long != 2 {
		t.Errorf("index 2 = %+v, %v", c, err)
	}
	if _, err := pool.Get(3); err == nil {
		t.Errorf("expected index 3 (Long's second slot) to be absent")
	}
	if c, err := pool.Get(4); err != nil || c.Integer != 3 {
		t.Errorf("index 4 = %+v, %v", c, err)
	}
}
