package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
)

// minimalClassBytes is a hand-encoded class file with one method (answer()I:
// iconst_1; ireturn), just enough to exercise the HTTP decompile path.
func minimalClassBytes() []byte {
	var b []byte
	put := func(bs ...byte) { b = append(b, bs...) }
	putU2 := func(v uint16) { put(byte(v>>8), byte(v)) }
	putU4 := func(v uint32) { put(byte(v>>24), byte(v>>16), byte(v>>8), byte(v)) }

	putU4(0xCAFEBABE)
	putU2(0) // minor
	putU2(52) // major

	// constant pool: 1=Utf8 "pkg/Foo", 2=Class#1, 3=Utf8 "answer", 4=Utf8 "()I", 5=Utf8 "Code"
	putU2(6) // count = highest index + 1
	put(1)
	putU2(7)
	put([]byte("pkg/Foo")...)
	put(7)
	putU2(1)
	put(1)
	putU2(6)
	put([]byte("answer")...)
	put(1)
	putU2(3)
	put([]byte("()I")...)
	put(1)
	putU2(4)
	put([]byte("Code")...)

	putU2(0x0021) // access_flags: public super
	putU2(2)      // this_class
	putU2(0)      // super_class
	putU2(0)      // interfaces_count
	putU2(0)      // fields_count

	putU2(1) // methods_count
	putU2(0x0009) // public static
	putU2(3)      // name_index -> "answer"
	putU2(4)      // descriptor_index -> "()I"
	putU2(1)      // attributes_count

	putU2(5) // attribute_name_index -> "Code"
	code := []byte{
		0, 1, // max_stack
		0, 0, // max_locals
	}
	codeBody := []byte{0x04, 0xac} // iconst_1; ireturn
	code = append(code, byte(len(codeBody)>>24), byte(len(codeBody)>>16), byte(len(codeBody)>>8), byte(len(codeBody)))
	code = append(code, codeBody...)
	code = append(code, 0, 0) // exception_table_length
	code = append(code, 0, 0) // attributes_count
	putU4(uint32(len(code)))
	put(code...)

	putU2(0) // class attributes_count
	return b
}

func TestHandleDecompile(t *testing.T) {
	s := New("127.0.0.1:0")
	req := httptest.NewRequest("POST", "/decompile", strings.NewReader(string(minimalClassBytes())))
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var out []methodResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Unmarshal: %v, body = %s", err, rec.Body.String())
	}
	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1", len(out))
	}
	if out[0].Name != "answer" {
		t.Errorf("Name = %q, want answer", out[0].Name)
	}
	if out[0].Error != "" {
		t.Errorf("unexpected error: %s", out[0].Error)
	}
	if !strings.Contains(out[0].Source, "return 1") {
		t.Errorf("source missing lifted return: %s", out[0].Source)
	}
}

func TestHandleDecompileRejectsGet(t *testing.T) {
	s := New("127.0.0.1:0")
	req := httptest.NewRequest("GET", "/decompile", nil)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	if rec.Code != 405 {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
