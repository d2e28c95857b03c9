package concurrency

import (
	"context"
	"testing"

	"jclift/internal/classfile"
)

func TestLiftClassParallel(t *testing.T) {
	class := &classfile.Class{
		Methods: []classfile.Member{
			{Name: "a", Code: &classfile.Code{Bytes: []byte{0x04, 0xac}}},             // iconst_1; ireturn
			{Name: "b", Code: &classfile.Code{Bytes: []byte{0x05, 0xac}}},             // iconst_2; ireturn
			{Name: "c", Code: nil},                                                    // abstract/native: skipped
			{Name: "d", Code: &classfile.Code{Bytes: []byte{0xfe}}},                   // unassigned opcode: fails
		},
	}

	outcomes, err := LiftClass(context.Background(), class, Options{MaxWorkers: 2})
	if err != nil {
		t.Fatalf("LiftClass: %v", err)
	}
	if len(outcomes) != 4 {
		t.Fatalf("len(outcomes) = %d, want 4", len(outcomes))
	}
	if outcomes[0].Result.Err != nil {
		t.Errorf("method a: %v", outcomes[0].Result.Err)
	}
	if outcomes[1].Result.Err != nil {
		t.Errorf("method b: %v", outcomes[1].Result.Err)
	}
	if outcomes[2].Result.Blocks != nil || outcomes[2].Result.Err != nil {
		t.Errorf("method c (no code) should be untouched, got %+v", outcomes[2].Result)
	}
	if outcomes[3].Result.Err == nil {
		t.Error("method d: expected a decode error, got nil")
	}
}

func TestLiftClassCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	class := &classfile.Class{Methods: []classfile.Member{{Name: "a", Code: &classfile.Code{Bytes: []byte{0xac}}}}}
	_, err := LiftClass(ctx, class, Options{})
	if err == nil {
		t.Fatal("expected context cancellation error, got nil")
	}
}
