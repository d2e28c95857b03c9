package store

import (
	"context"
	"testing"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite://file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return s
}

func TestStorePutGetRoundTrip(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	digest := Digest([]byte{0xCA, 0xFE, 0xBA, 0xBE})
	if _, err := s.Put(ctx, digest, "answer", "()I", "int answer() { return 1; }"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(ctx, digest, "answer", "()I")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if got != "int answer() { return 1; }" {
		t.Errorf("got %q", got)
	}
}

func TestStoreGetMiss(t *testing.T) {
	s := openMemory(t)
	_, ok, err := s.Get(context.Background(), "nonexistent", "foo", "()V")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected a cache miss")
	}
}

func TestStorePutOverwrites(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	digest := Digest([]byte{1, 2, 3})

	if _, err := s.Put(ctx, digest, "m", "()V", "first"); err != nil {
		t.Fatalf("Put #1: %v", err)
	}
	if _, err := s.Put(ctx, digest, "m", "()V", "second"); err != nil {
		t.Fatalf("Put #2: %v", err)
	}
	got, ok, err := s.Get(ctx, digest, "m", "()V")
	if err != nil || !ok {
		t.Fatalf("Get: %v, ok=%v", err, ok)
	}
	if got != "second" {
		t.Errorf("got %q, want %q", got, "second")
	}
}

func TestDriverForUnknownScheme(t *testing.T) {
	if _, err := Open("mongodb://localhost/cache"); err == nil {
		t.Fatal("expected an error for an unsupported DSN scheme")
	}
}
