package commands

import (
	"context"
	"fmt"
	"os"

	"jclift/internal/store"
)

// CacheCommand manages the decompilation cache database directly, without
// touching a class file: "jclift cache init <dsn>" and
// "jclift cache get <dsn> <digest> <method> <descriptor>".
func CacheCommand(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: jclift cache <init|get> <dsn> [args...]")
	}
	sub, dsn := args[0], args[1]

	s, err := store.Open(dsn)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer s.Close()

	ctx := context.Background()
	switch sub {
	case "init":
		if err := s.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		fmt.Fprintln(os.Stderr, "cache schema ready")
		return nil
	case "get":
		if len(args) < 5 {
			return fmt.Errorf("usage: jclift cache get <dsn> <digest> <method> <descriptor>")
		}
		source, ok, err := s.Get(ctx, args[2], args[3], args[4])
		if err != nil {
			return fmt.Errorf("get: %w", err)
		}
		if !ok {
			return fmt.Errorf("cache miss for %s %s%s", args[2], args[3], args[4])
		}
		fmt.Print(source)
		return nil
	default:
		return fmt.Errorf("unknown cache subcommand %q", sub)
	}
}
