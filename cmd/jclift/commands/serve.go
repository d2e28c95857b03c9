package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jclift/internal/server"
)

// ServeCommand starts the HTTP/websocket decompile server until the
// process receives an interrupt or termination signal.
func ServeCommand(args []string) error {
	addr := ":8089"
	if len(args) > 0 {
		addr = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "jclift serving on %s (POST /decompile, GET /ws/decompile)\n", addr)
	s := server.New(addr)
	if err := s.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
