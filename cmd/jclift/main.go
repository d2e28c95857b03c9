// cmd/jclift/main.go
package main

import (
	"fmt"
	"os"

	"jclift/cmd/jclift/commands"
)

const version = "0.1.0"

// commandAliases mirrors teacher's one-letter shortcuts.
var commandAliases = map[string]string{
	"d": "decompile",
	"s": "serve",
	"c": "cache",
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches a command and returns the process exit code. Split out
// of main so testscript can drive it as an in-process binary.
func run(args []string) int {
	if len(args) == 0 {
		showUsage()
		return 0
	}

	cmd := args[0]
	if alias, ok := commandAliases[cmd]; ok {
		cmd = alias
	}

	if cmd == "--help" || cmd == "-h" || cmd == "help" {
		showUsage()
		return 0
	}
	if cmd == "--version" || cmd == "-v" || cmd == "version" {
		fmt.Printf("jclift %s\n", version)
		return 0
	}

	var err error
	switch cmd {
	case "decompile":
		err = commands.DecompileCommand(args[1:])
	case "serve":
		err = commands.ServeCommand(args[1:])
	case "cache":
		err = commands.CacheCommand(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		showUsage()
		return 1
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func showUsage() {
	fmt.Println("jclift - JVM .class file decompiler")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  jclift decompile [--cache <dsn>] <file.class>   Print lifted pseudo-source  (alias: d)")
	fmt.Println("  jclift serve [addr]                             Serve decompilation over HTTP/websocket (alias: s)")
	fmt.Println("  jclift cache <init|get> <dsn> [args...]         Inspect or initialize the output cache (alias: c)")
	fmt.Println()
	fmt.Println("  jclift help                                     Show this message")
	fmt.Println("  jclift version                                  Show version")
}
