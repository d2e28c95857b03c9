// Package commands holds the jclift subcommand implementations, kept one
// file per command the way sentra's cmd/sentra/commands does.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"jclift/internal/classfile"
	"jclift/internal/concurrency"
	"jclift/internal/emitter"
	"jclift/internal/store"
)

// DecompileCommand reads a .class file and prints its lifted pseudo-source
// to stdout. With --cache it is consulted before lifting and populated
// after, keyed on the class file's content digest.
func DecompileCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: jclift decompile [--cache <dsn>] <file.class>")
	}

	var cacheDSN, path string
	for i := 0; i < len(args); i++ {
		if args[i] == "--cache" {
			if i+1 >= len(args) {
				return fmt.Errorf("--cache requires a DSN argument")
			}
			cacheDSN = args[i+1]
			i++
			continue
		}
		path = args[i]
	}
	if path == "" {
		return fmt.Errorf("no class file given")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "decompiling %s (%s)\n", path, humanize.Bytes(uint64(len(data))))

	ctx := context.Background()
	var cache *store.Store
	var digest string
	if cacheDSN != "" {
		cache, err = store.Open(cacheDSN)
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer cache.Close()
		if err := cache.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure cache schema: %w", err)
		}
		digest = store.Digest(data)
	}

	class, err := classfile.Parse(data)
	if err != nil {
		return fmt.Errorf("parse class: %w", err)
	}

	if cache != nil {
		if hit, ok := tryWholeClassCache(ctx, cache, digest, class); ok {
			fmt.Print(hit)
			return nil
		}
	}

	outcomes, err := concurrency.LiftClass(ctx, class, concurrency.Options{})
	if err != nil {
		return fmt.Errorf("lift class: %w", err)
	}

	e := emitter.New(os.Stdout)
	out := e.EmitClass(class, class.Pool)
	fmt.Print(out)

	if cache != nil {
		for _, o := range outcomes {
			if o.Result.Err != nil {
				continue
			}
			one := &classfile.Class{This: class.This, Pool: class.Pool, Methods: []classfile.Member{o.Method}}
			rendered := emitter.New(nil).EmitClass(one, class.Pool)
			if _, err := cache.Put(ctx, digest, o.Method.Name, o.Method.Descriptor.String(), rendered); err != nil {
				fmt.Fprintf(os.Stderr, "cache put %s%s: %v\n", o.Method.Name, o.Method.Descriptor.String(), err)
			}
		}
	}
	return nil
}

// tryWholeClassCache looks up every method of class in the cache; ok is
// true only when all methods hit, since a partial hit still needs a full
// lift to recover the missing methods in source order.
func tryWholeClassCache(ctx context.Context, cache *store.Store, digest string, class *classfile.Class) (string, bool) {
	var out string
	for _, m := range class.Methods {
		source, ok, err := cache.Get(ctx, digest, m.Name, m.Descriptor.String())
		if err != nil || !ok {
			return "", false
		}
		out += source
	}
	return out, true
}
