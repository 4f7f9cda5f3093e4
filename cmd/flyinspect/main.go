// Command flyinspect inspects, verifies and snapshots flyweight record files.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/hupe1980/flystore"
	"github.com/hupe1980/flystore/mem"
)

const version = "0.1.0"

// Globals are flags shared by every command.
type Globals struct {
	LogLevel slog.Level `name:"log-level" default:"warn" help:"Minimum log level (debug, info, warn, error)"`
	Reckless bool       `help:"Skip logical bounds checks"`
	Workers  int64      `help:"Maximum worker goroutines (0 = GOMAXPROCS)"`
	IOLimit  int64      `name:"io-limit" help:"Snapshot I/O limit in bytes per second (0 = unlimited)"`
}

// CLI defines the command-line interface for flyinspect.
type CLI struct {
	Globals

	Inspect      InspectCmd      `cmd:"" help:"Print the header and layout of a record file"`
	VerifySorted VerifySortedCmd `cmd:"" name:"verify-sorted" help:"Check that records are ordered by an int64 field"`
	Export       ExportCmd       `cmd:"" help:"Write a record file to a compressed snapshot"`
	Import       ImportCmd       `cmd:"" help:"Restore a snapshot into a record file"`
	Version      VersionCmd      `cmd:"" help:"Print version information"`
}

// runContext is bound to every command's Run method.
type runContext struct {
	Globals *Globals
	Out     io.Writer
}

func (rc *runContext) store(opts ...flystore.Option) *flystore.Store {
	policy := mem.Strict
	if rc.Globals.Reckless {
		policy = mem.Unchecked
	}
	base := []flystore.Option{
		flystore.WithCheckPolicy(policy),
		flystore.WithLogger(flystore.NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: rc.Globals.LogLevel}))),
		flystore.WithMaxWorkers(rc.Globals.Workers),
		flystore.WithIOLimit(rc.Globals.IOLimit),
	}
	return flystore.New(append(base, opts...)...)
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("flyinspect"),
		kong.Description("Inspect and snapshot flyweight record files"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&runContext{Globals: &cli.Globals, Out: os.Stdout})
	ctx.FatalIfErrorf(err)
}
