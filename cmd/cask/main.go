// Package main is the entry point for the cask build tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/cask/cmd/cask/commands"
	"go.trai.ch/cask/internal/app"
	"go.trai.ch/cask/internal/core/domain"
	_ "go.trai.ch/cask/internal/wiring"
)

func main() {
	os.Exit(run())
}

func initialize(ctx context.Context) (*app.Components, error) {
	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	return components, err
}

func run(opts ...func(*commands.CLI)) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Interface - CLI; components are initialized after flag parsing
	cli := commands.New(initialize)
	cli.SetArgs(os.Args[1:])

	// Apply options
	for _, opt := range opts {
		opt(cli)
	}

	// 2. Execution
	if err := cli.Execute(ctx); err != nil {
		// The logger already reported failed builds.
		if errors.Is(err, domain.ErrBuildExecutionFailed) {
			return 1
		}
		_, _ = fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		return 1
	}
	return 0
}
