package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "netreq: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root, state := newRootCmd()
	err := root.ExecuteContext(ctx)
	if cerr := state.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
