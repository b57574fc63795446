// Package main is the entry point for the taskboard CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"taskboard/internal/backend/taskapi"
	"taskboard/internal/cli"
	"taskboard/internal/commands"
	"taskboard/internal/config"
	"taskboard/internal/session"
	"taskboard/internal/storage"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// The session and the client refer to each other: the client reads the
	// token from the session and tears it down on a 401.
	factory := func(ctx context.Context, cfg *config.Config) (*commands.Env, error) {
		store := storage.NewFileStore(cfg.TokenPath())
		mgr := session.New(nil, store, session.WithLogger(cfg.Logger))
		client := taskapi.New(cfg, mgr, taskapi.WithUnauthorizedHandler(mgr.Invalidate))
		mgr.SetAuth(client)
		return &commands.Env{
			Config:  cfg,
			Session: mgr,
			Service: client,
			In:      os.Stdin,
		}, nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}
