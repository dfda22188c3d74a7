// Package main is the entry point for the symposium registration server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "symposium/docs"
)

// Build information injected via ldflags at build time.
var version = "dev"

// @title Symposium API
// @version 1.0
// @description Event catalog, cart and registration for the symposium website.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
