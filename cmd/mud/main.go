package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lawnchairsociety/hearthmud/internal/config"
	"github.com/lawnchairsociety/hearthmud/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	configFile := flag.String("config", "config/server.yaml", "Path to server config YAML file")
	envFile := flag.String("env", ".env", "Path to .env file")
	console := flag.Bool("console", false, "Read operator commands (start, stop, status, create-db, exit) from stdin")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [create-db]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load %s: %v\n", *envFile, err)
		return 1
	}
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log := logger.New(cfg.Logging)
	defer log.Close()

	a := newApp(cfg, log.Logger)
	defer a.close()

	switch flag.Arg(0) {
	case "":
	case "create-db":
		if err := a.createDB(); err != nil {
			log.Error("Failed to create database", "error", err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", flag.Arg(0))
		flag.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *console {
		if err := a.runConsole(ctx, os.Stdin, os.Stdout); err != nil {
			log.Error("Console stopped", "error", err)
			return 1
		}
		return 0
	}

	if err := a.start(ctx); err != nil {
		log.Error("Failed to start server", "error", err)
		return 1
	}
	log.Info("MUD server running, press Ctrl+C to shut down")
	<-ctx.Done()
	log.Info("Shutting down server")
	return 0
}
