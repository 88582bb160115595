package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sidebet/cmd"
	"sidebet/database"

	log "github.com/sirupsen/logrus"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "migrate" {
		if err := runMigrateCommand(args[1:]); err != nil {
			log.WithError(err).Fatal("Migration error")
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx); err != nil {
		log.WithError(err).Fatal("Application error")
	}
}

func runMigrateCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: sidebet migrate [up|down|status] [steps]")
	}

	switch args[0] {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}
