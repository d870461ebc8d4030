package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/fitkeeper/internal/cli"
	"github.com/dmitrijs2005/fitkeeper/internal/logging"
	"github.com/dmitrijs2005/fitkeeper/internal/server"
	"github.com/dmitrijs2005/fitkeeper/internal/server/config"
	"github.com/dmitrijs2005/fitkeeper/internal/server/repositories/repomanager"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	switch cli.Command(args) {
	case "":
		cli.Usage(os.Stderr)
		return 2
	case "help":
		cli.Usage(os.Stdout)
		return 0
	}

	cfg, err := config.Load(args, os.LookupEnv)
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}

	logger, err := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Printf("logger: %v", err)
		return 1
	}

	rm := repomanager.NewPostgresRepositoryManager()
	db, err := server.OpenStorage(ctx, cfg, rm, logger)
	if err != nil {
		log.Printf("%v", err)
		return 1
	}
	defer db.Close()

	accounts, err := server.NewAccountService(cfg, db, rm, server.NewTokenService(cfg), logger)
	if err != nil {
		log.Printf("%v", err)
		return 1
	}

	if err := cli.NewApp(accounts, os.Stdout).Run(ctx, args); err != nil {
		log.Printf("error: %v", err)
		if errors.Is(err, cli.ErrUsage) {
			return 2
		}
		return 1
	}
	return 0
}
