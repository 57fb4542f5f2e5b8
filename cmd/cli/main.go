package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/carshow/internal/admincli"
	"github.com/dmitrijs2005/carshow/internal/logging"
	"github.com/dmitrijs2005/carshow/internal/server"
	"github.com/dmitrijs2005/carshow/internal/server/config"
	"github.com/dmitrijs2005/carshow/internal/server/mail"
	"github.com/dmitrijs2005/carshow/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/carshow/internal/server/services"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	db, err := server.OpenDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	um := repomanager.NewPostgresRepositoryManager()
	logger := logging.New(os.Stderr, cfg.LogLevel)
	admins := services.NewAdminService(db, um, nil, mail.Composer{EventName: cfg.EventName}, cfg, logger)

	app := admincli.NewApp(admins, func(ctx context.Context) error {
		return um.RunMigrations(ctx, db)
	}, os.Stdin, os.Stdout)

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		db.Close()
		log.Fatalf("%v", err)
	}
}

