package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/hermes/api"
	"github.com/carson-networks/hermes/internal/config"
	"github.com/carson-networks/hermes/internal/logging"
	"github.com/carson-networks/hermes/internal/operator"
	"github.com/carson-networks/hermes/internal/service"
	"github.com/carson-networks/hermes/internal/tables"
)

func main() {
	config.LoadDotEnv(".env", ".env.local")

	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}

	logger := logging.SetupLogging(envConfig.LogLevel)
	logger.Info("hermes starting")

	initial := tables.Default()
	if envConfig.TablesFile != "" {
		initial, err = tables.LoadFile(envConfig.TablesFile)
		if err != nil {
			logger.WithError(err).Fatal("tables.LoadFile")
			return
		}
	}

	store, err := tables.NewStore(initial)
	if err != nil {
		logger.WithError(err).Fatal("tables.NewStore")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if envConfig.WatchTables {
		if err := tables.Watch(ctx, envConfig.TablesFile, store, logger); err != nil {
			logger.WithError(err).Fatal("tables.Watch")
			return
		}
	}

	svc := service.NewService(store)

	delegator := operator.NewOperatorDelegator(svc.Pipeline, envConfig.BatchWorkers)
	delegator.Start()
	defer delegator.Stop()

	httpRest := api.Rest{
		Logger:   logger,
		Port:     envConfig.Port,
		Service:  svc,
		Tables:   store,
		Operator: delegator,
	}
	httpRest.Serve(ctx)
}
