package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/carson-networks/hermes/internal/config"
	"github.com/carson-networks/hermes/internal/logging"
)

func main() {
	config.LoadDotEnv(".env", ".env.local")

	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}

	// stdout carries command output
	logger := logging.SetupLogging(envConfig.LogLevel)
	logger.Out = os.Stderr

	if err := newApp(envConfig, logger).Run(os.Args); err != nil {
		logger.WithError(err).Fatal("hermesctl")
	}
}

func newApp(envConfig *config.Config, logger *logrus.Logger) *cli.App {
	return &cli.App{
		Name:  "hermesctl",
		Usage: "generate, upload and score transaction files",
		Commands: []*cli.Command{
			generateCommand(logger),
			uploadCommand(envConfig, logger),
			batchCommand(envConfig, logger),
			tablesCommand(envConfig),
		},
	}
}
