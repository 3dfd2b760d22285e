package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"justapengu.in/acmonitor/internal/acmonitor"
)

var (
	configPath string
	debug      bool
)

func init() {
	flag.StringVar(&configPath, "c", "./monitor.yml", "config path")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.Parse()
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.Infof("Starting acMonitor")

	config, err := acmonitor.LoadConfig(configPath)

	if err != nil {
		logger.WithError(err).Fatalf("Could not read config at %s", configPath)
	}

	monitor, err := acmonitor.NewMonitor(config, logger)

	if err != nil {
		logger.WithError(err).Fatal("Could not initialise monitor")
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	go func() {
		<-c
		logger.Infof("Shutting down")
		cancel()
	}()

	if err := monitor.Run(ctx); err != nil {
		logger.WithError(err).Fatal("Could not run monitor")
	}

	logger.Infof("Monitor stopped. Exiting")
}
