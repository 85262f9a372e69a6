// The apiserver command serves recorded artifact runs over HTTP.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/kongove/scylla-artifact-tests/api"
	"github.com/kongove/scylla-artifact-tests/common/stopper"
	"github.com/kongove/scylla-artifact-tests/database"

	// Register database driver.
	_ "github.com/kongove/scylla-artifact-tests/database/pgsql"
)

func waitForSignals(signals ...os.Signal) {
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, signals...)
	<-interrupts
}

// Boot starts the API services and blocks until interrupted.
func Boot(config *Config) {
	st := stopper.NewStopper()

	db, err := database.Open(config.Database)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	st.Begin()
	go api.Run(config.API, db, st)
	st.Begin()
	go api.RunHealth(config.API, db, st)

	waitForSignals(syscall.SIGINT, syscall.SIGTERM)
	log.Info("Received interruption, gracefully stopping ...")
	st.Stop()
}

func main() {
	flagConfigPath := flag.String("config", "/etc/scylla-artifacts/config.yaml", "Load configuration from the specified file.")
	flagLogLevel := flag.String("log-level", "info", "Define the logging level.")
	flag.Parse()

	level, err := log.ParseLevel(*flagLogLevel)
	if err != nil {
		log.WithError(err).Fatal("failed to parse the log level")
	}
	log.SetLevel(level)

	config, err := LoadConfig(*flagConfigPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	Boot(config)
}
