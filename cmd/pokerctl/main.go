package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vctt94/pokerledger/pkg/config"
	"github.com/vctt94/pokerledger/pkg/logging"
	"github.com/vctt94/pokerledger/pkg/poker"
	"github.com/vctt94/pokerledger/pkg/server"
	"github.com/vctt94/pokerledger/pkg/store"
	"github.com/vctt94/pokerledger/pkg/utils"
)

const appName = "pokerledger"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pokerctl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("pokerctl", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Reads commands from stdin; type 'help' for the list.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		fs.PrintDefaults()
	}
	cfg, err := config.Load(fs, os.Args[1:], appName)
	if err != nil {
		return err
	}

	if err := utils.EnsureDataDirExists(cfg.DataDir); err != nil {
		return err
	}

	logCfg := cfg.LogConfig()
	logCfg.Console = os.Stderr
	logBackend, err := logging.NewLogBackend(logCfg)
	if err != nil {
		return fmt.Errorf("failed to create log backend: %v", err)
	}
	defer logBackend.Close()
	log := logBackend.Logger(logging.SubsysServer)

	st, err := store.Open(cfg.Store, cfg.DataDir, store.Config{Log: logBackend.Logger(logging.SubsysStore)})
	if err != nil {
		return err
	}
	defer st.Close()

	ranker, err := poker.RankerByName(cfg.Ranker)
	if err != nil {
		return err
	}

	srv := server.NewServer(server.Config{
		Store:            st,
		Ranker:           poker.NewLoggingRanker(ranker, logBackend.Logger(logging.SubsysRanker)),
		AutoAdvanceDelay: cfg.AutoAdvanceDelay,
		AutoStartDelay:   cfg.AutoStartDelay,
	}, logBackend)
	defer srv.Stop()
	srv.AddHandler(server.LogHandler{Log: log})

	if err := srv.LoadAll(); err != nil {
		log.Errorf("Some games could not be loaded: %v", err)
	}
	log.Infof("Using %s store in %s, %d games loaded", cfg.Store, cfg.DataDir, len(srv.Games()))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	done := make(chan error, 1)

	c := newConsole(srv, os.Stdout)
	go func() { done <- c.run(os.Stdin) }()

	select {
	case err := <-done:
		return err
	case sig := <-sigs:
		log.Infof("Received %v, shutting down", sig)
		return nil
	}
}
