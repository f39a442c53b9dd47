package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vctt94/pokerledger/pkg/config"
	"github.com/vctt94/pokerledger/pkg/logging"
	"github.com/vctt94/pokerledger/pkg/store"
	"github.com/vctt94/pokerledger/pkg/ui"
)

const appName = "pokerledger"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pokerreplay: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("pokerreplay", flag.ContinueOnError)
	gameID := fs.String("game", "", "Game to replay; empty lists the persisted games")
	cfg, err := config.Load(fs, os.Args[1:], appName)
	if err != nil {
		return err
	}

	// The viewer owns the terminal; log to the file only.
	logCfg := cfg.LogConfig()
	logCfg.Console = io.Discard
	logBackend, err := logging.NewLogBackend(logCfg)
	if err != nil {
		return fmt.Errorf("failed to create log backend: %v", err)
	}
	defer logBackend.Close()

	st, err := store.Open(cfg.Store, cfg.DataDir, store.Config{Log: logBackend.Logger(logging.SubsysStore)})
	if err != nil {
		return err
	}
	defer st.Close()

	if *gameID == "" {
		ids, err := st.GameIDs()
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	}

	history, err := st.Load(*gameID)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("game %s has no events", *gameID)
	}

	p := tea.NewProgram(ui.NewReplayModel(*gameID, history), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
