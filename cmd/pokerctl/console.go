package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/davecgh/go-spew/spew"

	"github.com/vctt94/pokerledger/pkg/server"
	"github.com/vctt94/pokerledger/pkg/ui"
	"github.com/vctt94/pokerledger/pkg/utils"
)

var errQuit = errors.New("quit")

const helpText = `Commands:
  join GAME PLAYER [NAME]   seat a player, creating the game if needed
  leave GAME PLAYER         leave the table, forfeiting a hand in progress
  start GAME [SEED]         start a round
  bet GAME PLAYER AMOUNT    bet or raise
  call GAME PLAYER          match the current bet
  check GAME PLAYER         check
  fold GAME PLAYER          fold
  flop|turn|river GAME      deal the next street
  finish GAME               settle the showdown
  show GAME                 print the table
  dump GAME                 print the raw table state
  games                     list live games
  help                      this text
  quit                      exit`

type console struct {
	srv *server.Server

	mu  sync.Mutex
	out io.Writer
}

func newConsole(srv *server.Server, out io.Writer) *console {
	return &console{srv: srv, out: out}
}

func (c *console) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// run executes commands read from r until EOF or quit.
func (c *console) run(r io.Reader) error {
	sub := c.srv.Subscribe(256)
	defer sub.Close()
	go c.watch(sub)

	scanner := bufio.NewScanner(r)
	c.printf("> ")
	for scanner.Scan() {
		err := c.exec(scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			c.printf("%s\n", ui.ErrorStyle.Render("error: "+err.Error()))
		}
		c.printf("> ")
	}
	return scanner.Err()
}

// watch prints appended events as they arrive, including those produced by
// delayed actions.
func (c *console) watch(sub *server.Subscriber) {
	for ev := range sub.C() {
		switch ev.Type {
		case server.GameEventTypeAppended:
			c.printf("%s\n", ui.BlurredStyle.Render(fmt.Sprintf("[%s] %s", ev.GameID, utils.DescribeEvent(ev.Event))))
		case server.GameEventTypeGameRemoved:
			c.printf("%s\n", ui.BlurredStyle.Render(fmt.Sprintf("[%s] game removed", ev.GameID)))
		}
	}
}

func need(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("usage: %s", usage)
	}
	return nil
}

// exec runs one command line.
func (c *console) exec(line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(args[0]), args[1:]

	var gameID string
	if len(args) > 0 {
		gameID = args[0]
	}

	var err error
	switch cmd {
	case "quit", "exit":
		return errQuit
	case "help":
		c.printf("%s\n", helpText)
		return nil
	case "games":
		for _, id := range c.srv.Games() {
			c.printf("%s\n", id)
		}
		return nil
	case "show":
		if err := need(args, 1, "show GAME"); err != nil {
			return err
		}
		return c.show(gameID)
	case "dump":
		if err := need(args, 1, "dump GAME"); err != nil {
			return err
		}
		st, err := c.srv.State(gameID)
		if err != nil {
			return err
		}
		c.mu.Lock()
		spew.Fdump(c.out, st)
		c.mu.Unlock()
		return nil

	case "join":
		if err = need(args, 2, "join GAME PLAYER [NAME]"); err != nil {
			return err
		}
		name := args[1]
		if len(args) > 2 {
			name = strings.Join(args[2:], " ")
		}
		err = c.srv.Join(gameID, args[1], name)
	case "leave":
		if err = need(args, 2, "leave GAME PLAYER"); err != nil {
			return err
		}
		if err = c.srv.Leave(gameID, args[1]); err == nil {
			if _, stErr := c.srv.State(gameID); errors.Is(stErr, server.ErrGameNotFound) {
				c.printf("game %s closed\n", gameID)
				return nil
			}
		}
	case "start":
		if err = need(args, 1, "start GAME [SEED]"); err != nil {
			return err
		}
		var seed string
		if len(args) > 1 {
			seed = args[1]
		}
		err = c.srv.StartRound(gameID, seed)
	case "bet":
		if err = need(args, 3, "bet GAME PLAYER AMOUNT"); err != nil {
			return err
		}
		amount, perr := strconv.ParseInt(args[2], 10, 64)
		if perr != nil || amount < 0 {
			return fmt.Errorf("invalid amount %q", args[2])
		}
		err = c.srv.Bet(gameID, args[1], amount)
	case "call":
		if err = need(args, 2, "call GAME PLAYER"); err != nil {
			return err
		}
		err = c.srv.Call(gameID, args[1])
	case "check":
		if err = need(args, 2, "check GAME PLAYER"); err != nil {
			return err
		}
		err = c.srv.Check(gameID, args[1])
	case "fold":
		if err = need(args, 2, "fold GAME PLAYER"); err != nil {
			return err
		}
		err = c.srv.Fold(gameID, args[1])
	case "flop", "turn", "river", "finish":
		if err = need(args, 1, cmd+" GAME"); err != nil {
			return err
		}
		switch cmd {
		case "flop":
			err = c.srv.DealFlop(gameID)
		case "turn":
			err = c.srv.DealTurn(gameID)
		case "river":
			err = c.srv.DealRiver(gameID)
		default:
			err = c.srv.Finish(gameID)
		}
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	if err != nil {
		return err
	}
	return c.show(gameID)
}

func (c *console) show(gameID string) error {
	g, ok := c.srv.Registry().Get(gameID)
	if !ok {
		return server.ErrGameNotFound
	}
	c.printf("%s", ui.RenderTable(g.State(), g.NextAction()))
	return nil
}
