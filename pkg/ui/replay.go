package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vctt94/pokerledger/pkg/events"
	"github.com/vctt94/pokerledger/pkg/game"
	"github.com/vctt94/pokerledger/pkg/utils"
)

// ReplayModel steps through a persisted game log, showing the table as it
// was after each event.
type ReplayModel struct {
	gameID  string
	history []events.Event
	pos     int // events applied

	state game.TableState
	next  game.NextAction
}

// NewReplayModel positions the replay at the end of history.
func NewReplayModel(gameID string, history []events.Event) ReplayModel {
	m := ReplayModel{gameID: gameID, history: history}
	return m.seek(len(history))
}

// Pos returns how many events are applied.
func (m ReplayModel) Pos() int { return m.pos }

// State returns the table state at the current position.
func (m ReplayModel) State() game.TableState { return m.state }

func (m ReplayModel) seek(pos int) ReplayModel {
	if pos < 0 {
		pos = 0
	}
	if pos > len(m.history) {
		pos = len(m.history)
	}
	g := game.RestoreGame(game.GameConfig{ID: m.gameID}, m.history[:pos])
	m.pos = pos
	m.state = g.State()
	m.next = g.NextAction()
	return m
}

// nextRound returns the position just past the next RoundStarted.
func (m ReplayModel) nextRound() int {
	for i := m.pos; i < len(m.history); i++ {
		if _, ok := m.history[i].(events.RoundStarted); ok {
			return i + 1
		}
	}
	return len(m.history)
}

// prevRound returns the position just past the previous RoundStarted.
func (m ReplayModel) prevRound() int {
	for i := m.pos - 2; i >= 0; i-- {
		if _, ok := m.history[i].(events.RoundStarted); ok {
			return i + 1
		}
	}
	return 0
}

func (m ReplayModel) Init() tea.Cmd { return nil }

func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "right", "l", " ":
		return m.seek(m.pos + 1), nil
	case "left", "h":
		return m.seek(m.pos - 1), nil
	case "down", "j":
		return m.seek(m.nextRound()), nil
	case "up", "k":
		return m.seek(m.prevRound()), nil
	case "home", "g":
		return m.seek(0), nil
	case "end", "G":
		return m.seek(len(m.history)), nil
	}
	return m, nil
}

func (m ReplayModel) View() string {
	s := RenderTable(m.state, m.next) + "\n"

	last := "start of log"
	if m.pos > 0 {
		last = utils.DescribeEvent(m.history[m.pos-1])
	}
	s += FocusedStyle.Render(fmt.Sprintf("Event %d/%d: %s", m.pos, len(m.history), last)) + "\n"
	s += HelpStyle.Render("←/→ step, ↑/↓ previous/next round, g/G start/end, q quit")
	return s
}
