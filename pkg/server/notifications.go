package server

import (
	"sync"

	"github.com/decred/slog"

	"github.com/vctt94/pokerledger/pkg/utils"
)

// LogHandler writes a line per notification.
type LogHandler struct {
	Log slog.Logger
}

// HandleEvent implements NotificationHandler.
func (h LogHandler) HandleEvent(ev *GameEvent) {
	switch ev.Type {
	case GameEventTypeAppended:
		h.Log.Debugf("[%s] %s", ev.GameID, utils.DescribeEvent(ev.Event))
	case GameEventTypeTableState:
		h.Log.Tracef("[%s] phase %s, pot %d", ev.GameID, ev.State.Phase, ev.State.PotTotal)
	case GameEventTypeGameRemoved:
		h.Log.Infof("[%s] game removed", ev.GameID)
	}
}

// Subscriber delivers notifications on a buffered channel. Notifications
// arriving while the buffer is full are dropped.
type Subscriber struct {
	log    slog.Logger
	ch     chan *GameEvent
	mu     sync.Mutex
	closed bool
}

// Subscribe registers a subscriber with a buffer of size n. Call Close to
// stop delivery.
func (s *Server) Subscribe(n int) *Subscriber {
	sub := &Subscriber{log: s.log, ch: make(chan *GameEvent, n)}
	s.AddHandler(sub)
	return sub
}

// C returns the notification channel. It is closed by Close.
func (sub *Subscriber) C() <-chan *GameEvent { return sub.ch }

// HandleEvent implements NotificationHandler.
func (sub *Subscriber) HandleEvent(ev *GameEvent) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	select {
	case sub.ch <- ev:
	default:
		sub.log.Warnf("Subscriber buffer full, dropping %s for game %s", ev.Type, ev.GameID)
	}
}

// Close stops delivery and closes the channel.
func (sub *Subscriber) Close() {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
}
