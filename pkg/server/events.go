package server

import (
	"sync"
	"time"

	"github.com/decred/slog"

	"github.com/vctt94/pokerledger/pkg/events"
	"github.com/vctt94/pokerledger/pkg/game"
)

// GameEventType represents the type of game event
type GameEventType string

const (
	// GameEventTypeAppended carries one event appended to a game's log.
	GameEventTypeAppended GameEventType = "event_appended"
	// GameEventTypeTableState carries the table state after a command.
	GameEventTypeTableState GameEventType = "table_state"
	// GameEventTypeGameRemoved is sent when a game's last seat empties.
	GameEventTypeGameRemoved GameEventType = "game_removed"
)

// GameEvent is an immutable notification about one game.
type GameEvent struct {
	Type      GameEventType
	GameID    string
	Event     events.Event     // set for GameEventTypeAppended
	State     *game.TableState // set for GameEventTypeTableState
	Timestamp time.Time
}

// NotificationHandler receives every published GameEvent.
type NotificationHandler interface {
	HandleEvent(ev *GameEvent)
}

// NotificationHandlerFunc adapts a function to NotificationHandler.
type NotificationHandlerFunc func(ev *GameEvent)

// HandleEvent calls f.
func (f NotificationHandlerFunc) HandleEvent(ev *GameEvent) { f(ev) }

// EventProcessor manages the processing of game events
type EventProcessor struct {
	log      slog.Logger
	queue    chan *GameEvent
	workers  []*eventWorker
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex

	handlersMu sync.RWMutex
	handlers   []NotificationHandler
}

// eventWorker processes events from the queue
type eventWorker struct {
	id        int
	processor *EventProcessor
}

// NewEventProcessor creates a new event processor. With more than one
// worker, handlers may observe events out of order.
func NewEventProcessor(log slog.Logger, queueSize, workerCount int) *EventProcessor {
	if log == nil {
		log = slog.Disabled
	}
	if workerCount < 1 {
		workerCount = 1
	}
	processor := &EventProcessor{
		log:      log,
		queue:    make(chan *GameEvent, queueSize),
		stopChan: make(chan struct{}),
	}

	processor.workers = make([]*eventWorker, workerCount)
	for i := 0; i < workerCount; i++ {
		processor.workers[i] = &eventWorker{id: i, processor: processor}
	}

	return processor
}

// AddHandler registers h for every event processed from now on.
func (ep *EventProcessor) AddHandler(h NotificationHandler) {
	ep.handlersMu.Lock()
	defer ep.handlersMu.Unlock()
	ep.handlers = append(ep.handlers, h)
}

// Start begins processing events
func (ep *EventProcessor) Start() {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	if ep.started {
		return
	}

	ep.started = true
	ep.log.Debugf("Starting event processor with %d workers", len(ep.workers))

	for _, worker := range ep.workers {
		ep.wg.Add(1)
		go worker.run()
	}
}

// Stop drains queued events and stops the workers.
func (ep *EventProcessor) Stop() {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	if !ep.started {
		return
	}

	ep.log.Debugf("Stopping event processor...")
	close(ep.stopChan)
	ep.wg.Wait()

	ep.started = false
	ep.log.Debugf("Event processor stopped")
}

// PublishEvent queues event for the handlers. It never blocks: when the
// queue is full the event is dropped and logged.
func (ep *EventProcessor) PublishEvent(event *GameEvent) {
	ep.mu.Lock()
	started := ep.started
	ep.mu.Unlock()

	if !started {
		ep.log.Warnf("Event processor not started, dropping event: %v", event.Type)
		return
	}

	select {
	case ep.queue <- event:
	default:
		ep.log.Errorf("Event queue full, dropping event: %s for game %s", event.Type, event.GameID)
	}
}

// run executes the worker loop
func (w *eventWorker) run() {
	defer w.processor.wg.Done()
	w.processor.log.Tracef("Event worker %d started", w.id)

	for {
		select {
		case <-w.processor.stopChan:
			// Drain what is already queued so shutdown loses nothing.
			for {
				select {
				case event := <-w.processor.queue:
					w.processEvent(event)
				default:
					w.processor.log.Tracef("Event worker %d stopping", w.id)
					return
				}
			}

		case event := <-w.processor.queue:
			w.processEvent(event)
		}
	}
}

// processEvent processes a single event using all registered handlers
func (w *eventWorker) processEvent(event *GameEvent) {
	if event == nil {
		return
	}
	w.processor.handlersMu.RLock()
	handlers := w.processor.handlers
	w.processor.handlersMu.RUnlock()

	for _, h := range handlers {
		w.handle(h, event)
	}
}

func (w *eventWorker) handle(h NotificationHandler, event *GameEvent) {
	defer func() {
		if r := recover(); r != nil {
			w.processor.log.Errorf("notification handler panicked on %s for game %s: %v",
				event.Type, event.GameID, r)
		}
	}()
	h.HandleEvent(event)
}
