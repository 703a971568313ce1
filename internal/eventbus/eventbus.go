package eventbus

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/rohanthewiz/logger"

	"storesearch/internal/domain"
)

// Re-export domain types for convenience
type DomainEvent = domain.DomainEvent
type EventType = domain.EventType

// Event type constants
const (
	EventQueryDispatched       = domain.EventQueryDispatched
	EventResultsRendered       = domain.EventResultsRendered
	EventSearchReset           = domain.EventSearchReset
	EventDropdownToggled       = domain.EventDropdownToggled
	EventSelectionChanged      = domain.EventSelectionChanged
	EventNavigationRequested   = domain.EventNavigationRequested
	EventRecentlyViewedCleared = domain.EventRecentlyViewedCleared
	EventError                 = domain.EventError
	EventConfigChanged         = domain.EventConfigChanged
)

// Re-export domain event types
type QueryDispatchedEvent = domain.QueryDispatchedEvent
type ResultsRenderedEvent = domain.ResultsRenderedEvent
type SearchResetEvent = domain.SearchResetEvent
type DropdownToggledEvent = domain.DropdownToggledEvent
type SelectionChangedEvent = domain.SelectionChangedEvent
type NavigationRequestedEvent = domain.NavigationRequestedEvent
type RecentlyViewedClearedEvent = domain.RecentlyViewedClearedEvent
type ErrorEvent = domain.ErrorEvent
type ConfigChangedEvent = domain.ConfigChangedEvent

// EventHandler is a function that handles domain events
type EventHandler func(DomainEvent)

// EventBus is the interface for the event bus
type EventBus interface {
	Publish(event DomainEvent)
	Subscribe(eventType EventType, handler EventHandler) func()
	Close()
}

type subscription struct {
	id      uint64
	handler EventHandler
}

// bus is the concrete implementation of EventBus
type bus struct {
	mu        sync.RWMutex
	handlers  map[EventType][]subscription
	nextID    uint64
	eventChan chan DomainEvent
	wg        sync.WaitGroup
	quit      chan struct{}
	closeOnce sync.Once
}

// New creates a new event bus
func New() EventBus {
	b := &bus{
		handlers:  make(map[EventType][]subscription),
		eventChan: make(chan DomainEvent, 1000),
		quit:      make(chan struct{}),
	}

	// Start the event dispatcher
	b.wg.Add(1)
	go b.dispatch()

	return b
}

// Publish publishes an event to all subscribers
func (b *bus) Publish(event DomainEvent) {
	switch event.Type() {
	case EventSelectionChanged, EventDropdownToggled:
		// too chatty for the log
	default:
		logger.Debug("EventBus: publishing event", "type", string(event.Type()))
	}

	select {
	case <-b.quit:
		return
	default:
	}

	select {
	case b.eventChan <- event:
	default:
		logger.Info("Event bus channel full, dropping event", "type", string(event.Type()))
	}
}

// Subscribe subscribes to events of a specific type
// Returns an unsubscribe function
func (b *bus) Subscribe(eventType EventType, handler EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.handlers[eventType]
		for i, s := range subs {
			if s.id == id {
				b.handlers[eventType] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Close stops the dispatcher and waits for in-flight handlers to return
func (b *bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
	})
	b.wg.Wait()
}

// dispatch handles event distribution to subscribers
func (b *bus) dispatch() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.eventChan:
			b.mu.RLock()
			subs := make([]subscription, len(b.handlers[event.Type()]))
			copy(subs, b.handlers[event.Type()])
			b.mu.RUnlock()

			for _, s := range subs {
				b.wg.Add(1)
				go func(h EventHandler, eventType EventType) {
					defer b.wg.Done()
					defer func() {
						if r := recover(); r != nil {
							logger.LogErr(fmt.Errorf("%v", r), "event handler panic",
								"type", string(eventType), "stack", string(debug.Stack()))
						}
					}()
					h(event)
				}(s.handler, event.Type())
			}

		case <-b.quit:
			// Drain remaining events
			for {
				select {
				case <-b.eventChan:
				default:
					return
				}
			}
		}
	}
}
