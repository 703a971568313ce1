package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventQueryDispatched       EventType = "QueryDispatched"
	EventResultsRendered       EventType = "ResultsRendered"
	EventSearchReset           EventType = "SearchReset"
	EventDropdownToggled       EventType = "DropdownToggled"
	EventSelectionChanged      EventType = "SelectionChanged"
	EventNavigationRequested   EventType = "NavigationRequested"
	EventRecentlyViewedCleared EventType = "RecentlyViewedCleared"
	EventError                 EventType = "Error"
	EventConfigChanged         EventType = "ConfigChanged"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// QueryDispatchedEvent is emitted when a debounced term is sent to the renderer
type QueryDispatchedEvent struct {
	SessionID string
	Term      string
	TokenID   uint64
}

func (e QueryDispatchedEvent) Type() EventType { return EventQueryDispatched }

// ResultsRenderedEvent is emitted after a fragment has been applied to the results subtree
type ResultsRenderedEvent struct {
	SessionID string
	Term      string // empty for the empty state
	Items     int
}

func (e ResultsRenderedEvent) Type() EventType { return EventResultsRendered }

// SearchResetEvent is emitted when the empty state has been applied
type SearchResetEvent struct {
	SessionID      string
	RecentlyViewed int
}

func (e SearchResetEvent) Type() EventType { return EventSearchReset }

// DropdownToggledEvent is emitted on every open/closed transition
type DropdownToggledEvent struct {
	SessionID string
	Open      bool
}

func (e DropdownToggledEvent) Type() EventType { return EventDropdownToggled }

// SelectionChangedEvent is emitted when keyboard selection moves
type SelectionChangedEvent struct {
	SessionID string
	OldIndex  int
	NewIndex  int
}

func (e SelectionChangedEvent) Type() EventType { return EventSelectionChanged }

// NavigationRequestedEvent is emitted when the controller navigates away
type NavigationRequestedEvent struct {
	SessionID string
	URL       string
	Reason    NavigationReason
}

func (e NavigationRequestedEvent) Type() EventType { return EventNavigationRequested }

// RecentlyViewedClearedEvent is the "clear recently viewed" action event
type RecentlyViewedClearedEvent struct {
	SessionID string
}

func (e RecentlyViewedClearedEvent) Type() EventType { return EventRecentlyViewedCleared }

// ErrorEvent is emitted when an error is surfaced to the page level
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigChangedEvent is emitted when the config file changes on disk
type ConfigChangedEvent struct {
	Path string
}

func (e ConfigChangedEvent) Type() EventType { return EventConfigChanged }
