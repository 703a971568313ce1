package domain

// NavigationReason records which Enter/click rule produced a navigation
type NavigationReason string

const (
	NavigateSingleResult NavigationReason = "single_result"
	NavigateSelection    NavigationReason = "selection"
	NavigateSearchPage   NavigationReason = "search_page"
	NavigateClick        NavigationReason = "click"
)

// InteractionMode is reflected on the input as data-interaction-mode
type InteractionMode string

const (
	InteractionKeyboard InteractionMode = "keyboard"
	InteractionMouse    InteractionMode = "mouse"
)

// ResultItem is a read-only view of one navigable result
type ResultItem struct {
	Group     string
	Title     string
	URL       string
	ProductID string
	Action    string // e.g. "clear-recently-viewed"
	Selected  bool
	Active    bool
}
