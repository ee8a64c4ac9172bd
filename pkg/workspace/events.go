package workspace

// EventKind classifies a workspace event.
type EventKind string

const (
	// EventLoaded follows every graph rebuild.
	EventLoaded EventKind = "loaded"
	// EventSelection follows a click or menu change.
	EventSelection EventKind = "selection"
)

// Event is published to subscribers after each state change.
type Event struct {
	Kind     EventKind `json:"kind"`
	Version  uint64    `json:"version"`
	Snapshot Snapshot  `json:"snapshot"`
}
