package core

// DefaultEventBuffer is the outbound queue length of a client.
const DefaultEventBuffer = 64

// Client is one live transport connection as seen by the core layer.
// The transport writes Commands and drains Events; the hub owns everything else.
type Client struct {
	ID       string
	Commands chan *Command
	Events   chan *Event

	// playerID is the identity bound to this connection, set by the hub.
	playerID string
}

// NewClient constructs a client with initialized channels.
func NewClient(id string, eventBuffer int) *Client {
	if eventBuffer <= 0 {
		eventBuffer = DefaultEventBuffer
	}
	return &Client{
		ID:       id,
		Commands: make(chan *Command, 16),
		Events:   make(chan *Event, eventBuffer),
	}
}
