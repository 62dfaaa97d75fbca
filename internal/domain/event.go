package domain

// EventKind discriminates inbound chat events delivered by the gateway.
type EventKind string

const (
	EventCommand  EventKind = "command"
	EventText     EventKind = "text"
	EventPhoto    EventKind = "photo"
	EventLocation EventKind = "location"
	EventContact  EventKind = "contact"
	EventCallback EventKind = "callback"
)

// Contact is a shared phone contact. UserID identifies whose contact was
// shared; verification only accepts the sender's own.
type Contact struct {
	Phone  string `json:"phone"`
	UserID int64  `json:"user_id"`
}

// Event is the inbound union the dispatcher routes on. Exactly one payload
// field is meaningful for a given Kind.
type Event struct {
	UserID    int64     `json:"user_id"`
	Kind      EventKind `json:"kind"`
	Command   string    `json:"command,omitempty"`
	Text      string    `json:"text,omitempty"`
	PhotoID   string    `json:"photo_id,omitempty"`
	Location  *Location `json:"location,omitempty"`
	Contact   *Contact  `json:"contact,omitempty"`
	Callback  string    `json:"callback,omitempty"`
	Username  string    `json:"username,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
}
