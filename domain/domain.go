package domain

// Connection is a live client connection as seen by the server core.
// Room is session state set by the protocol layer after a successful join;
// the registry's membership map stays authoritative.
type Connection interface {
	ID() string
	Room() string
	SetRoom(roomID string)
	Send(data []byte) error
	Close() error
}

// Sender delivers an encoded frame to a single connection by ID.
// Delivery to an unknown or closed connection returns an error and must
// never panic.
type Sender interface {
	Send(connID string, data []byte) error
}

// Registrar tracks connection lifetime for the transport adapter.
type Registrar interface {
	Add(conn Connection)
	Remove(connID string)
}

// MessageHandler processes one inbound frame from a connection.
type MessageHandler interface {
	Handle(conn Connection, data []byte)
}

// Member is one room participant as exposed to clients.
type Member struct {
	ConnectionID string `json:"connectionId"`
	DisplayName  string `json:"displayName"`
}
