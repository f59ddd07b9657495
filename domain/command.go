package domain

// Command is a room-scoped client command after decoding. Join is not a
// Command: it targets the registry, not an existing room's state machine.
type Command interface {
	isCommand()
}

type ChangeVideo struct {
	VideoID string
}

type Play struct{}

type Pause struct{}

type Seek struct {
	TimestampSeconds float64
}

type Chat struct {
	Text string
}

func (ChangeVideo) isCommand() {}
func (Play) isCommand()        {}
func (Pause) isCommand()       {}
func (Seek) isCommand()        {}
func (Chat) isCommand()        {}
