package room

import (
	"log/slog"

	"github.com/krishanu7/SyncTube/domain"
)

// Broadcaster fans room events out through the gateway. Fan-out is
// O(members) with no per-member waiting: sends land in each
// connection's outbound buffer and delivery failures are logged, never
// propagated to the command path.
type Broadcaster struct {
	sender domain.Sender
}

func NewBroadcaster(s domain.Sender) *Broadcaster {
	return &Broadcaster{sender: s}
}

// Publish delivers the event to every listed member, optionally
// skipping one connection. The envelope is encoded once.
func (b *Broadcaster) Publish(members []domain.Member, eventType, origin string, payload any, exclude string) {
	env, err := domain.NewEvent(eventType, origin, payload)
	if err != nil {
		slog.Error("encode event", "event", eventType, "error", err)
		return
	}
	data, err := env.Encode()
	if err != nil {
		slog.Error("encode envelope", "event", eventType, "error", err)
		return
	}

	for _, m := range members {
		if m.ConnectionID == exclude {
			continue
		}
		if err := b.sender.Send(m.ConnectionID, data); err != nil {
			slog.Warn("delivery failed", "event", eventType, "connectionId", m.ConnectionID, "error", err)
		}
	}
}

// Send delivers the event to a single connection.
func (b *Broadcaster) Send(connID, eventType, origin string, payload any) error {
	env, err := domain.NewEvent(eventType, origin, payload)
	if err != nil {
		return err
	}
	data, err := env.Encode()
	if err != nil {
		return err
	}
	return b.sender.Send(connID, data)
}
