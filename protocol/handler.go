package protocol

import (
	"encoding/json"
	"log/slog"

	"github.com/krishanu7/SyncTube/domain"
	"github.com/krishanu7/SyncTube/room"
)

// Handler decodes inbound frames and dispatches them to the registry.
// Rejections go back to the originating connection only; they never
// broadcast and never crash the process.
type Handler struct {
	registry *room.Registry
	events   *room.Broadcaster
}

func NewHandler(registry *room.Registry, events *room.Broadcaster) *Handler {
	return &Handler{registry: registry, events: events}
}

func (h *Handler) Handle(conn domain.Connection, data []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		slog.Warn("invalid message", "connectionId", conn.ID(), "error", err)
		h.reject(conn, domain.RejectInvalidCommand)
		return
	}

	switch env.Type {
	case domain.CmdPing:
		var p domain.PingPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.reject(conn, domain.RejectInvalidCommand)
			return
		}
		if err := h.events.Send(conn.ID(), domain.EvtPong, "", p); err != nil {
			slog.Warn("pong delivery failed", "connectionId", conn.ID(), "error", err)
		}

	case domain.CmdJoin:
		var p domain.JoinPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.RoomID == "" {
			h.reject(conn, domain.RejectInvalidCommand)
			return
		}
		h.registry.Join(conn.ID(), p.DisplayName, p.RoomID, p.AsHost, p.VideoID)
		conn.SetRoom(p.RoomID)

	case domain.CmdChangeVideo:
		var p domain.ChangeVideoPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.VideoID == "" {
			h.reject(conn, domain.RejectInvalidCommand)
			return
		}
		h.apply(conn, domain.ChangeVideo{VideoID: p.VideoID})

	case domain.CmdPlay:
		h.apply(conn, domain.Play{})

	case domain.CmdPause:
		h.apply(conn, domain.Pause{})

	case domain.CmdSeek:
		var p domain.SeekPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.reject(conn, domain.RejectInvalidCommand)
			return
		}
		h.apply(conn, domain.Seek{TimestampSeconds: p.TimestampSeconds})

	case domain.CmdChat:
		var p domain.ChatPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.Text == "" {
			h.reject(conn, domain.RejectInvalidCommand)
			return
		}
		h.apply(conn, domain.Chat{Text: p.Text})

	default:
		slog.Warn("unknown command", "connectionId", conn.ID(), "type", env.Type)
		h.reject(conn, domain.RejectInvalidCommand)
	}
}

func (h *Handler) apply(conn domain.Connection, cmd domain.Command) {
	roomID := conn.Room()
	if roomID == "" {
		h.reject(conn, domain.RejectNotAMember)
		return
	}

	if err := h.registry.Apply(roomID, conn.ID(), cmd); err != nil {
		if rej, ok := domain.AsRejection(err); ok {
			h.reject(conn, rej.Reason)
			return
		}
		slog.Error("apply failed", "connectionId", conn.ID(), "room", roomID, "error", err)
	}
}

func (h *Handler) reject(conn domain.Connection, reason domain.RejectReason) {
	err := h.events.Send(conn.ID(), domain.EvtCommandRejected, "",
		domain.CommandRejectedPayload{Reason: reason})
	if err != nil {
		slog.Warn("rejection delivery failed", "connectionId", conn.ID(), "reason", reason, "error", err)
	}
}
