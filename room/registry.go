package room

import (
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/krishanu7/SyncTube/domain"
)

// Registry owns every Room and is the single serialization point for
// room mutations: Join, Leave and Apply each run as one non-interleaved
// step under the registry mutex, and events are published while it is
// held so every member observes room events in apply order. Sends are
// non-blocking buffer pushes, so holding the mutex through fan-out is
// bounded.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	byConn map[string]string
	events *Broadcaster
}

func NewRegistry(events *Broadcaster) *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		byConn: make(map[string]string),
		events: events,
	}
}

// Join adds the connection to roomID, creating the room if absent. A
// connection belongs to at most one room, so any previous membership is
// left first. The host seat is granted only when asHost is set and the
// seat is empty at this moment; a granted host may seed the room's
// video. The joiner receives a full snapshot, everyone else a
// memberJoined event.
func (r *Registry) Join(connID, displayName, roomID string, asHost bool, videoID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(connID)

	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &Room{id: roomID}
		r.rooms[roomID] = rm
		slog.Info("room created", "room", roomID)
	}

	rm.members = append(rm.members, domain.Member{ConnectionID: connID, DisplayName: displayName})
	r.byConn[connID] = roomID

	if asHost && rm.hostID == "" {
		rm.hostID = connID
		if videoID != "" {
			rm.videoID = videoID
			rm.position = 0
		}
	}

	slog.Info("member joined", "room", roomID, "connectionId", connID, "host", rm.hostID == connID, "members", len(rm.members))

	r.events.Publish(rm.members, domain.EvtMemberJoined, connID,
		domain.MemberEventPayload{ConnectionID: connID, DisplayName: displayName}, connID)

	if err := r.events.Send(connID, domain.EvtRoomSnapshot, "", rm.snapshot(connID)); err != nil {
		slog.Warn("snapshot delivery failed", "room", roomID, "connectionId", connID, "error", err)
	}
}

// Leave removes the connection from whatever room it is in. This is the
// disconnect cleanup path; calling it for an unknown connection is a
// no-op.
func (r *Registry) Leave(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(connID)
}

func (r *Registry) leaveLocked(connID string) {
	roomID, ok := r.byConn[connID]
	if !ok {
		return
	}
	delete(r.byConn, connID)

	rm := r.rooms[roomID]
	i := rm.memberIndex(connID)
	if i < 0 {
		return
	}
	name := rm.members[i].DisplayName
	rm.members = append(rm.members[:i], rm.members[i+1:]...)

	if rm.hostID == connID {
		rm.hostID = ""
		slog.Info("host left", "room", roomID, "connectionId", connID)
	}

	if len(rm.members) == 0 {
		delete(r.rooms, roomID)
		slog.Info("room removed", "room", roomID)
		return
	}

	slog.Info("member left", "room", roomID, "connectionId", connID, "members", len(rm.members))

	r.events.Publish(rm.members, domain.EvtMemberLeft, connID,
		domain.MemberEventPayload{ConnectionID: connID, DisplayName: name}, "")
}

// Apply runs one command against the room's state machine. Host
// privilege is checked against the authoritative host at this moment,
// never at command-issue time. A returned *domain.Rejection means
// nothing was mutated and nothing was broadcast.
func (r *Registry) Apply(roomID, connID string, cmd domain.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return domain.ErrNoSuchRoom
	}
	if !rm.isMember(connID) {
		return domain.ErrNotAMember
	}

	switch c := cmd.(type) {
	case domain.ChangeVideo:
		if rm.hostID != connID {
			return domain.ErrNotHost
		}
		rm.videoID = c.VideoID
		rm.position = 0
		r.events.Publish(rm.members, domain.EvtVideoChanged, connID,
			domain.VideoChangedPayload{VideoID: c.VideoID}, "")

	case domain.Play:
		if rm.hostID != connID {
			return domain.ErrNotHost
		}
		rm.playing = true
		r.events.Publish(rm.members, domain.EvtPlaybackState, connID,
			domain.PlaybackStatePayload{Playing: true}, "")

	case domain.Pause:
		if rm.hostID != connID {
			return domain.ErrNotHost
		}
		rm.playing = false
		r.events.Publish(rm.members, domain.EvtPlaybackState, connID,
			domain.PlaybackStatePayload{Playing: false}, "")

	case domain.Seek:
		if rm.hostID != connID {
			return domain.ErrNotHost
		}
		rm.position = c.TimestampSeconds
		r.events.Publish(rm.members, domain.EvtPositionChanged, connID,
			domain.PositionChangedPayload{TimestampSeconds: c.TimestampSeconds}, "")

	case domain.Chat:
		rm.chatSeq++
		r.events.Publish(rm.members, domain.EvtChatReceived, connID,
			domain.ChatReceivedPayload{
				MessageID:         ulid.Make().String(),
				SenderDisplayName: rm.displayNameOf(connID),
				Text:              c.Text,
				SentAt:            rm.chatSeq,
			}, "")

	default:
		return domain.ErrInvalidCommand
	}

	return nil
}

// Get returns a read-only snapshot of the room, or ErrNoSuchRoom.
func (r *Registry) Get(roomID string) (domain.RoomSnapshotPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		return domain.RoomSnapshotPayload{}, domain.ErrNoSuchRoom
	}
	return rm.snapshot(""), nil
}

// RoomOf reports which room the connection is currently in.
func (r *Registry) RoomOf(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roomID, ok := r.byConn[connID]
	return roomID, ok
}

func (r *Registry) Stats() (rooms, members int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms = len(r.rooms)
	members = len(r.byConn)
	return rooms, members
}
