// Package client holds the client-side mirror of room state. Broadcast
// events are folded in by pure transition functions: applying an event
// never emits a command, so a client can safely reconcile the echo of
// its own command without feedback loops.
package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/krishanu7/SyncTube/domain"
)

// State is the local mirror of one room. Values, not pointers: Apply
// returns a fresh State and never mutates its input.
type State struct {
	RoomID           string
	SelfConnectionID string
	VideoID          string
	HostConnectionID string
	Members          []domain.Member
	Playing          bool
	PositionSeconds  float64
	Chat             []domain.ChatReceivedPayload
}

// IsHost reports whether this client currently holds the host seat.
func (s State) IsHost() bool {
	return s.HostConnectionID != "" && s.HostConnectionID == s.SelfConnectionID
}

// Apply folds one broadcast event into the state and returns the result.
// It is idempotent: applying the same event twice yields the same state
// as applying it once. Unknown event types leave the state unchanged.
func Apply(s State, env domain.Envelope) (State, error) {
	switch env.Type {
	case domain.EvtRoomSnapshot:
		var p domain.RoomSnapshotPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return s, fmt.Errorf("decode snapshot: %w", err)
		}
		members := make([]domain.Member, len(p.Members))
		copy(members, p.Members)
		return State{
			RoomID:           p.RoomID,
			SelfConnectionID: p.SelfConnectionID,
			VideoID:          p.VideoID,
			HostConnectionID: p.HostConnectionID,
			Members:          members,
			Playing:          p.Playing,
			PositionSeconds:  p.TimestampSeconds,
		}, nil

	case domain.EvtMemberJoined:
		var p domain.MemberEventPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return s, fmt.Errorf("decode memberJoined: %w", err)
		}
		for _, m := range s.Members {
			if m.ConnectionID == p.ConnectionID {
				return s, nil
			}
		}
		members := make([]domain.Member, len(s.Members), len(s.Members)+1)
		copy(members, s.Members)
		s.Members = append(members, domain.Member{ConnectionID: p.ConnectionID, DisplayName: p.DisplayName})
		return s, nil

	case domain.EvtMemberLeft:
		var p domain.MemberEventPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return s, fmt.Errorf("decode memberLeft: %w", err)
		}
		members := make([]domain.Member, 0, len(s.Members))
		for _, m := range s.Members {
			if m.ConnectionID != p.ConnectionID {
				members = append(members, m)
			}
		}
		s.Members = members
		if s.HostConnectionID == p.ConnectionID {
			s.HostConnectionID = ""
		}
		return s, nil

	case domain.EvtVideoChanged:
		var p domain.VideoChangedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return s, fmt.Errorf("decode videoChanged: %w", err)
		}
		s.VideoID = p.VideoID
		s.PositionSeconds = 0
		return s, nil

	case domain.EvtPlaybackState:
		var p domain.PlaybackStatePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return s, fmt.Errorf("decode playbackStateChanged: %w", err)
		}
		s.Playing = p.Playing
		return s, nil

	case domain.EvtPositionChanged:
		var p domain.PositionChangedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return s, fmt.Errorf("decode positionChanged: %w", err)
		}
		s.PositionSeconds = p.TimestampSeconds
		return s, nil

	case domain.EvtChatReceived:
		var p domain.ChatReceivedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return s, fmt.Errorf("decode chatReceived: %w", err)
		}
		for _, m := range s.Chat {
			if m.MessageID == p.MessageID {
				return s, nil
			}
		}
		chat := make([]domain.ChatReceivedPayload, len(s.Chat), len(s.Chat)+1)
		copy(chat, s.Chat)
		s.Chat = append(chat, p)
		return s, nil

	case domain.EvtCommandRejected, domain.EvtPong:
		// Surfaced to the UI via the returned envelope; no sync state.
		return s, nil
	}

	return s, nil
}

// Reconciler runs once per connected client and serializes event
// application onto the local mirror.
type Reconciler struct {
	mu    sync.Mutex
	state State
}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Apply decodes one inbound frame and folds it into the mirror,
// returning the decoded envelope so callers can surface rejections and
// pongs.
func (r *Reconciler) Apply(data []byte) (domain.Envelope, error) {
	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return domain.Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := Apply(r.state, env)
	if err != nil {
		return env, err
	}
	r.state = next
	return env, nil
}

// State returns the current mirror.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// IsEcho reports whether the event was caused by this client's own
// command. Echoes still get applied (idempotently); the flag only lets
// the UI skip redundant work such as re-seeking its own player.
func (r *Reconciler) IsEcho(env domain.Envelope) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return env.Origin != "" && env.Origin == r.state.SelfConnectionID
}
