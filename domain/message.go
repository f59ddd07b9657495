package domain

import (
	"encoding/json"
	"fmt"
)

// Command types, client to server.
const (
	CmdJoin        = "join"
	CmdChangeVideo = "changeVideo"
	CmdPlay        = "play"
	CmdPause       = "pause"
	CmdSeek        = "seek"
	CmdChat        = "chat"
	CmdPing        = "ping"
)

// Event types, server to client.
const (
	EvtRoomSnapshot    = "roomSnapshot"
	EvtMemberJoined    = "memberJoined"
	EvtMemberLeft      = "memberLeft"
	EvtVideoChanged    = "videoChanged"
	EvtPlaybackState   = "playbackStateChanged"
	EvtPositionChanged = "positionChanged"
	EvtChatReceived    = "chatReceived"
	EvtCommandRejected = "commandRejected"
	EvtPong            = "pong"
)

// Envelope frames every message on the wire. Origin is set by the server
// on broadcast events to the connection ID whose command produced the
// event, so clients can recognize their own echo.
type Envelope struct {
	Type    string          `json:"type"`
	Origin  string          `json:"origin,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent builds a server-to-client envelope around the given payload.
func NewEvent(eventType, origin string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{Type: eventType, Origin: origin, Payload: raw}, nil
}

// Encode serializes the envelope for the transport.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

type JoinPayload struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
	AsHost      bool   `json:"asHost"`
	VideoID     string `json:"videoId,omitempty"`
}

type ChangeVideoPayload struct {
	VideoID string `json:"videoId"`
}

type SeekPayload struct {
	TimestampSeconds float64 `json:"timestampSeconds"`
}

type ChatPayload struct {
	Text string `json:"text"`
}

type PingPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// RoomSnapshotPayload is sent to a client right after it joins, so it can
// reconcile immediately instead of waiting for the next state change.
type RoomSnapshotPayload struct {
	RoomID           string   `json:"roomId"`
	SelfConnectionID string   `json:"selfConnectionId,omitempty"`
	VideoID          string   `json:"videoId,omitempty"`
	HostConnectionID string   `json:"hostConnectionId,omitempty"`
	Members          []Member `json:"members"`
	Playing          bool     `json:"playing"`
	TimestampSeconds float64  `json:"timestampSeconds"`
}

type MemberEventPayload struct {
	ConnectionID string `json:"connectionId"`
	DisplayName  string `json:"displayName"`
}

type VideoChangedPayload struct {
	VideoID string `json:"videoId"`
}

type PlaybackStatePayload struct {
	Playing bool `json:"playing"`
}

type PositionChangedPayload struct {
	TimestampSeconds float64 `json:"timestampSeconds"`
}

// ChatReceivedPayload carries one chat message. SentAt is a per-room
// monotonic sequence assigned by the server, not wall clock.
type ChatReceivedPayload struct {
	MessageID         string `json:"messageId"`
	SenderDisplayName string `json:"senderDisplayName"`
	Text              string `json:"text"`
	SentAt            int64  `json:"sentAt"`
}

type CommandRejectedPayload struct {
	Reason RejectReason `json:"reason"`
}
