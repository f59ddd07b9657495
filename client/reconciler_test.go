package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishanu7/SyncTube/domain"
)

func event(t *testing.T, eventType, origin string, payload any) domain.Envelope {
	t.Helper()
	env, err := domain.NewEvent(eventType, origin, payload)
	require.NoError(t, err)
	return env
}

func baseState(t *testing.T) State {
	t.Helper()
	s, err := Apply(State{}, event(t, domain.EvtRoomSnapshot, "", domain.RoomSnapshotPayload{
		RoomID:           "r1",
		SelfConnectionID: "connB",
		VideoID:          "abc123",
		HostConnectionID: "connA",
		Members: []domain.Member{
			{ConnectionID: "connA", DisplayName: "alice"},
			{ConnectionID: "connB", DisplayName: "bob"},
		},
		Playing:          true,
		TimestampSeconds: 12,
	}))
	require.NoError(t, err)
	return s
}

func TestApply_Snapshot(t *testing.T) {
	s := baseState(t)

	assert.Equal(t, "r1", s.RoomID)
	assert.Equal(t, "abc123", s.VideoID)
	assert.Equal(t, "connA", s.HostConnectionID)
	assert.Len(t, s.Members, 2)
	assert.True(t, s.Playing)
	assert.Equal(t, float64(12), s.PositionSeconds)
	assert.False(t, s.IsHost())
}

func TestApply_Transitions(t *testing.T) {
	tests := []struct {
		name  string
		env   func(t *testing.T) domain.Envelope
		check func(t *testing.T, s State)
	}{
		{
			name: "videoChanged resets position",
			env: func(t *testing.T) domain.Envelope {
				return event(t, domain.EvtVideoChanged, "connA", domain.VideoChangedPayload{VideoID: "xyz789"})
			},
			check: func(t *testing.T, s State) {
				assert.Equal(t, "xyz789", s.VideoID)
				assert.Zero(t, s.PositionSeconds)
			},
		},
		{
			name: "pause",
			env: func(t *testing.T) domain.Envelope {
				return event(t, domain.EvtPlaybackState, "connA", domain.PlaybackStatePayload{Playing: false})
			},
			check: func(t *testing.T, s State) {
				assert.False(t, s.Playing)
			},
		},
		{
			name: "seek",
			env: func(t *testing.T) domain.Envelope {
				return event(t, domain.EvtPositionChanged, "connA", domain.PositionChangedPayload{TimestampSeconds: 99})
			},
			check: func(t *testing.T, s State) {
				assert.Equal(t, float64(99), s.PositionSeconds)
			},
		},
		{
			name: "memberJoined",
			env: func(t *testing.T) domain.Envelope {
				return event(t, domain.EvtMemberJoined, "connC", domain.MemberEventPayload{ConnectionID: "connC", DisplayName: "carol"})
			},
			check: func(t *testing.T, s State) {
				assert.Len(t, s.Members, 3)
				assert.Equal(t, domain.Member{ConnectionID: "connC", DisplayName: "carol"}, s.Members[2])
			},
		},
		{
			name: "memberLeft drops the member",
			env: func(t *testing.T) domain.Envelope {
				return event(t, domain.EvtMemberLeft, "connA", domain.MemberEventPayload{ConnectionID: "connA", DisplayName: "alice"})
			},
			check: func(t *testing.T, s State) {
				assert.Equal(t, []domain.Member{{ConnectionID: "connB", DisplayName: "bob"}}, s.Members)
				assert.Empty(t, s.HostConnectionID, "departed host leaves the seat empty")
			},
		},
		{
			name: "chatReceived",
			env: func(t *testing.T) domain.Envelope {
				return event(t, domain.EvtChatReceived, "connA", domain.ChatReceivedPayload{
					MessageID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", SenderDisplayName: "alice", Text: "hi", SentAt: 1,
				})
			},
			check: func(t *testing.T, s State) {
				require.Len(t, s.Chat, 1)
				assert.Equal(t, "hi", s.Chat[0].Text)
			},
		},
		{
			name: "commandRejected leaves sync state alone",
			env: func(t *testing.T) domain.Envelope {
				return event(t, domain.EvtCommandRejected, "", domain.CommandRejectedPayload{Reason: domain.RejectNotHost})
			},
			check: func(t *testing.T, s State) {
				assert.Equal(t, baseState(t), s)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Apply(baseState(t), tt.env(t))
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

// The broadcaster may deliver the echo of this client's own command, so
// folding any event twice must land on the same state as folding it once.
func TestApply_Idempotent(t *testing.T) {
	events := []struct {
		name string
		env  func(t *testing.T) domain.Envelope
	}{
		{"snapshot", func(t *testing.T) domain.Envelope {
			return event(t, domain.EvtRoomSnapshot, "", domain.RoomSnapshotPayload{
				RoomID: "r1", SelfConnectionID: "connB",
				Members: []domain.Member{{ConnectionID: "connB", DisplayName: "bob"}},
			})
		}},
		{"memberJoined", func(t *testing.T) domain.Envelope {
			return event(t, domain.EvtMemberJoined, "connC", domain.MemberEventPayload{ConnectionID: "connC", DisplayName: "carol"})
		}},
		{"memberLeft", func(t *testing.T) domain.Envelope {
			return event(t, domain.EvtMemberLeft, "connA", domain.MemberEventPayload{ConnectionID: "connA", DisplayName: "alice"})
		}},
		{"videoChanged", func(t *testing.T) domain.Envelope {
			return event(t, domain.EvtVideoChanged, "connA", domain.VideoChangedPayload{VideoID: "xyz789"})
		}},
		{"playbackStateChanged", func(t *testing.T) domain.Envelope {
			return event(t, domain.EvtPlaybackState, "connA", domain.PlaybackStatePayload{Playing: false})
		}},
		{"positionChanged", func(t *testing.T) domain.Envelope {
			return event(t, domain.EvtPositionChanged, "connA", domain.PositionChangedPayload{TimestampSeconds: 77})
		}},
		{"chatReceived", func(t *testing.T) domain.Envelope {
			return event(t, domain.EvtChatReceived, "connA", domain.ChatReceivedPayload{
				MessageID: "01ARZ3NDEKTSV4RRFFQ69G5FAV", SenderDisplayName: "alice", Text: "hi", SentAt: 1,
			})
		}},
	}

	for _, tt := range events {
		t.Run(tt.name, func(t *testing.T) {
			env := tt.env(t)

			once, err := Apply(baseState(t), env)
			require.NoError(t, err)
			twice, err := Apply(once, env)
			require.NoError(t, err)

			assert.Equal(t, once, twice)
		})
	}
}

// Apply returns a new state; the input must never be mutated.
func TestApply_DoesNotMutateInput(t *testing.T) {
	original := baseState(t)
	snapshot := baseState(t)

	_, err := Apply(original, event(t, domain.EvtMemberLeft, "connA",
		domain.MemberEventPayload{ConnectionID: "connA", DisplayName: "alice"}))
	require.NoError(t, err)
	_, err = Apply(original, event(t, domain.EvtMemberJoined, "connC",
		domain.MemberEventPayload{ConnectionID: "connC", DisplayName: "carol"}))
	require.NoError(t, err)
	_, err = Apply(original, event(t, domain.EvtChatReceived, "connA",
		domain.ChatReceivedPayload{MessageID: "m1", Text: "hi", SentAt: 1}))
	require.NoError(t, err)

	assert.Equal(t, snapshot, original)
}

func TestApply_ChatDedupeByMessageID(t *testing.T) {
	msg := domain.ChatReceivedPayload{MessageID: "m1", SenderDisplayName: "alice", Text: "hi", SentAt: 1}

	s, err := Apply(baseState(t), event(t, domain.EvtChatReceived, "connA", msg))
	require.NoError(t, err)
	s, err = Apply(s, event(t, domain.EvtChatReceived, "connA", msg))
	require.NoError(t, err)

	assert.Len(t, s.Chat, 1)
}

func TestApply_UnknownEventIgnored(t *testing.T) {
	env := domain.Envelope{Type: "somethingNew", Payload: json.RawMessage(`{"x":1}`)}

	s, err := Apply(baseState(t), env)
	require.NoError(t, err)
	assert.Equal(t, baseState(t), s)
}

func TestReconciler_AppliesFrames(t *testing.T) {
	r := NewReconciler()

	snap, err := domain.NewEvent(domain.EvtRoomSnapshot, "", domain.RoomSnapshotPayload{
		RoomID:           "r1",
		SelfConnectionID: "connA",
		HostConnectionID: "connA",
		VideoID:          "abc123",
		Members:          []domain.Member{{ConnectionID: "connA", DisplayName: "alice"}},
	})
	require.NoError(t, err)
	data, err := snap.Encode()
	require.NoError(t, err)

	env, err := r.Apply(data)
	require.NoError(t, err)
	assert.Equal(t, domain.EvtRoomSnapshot, env.Type)
	assert.True(t, r.State().IsHost())

	// Echo of this client's own command is recognized but still applied.
	echo, err := domain.NewEvent(domain.EvtVideoChanged, "connA", domain.VideoChangedPayload{VideoID: "xyz789"})
	require.NoError(t, err)
	assert.True(t, r.IsEcho(echo))

	data, err = echo.Encode()
	require.NoError(t, err)
	_, err = r.Apply(data)
	require.NoError(t, err)
	assert.Equal(t, "xyz789", r.State().VideoID)

	foreign, err := domain.NewEvent(domain.EvtVideoChanged, "connB", domain.VideoChangedPayload{VideoID: "qqq"})
	require.NoError(t, err)
	assert.False(t, r.IsEcho(foreign))
}

func TestReconciler_RejectsGarbage(t *testing.T) {
	r := NewReconciler()

	_, err := r.Apply([]byte("not json"))
	assert.Error(t, err)
	assert.Equal(t, State{}, r.State())
}
