package room

import "github.com/krishanu7/SyncTube/domain"

// Room is the authoritative per-room state. All fields are guarded by
// the owning Registry's mutex; a Room never leaves the registry.
type Room struct {
	id       string
	hostID   string
	videoID  string
	playing  bool
	position float64
	members  []domain.Member
	chatSeq  int64
}

func (r *Room) memberIndex(connID string) int {
	for i, m := range r.members {
		if m.ConnectionID == connID {
			return i
		}
	}
	return -1
}

func (r *Room) isMember(connID string) bool {
	return r.memberIndex(connID) >= 0
}

func (r *Room) displayNameOf(connID string) string {
	if i := r.memberIndex(connID); i >= 0 {
		return r.members[i].DisplayName
	}
	return ""
}

// snapshot copies the current state for delivery to selfID. The member
// slice is copied so the payload cannot observe later mutations.
func (r *Room) snapshot(selfID string) domain.RoomSnapshotPayload {
	members := make([]domain.Member, len(r.members))
	copy(members, r.members)

	return domain.RoomSnapshotPayload{
		RoomID:           r.id,
		SelfConnectionID: selfID,
		VideoID:          r.videoID,
		HostConnectionID: r.hostID,
		Members:          members,
		Playing:          r.playing,
		TimestampSeconds: r.position,
	}
}
