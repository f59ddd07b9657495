package domain

import "errors"

// RejectReason is the machine-readable reason sent back with a
// commandRejected event. All rejections are recoverable and local to the
// originating connection; none mutate room state.
type RejectReason string

const (
	RejectNotHost        RejectReason = "notHost"
	RejectNoSuchRoom     RejectReason = "noSuchRoom"
	RejectNotAMember     RejectReason = "notAMember"
	RejectInvalidCommand RejectReason = "invalidCommand"
)

// Rejection is the error form of a refused command.
type Rejection struct {
	Reason RejectReason
}

func (r *Rejection) Error() string {
	return "command rejected: " + string(r.Reason)
}

var (
	ErrNotHost        = &Rejection{Reason: RejectNotHost}
	ErrNoSuchRoom     = &Rejection{Reason: RejectNoSuchRoom}
	ErrNotAMember     = &Rejection{Reason: RejectNotAMember}
	ErrInvalidCommand = &Rejection{Reason: RejectInvalidCommand}
)

// AsRejection extracts a Rejection from an error chain.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
