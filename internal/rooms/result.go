package rooms

// RejectReason tags why a mutation was not applied.
type RejectReason string

const (
	ReasonMissingCode   RejectReason = "missing_code"
	ReasonRoomNotFound  RejectReason = "room_not_found"
	ReasonNotHost       RejectReason = "not_host"
	ReasonNotMember     RejectReason = "not_member"
	ReasonLocked        RejectReason = "buzzers_locked"
	ReasonAlreadyBuzzed RejectReason = "already_buzzed"
	ReasonUnknownPlayer RejectReason = "unknown_player"
)

// Result is the discriminated outcome of a mutation. The core never decides
// how a rejection is surfaced; the boundary layer does, via Surfaceable.
type Result struct {
	Accepted bool
	Reason   RejectReason
	Message  string
}

func accepted() Result {
	return Result{Accepted: true}
}

func rejected(reason RejectReason, message string) Result {
	return Result{Reason: reason, Message: message}
}

// Surfaceable reports whether the rejection should reach the caller as an
// error_message. Authority rejections stay silent so room membership details
// never leak; validation and not-found failures are surfaced.
func (r Result) Surfaceable() bool {
	if r.Accepted {
		return false
	}
	switch r.Reason {
	case ReasonMissingCode, ReasonRoomNotFound:
		return true
	}
	return false
}
