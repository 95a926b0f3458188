package domain

// Collection statuses delivered by CAPI notifications.
const (
	StatusActive   = "active"
	StatusDeleted  = "deleted"
	StatusKilled   = "killed"
	StatusInactive = "inactive"
	StatusExpired  = "expired"
)

// Placeholder codes stored in place of collection content.
const (
	CodeNotLive       = 404
	CodeGone          = 410
	CodeNotAcceptable = 406
	CodeFailure       = 500
)

// SourceCAPIV3 tags persisted records with the upstream API version.
const SourceCAPIV3 = "CAPI V3"

// Processing stages, recorded on the audit row as a coarse trace.
const (
	StageReceived = "received"
	StageAuth     = "auth"
	StageLiveness = "liveness"
	StageFetch    = "fetch"
	StageSimplify = "simplify"
	StagePersist  = "persist"
	StageDone     = "done"
)

type OutcomeKind int

const (
	OutcomeUnknown OutcomeKind = iota
	OutcomeIngested
	OutcomeNotLive
	OutcomeGone
	OutcomeRejected
	OutcomeAuthFailed
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeIngested:
		return "ingested"
	case OutcomeNotLive:
		return "not-live"
	case OutcomeGone:
		return "gone"
	case OutcomeRejected:
		return "rejected"
	case OutcomeAuthFailed:
		return "auth-failed"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// HasErrors reports whether the outcome is surfaced as an error in the
// acknowledgment body.
func (k OutcomeKind) HasErrors() bool {
	return k == OutcomeFailed
}

// GoneStatus reports whether a status tombstones the collection.
func GoneStatus(status string) bool {
	switch status {
	case StatusDeleted, StatusKilled, StatusInactive, StatusExpired:
		return true
	}
	return false
}
