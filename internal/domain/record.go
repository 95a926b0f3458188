package domain

import "time"

// CollectionRecord is the persisted row for one collection, keyed by the CAPI
// collection id.
type CollectionRecord struct {
	CollectionID   string    `json:"collectionId"`
	RawJSON        string    `json:"-"`
	Source         string    `json:"source"`
	EventID        string    `json:"eventId"`
	SimplifiedJSON string    `json:"simplifiedJson"`
	Headline       string    `json:"headline"`
	ArticleCount   int       `json:"articleCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AuditEntry is one append-only row per processed request.
type AuditEntry struct {
	EventID      string    `json:"eventId"`
	CollectionID string    `json:"collectionId"`
	Message      string    `json:"message"`
	Payload      string    `json:"payload"`
	Stage        string    `json:"stage"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UpstreamError carries the upstream response alongside a fetch failure so the
// audit trail can record what the content API actually returned.
type UpstreamError struct {
	StatusCode int
	Snippet    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "upstream request failed"
}

func (e *UpstreamError) Unwrap() error { return e.Err }
