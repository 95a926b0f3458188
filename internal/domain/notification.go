package domain

import "time"

// CollectionNotification is the inbound webhook payload announcing a
// collection state change.
type CollectionNotification struct {
	CAPIID string           `json:"capiId"`
	Status string           `json:"status"`
	Draft  bool             `json:"draft"`
	Date   NotificationDate `json:"date"`
}

type NotificationDate struct {
	Live time.Time `json:"live"`
}

// Placeholder is stored in place of collection content when a notification
// cannot be (or must not be) materialized.
type Placeholder struct {
	ErrCode int    `json:"errCode"`
	Message string `json:"message"`
}

// IngestEvent is published after every processed notification.
type IngestEvent struct {
	EventID      string      `json:"eventId"`
	CollectionID string      `json:"collectionId"`
	Outcome      string      `json:"outcome"`
	ArticleCount int         `json:"articleCount"`
	Message      string      `json:"message"`
	Timestamp    time.Time   `json:"timestamp"`
	Kind         OutcomeKind `json:"-"`
}
