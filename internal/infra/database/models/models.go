package models

import (
	"time"
)

// Collection is the persisted record for one CAPI collection. SimplifiedJSON
// holds either the flattened article list or an error placeholder.
type Collection struct {
	CollectionID   string    `json:"collectionId" gorm:"primaryKey;type:text"`
	RawJSON        string    `json:"rawJson" gorm:"type:text"`
	Source         string    `json:"source" gorm:"type:text"`
	EventID        string    `json:"eventId" gorm:"type:text"`
	SimplifiedJSON string    `json:"simplifiedJson" gorm:"type:text"`
	Headline       string    `json:"headline" gorm:"type:text"`
	ArticleCount   int       `json:"articleCount" gorm:"not null;default:0"`
	CDate          time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate          time.Time `json:"mdate" gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
}

// AuditEntry is append-only; one row per processed webhook request.
type AuditEntry struct {
	ID            int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	EventID       string    `json:"eventId" gorm:"type:text;index"`
	CollectionID  string    `json:"collectionId" gorm:"type:text;index"`
	Message       string    `json:"message" gorm:"type:text"`
	Payload       string    `json:"payload" gorm:"type:text"`
	PayloadDigest string    `json:"payloadDigest" gorm:"type:text"`
	Stage         string    `json:"stage" gorm:"type:text"`
	CDate         time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

// APIKey maps a webhook key name to its shared secret.
type APIKey struct {
	Name   string `json:"name" gorm:"primaryKey;type:text"`
	Secret string `json:"-" gorm:"type:text"`
	Active bool   `json:"active" gorm:"not null;default:true"`
}
