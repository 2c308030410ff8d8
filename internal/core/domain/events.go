package domain

import "time"

// PasswordRecoveryRequestedEvent is published when a recovery code is issued,
// feeding downstream email delivery.
type PasswordRecoveryRequestedEvent struct {
	EventID     string
	UserID      string
	Email       string
	MaskedEmail string
	RequestedAt time.Time
	Metadata    map[string]any
}

// PasswordChangedEvent is published after a successful recovery password change.
type PasswordChangedEvent struct {
	EventID   string
	UserID    string
	ChangedAt time.Time
	Method    string
	Metadata  map[string]any
}

// ProducerRegisteredEvent is published when a new producer record is created.
type ProducerRegisteredEvent struct {
	EventID      string
	ProducerID   string
	Document     string
	Name         string
	RegisteredAt time.Time
	Metadata     map[string]any
}

// RecordArchivedEvent is published whenever any registry record is soft-deleted.
type RecordArchivedEvent struct {
	EventID    string
	EntityType string
	EntityID   string
	ArchivedBy string
	ArchivedAt time.Time
	Metadata   map[string]any
}
