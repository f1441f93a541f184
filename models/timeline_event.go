package models

import "time"

// TimelineEvent is the append-only audit record for one status transition
// or lifecycle action. Ordering by CreatedAt reconstructs the submission's
// history exactly; rows are never updated or deleted.
type TimelineEvent struct {
	EventID      int       `gorm:"primaryKey;column:event_id" json:"event_id"`
	SubmissionID int       `gorm:"column:submission_id;index" json:"submission_id"`
	EventKind    string    `gorm:"column:event_kind" json:"event_kind"`
	FromStatus   *string   `gorm:"column:from_status" json:"from_status,omitempty"`
	ToStatus     string    `gorm:"column:to_status" json:"to_status"`
	Description  string    `gorm:"column:description" json:"description"`
	ActorID      int       `gorm:"column:actor_id" json:"actor_id"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
}

// TableName specifies the table for TimelineEvent.
func (TimelineEvent) TableName() string {
	return "timeline_events"
}
