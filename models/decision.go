package models

import "time"

// DecisionRecord stores one editorial decision with its comments. The
// confidential comment never appears on author-facing surfaces; it is
// only served through editor-gated operations.
type DecisionRecord struct {
	DecisionID          int       `gorm:"primaryKey;column:decision_id" json:"decision_id"`
	SubmissionID        int       `gorm:"column:submission_id;index" json:"submission_id"`
	Decision            string    `gorm:"column:decision" json:"decision"`
	Comments            string    `gorm:"column:comments" json:"comments"`
	ConfidentialComment *string   `gorm:"column:confidential_comment" json:"confidential_comment,omitempty"`
	DecidedBy           int       `gorm:"column:decided_by" json:"decided_by"`
	CreateAt            time.Time `gorm:"column:create_at" json:"create_at"`
}

// TableName specifies the table for DecisionRecord.
func (DecisionRecord) TableName() string {
	return "decision_records"
}
