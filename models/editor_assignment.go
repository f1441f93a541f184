package models

import "time"

// EditorAssignment binds an editor to a submission. At most one assignment
// per submission carries IsChief; the assignment operation enforces it.
type EditorAssignment struct {
	AssignmentID int       `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	SubmissionID int       `gorm:"column:submission_id;index;uniqueIndex:idx_submission_editor" json:"submission_id"`
	EditorID     int       `gorm:"column:editor_id;uniqueIndex:idx_submission_editor" json:"editor_id"`
	IsChief      bool      `gorm:"column:is_chief" json:"is_chief"`
	AssignedBy   int       `gorm:"column:assigned_by" json:"assigned_by"`
	CreateAt     time.Time `gorm:"column:create_at" json:"create_at"`

	Editor *User `gorm:"foreignKey:EditorID" json:"editor,omitempty"`
}

// TableName specifies the table for EditorAssignment.
func (EditorAssignment) TableName() string {
	return "editor_assignments"
}
