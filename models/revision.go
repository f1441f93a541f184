package models

import "time"

// Revision is one author resubmission cycle. Revision numbers are strictly
// increasing per submission, assigned inside the creating transaction.
type Revision struct {
	RevisionID     int       `gorm:"primaryKey;column:revision_id" json:"revision_id"`
	SubmissionID   int       `gorm:"column:submission_id;index;uniqueIndex:idx_submission_revision" json:"submission_id"`
	RevisionNumber int       `gorm:"column:revision_number;uniqueIndex:idx_submission_revision" json:"revision_number"`
	ResponseText   string    `gorm:"column:response_text" json:"response_text"`
	CreatedBy      int       `gorm:"column:created_by" json:"created_by"`
	CreateAt       time.Time `gorm:"column:create_at" json:"create_at"`

	Files []RevisionFile `gorm:"foreignKey:RevisionID" json:"files,omitempty"`
}

// RevisionFile binds an uploaded file to a specific revision cycle, never
// to the bare submission, preserving per-cycle file history.
type RevisionFile struct {
	FileID       int       `gorm:"primaryKey;column:file_id" json:"file_id"`
	RevisionID   int       `gorm:"column:revision_id;index" json:"revision_id"`
	OriginalName string    `gorm:"column:original_name" json:"original_name"`
	StoredPath   string    `gorm:"column:stored_path" json:"stored_path"`
	FileSize     int64     `gorm:"column:file_size" json:"file_size"`
	MimeType     string    `gorm:"column:mime_type" json:"mime_type"`
	UploadedBy   int       `gorm:"column:uploaded_by" json:"uploaded_by"`
	UploadedAt   time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
}

// TableName overrides
func (Revision) TableName() string {
	return "revisions"
}

func (RevisionFile) TableName() string {
	return "revision_files"
}
