package models

import "time"

// Submission represents a manuscript moving through the editorial pipeline.
// Status holds one of the values defined in services/status.go; it is only
// ever written through validated transitions.
type Submission struct {
	SubmissionID     int        `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	SubmissionNumber string     `gorm:"column:submission_number;unique" json:"submission_number"`
	Title            string     `gorm:"column:title" json:"title"`
	Abstract         string     `gorm:"column:abstract" json:"abstract"`
	Keywords         string     `gorm:"column:keywords" json:"keywords"` // comma separated
	ManuscriptType   string     `gorm:"column:manuscript_type" json:"manuscript_type"`
	DoubleBlind      bool       `gorm:"column:double_blind" json:"double_blind"`
	Status           string     `gorm:"column:status;index" json:"status"`
	AuthorID         int        `gorm:"column:author_id;index" json:"author_id"`
	DOI              *string    `gorm:"column:doi" json:"doi,omitempty"`
	Volume           *int       `gorm:"column:volume" json:"volume,omitempty"`
	IssueNumber      *int       `gorm:"column:issue_number" json:"issue_number,omitempty"`
	Pages            *string    `gorm:"column:pages" json:"pages,omitempty"`
	IssueID          *int       `gorm:"column:issue_id" json:"issue_id,omitempty"`
	SubmittedAt      *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	AcceptedAt       *time.Time `gorm:"column:accepted_at" json:"accepted_at,omitempty"`
	PublishedAt      *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
	CreateAt         time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt         *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt         *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Author             User                 `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CoAuthors          []SubmissionCoAuthor `gorm:"foreignKey:SubmissionID" json:"co_authors,omitempty"`
	Files              []SubmissionFile     `gorm:"foreignKey:SubmissionID" json:"files,omitempty"`
	SuggestedReviewers []SuggestedReviewer  `gorm:"foreignKey:SubmissionID" json:"suggested_reviewers,omitempty"`
	ExcludedReviewers  []ExcludedReviewer   `gorm:"foreignKey:SubmissionID" json:"excluded_reviewers,omitempty"`
	Issue              *Issue               `gorm:"foreignKey:IssueID" json:"issue,omitempty"`
}

// SubmissionCoAuthor lists a co-author by name/email; co-authors need not
// hold accounts, so the optional UserID links one when it exists.
type SubmissionCoAuthor struct {
	CoAuthorID   int     `gorm:"primaryKey;column:co_author_id" json:"co_author_id"`
	SubmissionID int     `gorm:"column:submission_id;index" json:"submission_id"`
	UserID       *int    `gorm:"column:user_id" json:"user_id,omitempty"`
	Name         string  `gorm:"column:name" json:"name"`
	Email        string  `gorm:"column:email" json:"email"`
	Affiliation  *string `gorm:"column:affiliation" json:"affiliation,omitempty"`
	AuthorOrder  int     `gorm:"column:author_order" json:"author_order"`
}

// SubmissionFile references an uploaded manuscript or supplement by its
// stored path; validation and scanning happen outside this service.
type SubmissionFile struct {
	FileID       int        `gorm:"primaryKey;column:file_id" json:"file_id"`
	SubmissionID int        `gorm:"column:submission_id;index" json:"submission_id"`
	Kind         string     `gorm:"column:kind" json:"kind"` // manuscript|supplement|cover_letter
	OriginalName string     `gorm:"column:original_name" json:"original_name"`
	StoredPath   string     `gorm:"column:stored_path" json:"stored_path"`
	FileSize     int64      `gorm:"column:file_size" json:"file_size"`
	MimeType     string     `gorm:"column:mime_type" json:"mime_type"`
	UploadedBy   int        `gorm:"column:uploaded_by" json:"uploaded_by"`
	UploadedAt   time.Time  `gorm:"column:uploaded_at" json:"uploaded_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// SuggestedReviewer is an author-proposed reviewer, advisory only.
type SuggestedReviewer struct {
	SuggestionID int    `gorm:"primaryKey;column:suggestion_id" json:"suggestion_id"`
	SubmissionID int    `gorm:"column:submission_id;index" json:"submission_id"`
	Name         string `gorm:"column:name" json:"name"`
	Email        string `gorm:"column:email" json:"email"`
	Reason       string `gorm:"column:reason" json:"reason"`
}

// ExcludedReviewer is an author-requested exclusion; the assignment filter
// treats it as binding.
type ExcludedReviewer struct {
	ExclusionID  int    `gorm:"primaryKey;column:exclusion_id" json:"exclusion_id"`
	SubmissionID int    `gorm:"column:submission_id;index" json:"submission_id"`
	UserID       int    `gorm:"column:user_id" json:"user_id"`
	Reason       string `gorm:"column:reason" json:"reason"`
}

// TableName overrides
func (Submission) TableName() string {
	return "submissions"
}

func (SubmissionCoAuthor) TableName() string {
	return "submission_co_authors"
}

func (SubmissionFile) TableName() string {
	return "submission_files"
}

func (SuggestedReviewer) TableName() string {
	return "suggested_reviewers"
}

func (ExcludedReviewer) TableName() string {
	return "excluded_reviewers"
}
