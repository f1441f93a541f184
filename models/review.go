package models

import "time"

// Review statuses. A review only moves forward through these values.
const (
	ReviewStatusPending    = "pending"
	ReviewStatusDeclined   = "declined"
	ReviewStatusInProgress = "in_progress"
	ReviewStatusCompleted  = "completed"
)

// Reviewer recommendations.
const (
	RecommendationAccept        = "accept"
	RecommendationMinorRevision = "minor_revision"
	RecommendationMajorRevision = "major_revision"
	RecommendationReject        = "reject"
)

// Review is one reviewer's evaluation task for one submission. The unique
// index enforces at most one review per (submission, reviewer) pair.
type Review struct {
	ReviewID       int        `gorm:"primaryKey;column:review_id" json:"review_id"`
	SubmissionID   int        `gorm:"column:submission_id;index;uniqueIndex:idx_submission_reviewer" json:"submission_id"`
	ReviewerID     int        `gorm:"column:reviewer_id;uniqueIndex:idx_submission_reviewer" json:"reviewer_id"`
	Status         string     `gorm:"column:status" json:"status"`
	DueDate        *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`
	Recommendation *string    `gorm:"column:recommendation" json:"recommendation,omitempty"`
	Rating         *int       `gorm:"column:rating" json:"rating,omitempty"`
	Comments       *string    `gorm:"column:comments" json:"comments,omitempty"`
	// Confidential comments are shown to editors only, never to the author.
	ConfidentialComments *string    `gorm:"column:confidential_comments" json:"-"`
	RemindersSent        int        `gorm:"column:reminders_sent" json:"reminders_sent"`
	AcceptedAt           *time.Time `gorm:"column:accepted_at" json:"accepted_at,omitempty"`
	SubmittedAt          *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreateAt             time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt             *time.Time `gorm:"column:update_at" json:"update_at"`

	// Relations
	Reviewer   *User               `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
	Invitation *ReviewerInvitation `gorm:"foreignKey:ReviewID" json:"invitation,omitempty"`
}

// Invitation statuses; pending transitions exactly once to a terminal value.
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusDeclined = "declined"
)

// ReviewerInvitation is the accept/decline envelope wrapping a Review offer.
type ReviewerInvitation struct {
	InvitationID  int        `gorm:"primaryKey;column:invitation_id" json:"invitation_id"`
	ReviewID      int        `gorm:"column:review_id;uniqueIndex" json:"review_id"`
	Status        string     `gorm:"column:status" json:"status"`
	RespondedAt   *time.Time `gorm:"column:responded_at" json:"responded_at,omitempty"`
	ResponseNotes *string    `gorm:"column:response_notes" json:"response_notes,omitempty"`
	CreateAt      time.Time  `gorm:"column:create_at" json:"create_at"`
}

// TableName overrides
func (Review) TableName() string {
	return "reviews"
}

func (ReviewerInvitation) TableName() string {
	return "reviewer_invitations"
}

// IsOverdue reports whether an unfinished review has passed its due date.
func (r *Review) IsOverdue(now time.Time) bool {
	if r.DueDate == nil {
		return false
	}
	if r.Status == ReviewStatusCompleted || r.Status == ReviewStatusDeclined {
		return false
	}
	return now.After(*r.DueDate)
}
