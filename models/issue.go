package models

import "time"

// Issue is a journal issue submissions are published into.
type Issue struct {
	IssueID     int        `gorm:"primaryKey;column:issue_id" json:"issue_id"`
	Volume      int        `gorm:"column:volume" json:"volume"`
	Number      int        `gorm:"column:number" json:"number"`
	Year        int        `gorm:"column:year" json:"year"`
	Title       *string    `gorm:"column:title" json:"title,omitempty"`
	IsPublished bool       `gorm:"column:is_published" json:"is_published"`
	CreateAt    time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`
}

// TableName specifies the table for Issue.
func (Issue) TableName() string {
	return "issues"
}
