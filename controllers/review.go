package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"journal-management-api/services"
	"journal-management-api/utils"
)

// AssignReviewer invites a reviewer to a submission.
func AssignReviewer(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		ReviewerID int     `json:"reviewer_id" binding:"required"`
		DueDate    *string `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var dueDate *time.Time
	if req.DueDate != nil && *req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "due_date must be YYYY-MM-DD"})
			return
		}
		dueDate = &parsed
	}

	review, err := svc.AssignReviewer(id, req.ReviewerID, dueDate, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"review":  review,
	})
}

// GetAvailableReviewers lists users eligible to review a submission.
func GetAvailableReviewers(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	reviewers, err := svc.GetAvailableReviewers(id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"reviewers": reviewers,
		"total":     len(reviewers),
	})
}

// RespondToInvitation records the reviewer's accept or decline.
func RespondToInvitation(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Accept bool   `json:"accept"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	review, err := svc.RespondToInvitation(id, req.Accept, utils.SanitizeInput(req.Notes), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"review":  review,
	})
}

// SubmitReview records a completed review report.
func SubmitReview(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Recommendation       string `json:"recommendation" binding:"required"`
		Rating               int    `json:"rating" binding:"required"`
		Comments             string `json:"comments" binding:"required"`
		ConfidentialComments string `json:"confidential_comments"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	review, err := svc.SubmitReview(id, services.ReviewInput{
		Recommendation:       req.Recommendation,
		Rating:               req.Rating,
		Comments:             utils.SanitizeInput(req.Comments),
		ConfidentialComments: utils.SanitizeInput(req.ConfidentialComments),
	}, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"review":  review,
	})
}

// RemoveReviewer detaches a reviewer whose review has not completed.
func RemoveReviewer(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := svc.RemoveReviewer(id, actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reviewer removed",
	})
}

// GetSubmissionReviews lists the reviews attached to a submission.
func GetSubmissionReviews(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	reviews, err := svc.ListReviewsForSubmission(id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// GetMyReviews lists the acting reviewer's assignments.
func GetMyReviews(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	reviews, err := svc.ListReviewsForReviewer(actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// GetOverdueReviews lists reviews past their due date.
func GetOverdueReviews(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	reviews, err := svc.ListOverdueReviews(actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// SendReviewReminder nudges a reviewer about an outstanding review.
func SendReviewReminder(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	review, err := svc.SendReviewReminder(id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"review":  review,
	})
}
