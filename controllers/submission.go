package controllers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"journal-management-api/models"
	"journal-management-api/services"
	"journal-management-api/utils"
)

type createDraftRequest struct {
	Title          string   `json:"title" binding:"required"`
	Abstract       string   `json:"abstract"`
	Keywords       []string `json:"keywords"`
	ManuscriptType string   `json:"manuscript_type" binding:"required"`
	DoubleBlind    bool     `json:"double_blind"`
	CoAuthors      []struct {
		Name        string `json:"name" binding:"required"`
		Email       string `json:"email" binding:"required,email"`
		Affiliation string `json:"affiliation"`
	} `json:"co_authors"`
	SuggestedReviewers []struct {
		Name   string `json:"name" binding:"required"`
		Email  string `json:"email" binding:"required,email"`
		Reason string `json:"reason"`
	} `json:"suggested_reviewers"`
	ExcludedReviewerIDs []int `json:"excluded_reviewer_ids"`
}

// CreateDraft creates a new manuscript draft for the acting author.
func CreateDraft(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req createDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.DraftInput{
		Title:          utils.SanitizeInput(req.Title),
		Abstract:       utils.SanitizeInput(req.Abstract),
		Keywords:       req.Keywords,
		ManuscriptType: req.ManuscriptType,
		DoubleBlind:    req.DoubleBlind,
		ExcludedUserID: req.ExcludedReviewerIDs,
	}
	for _, ca := range req.CoAuthors {
		input.CoAuthors = append(input.CoAuthors, services.CoAuthorInput{
			Name:        utils.SanitizeInput(ca.Name),
			Email:       ca.Email,
			Affiliation: utils.SanitizeInput(ca.Affiliation),
		})
	}
	for _, sr := range req.SuggestedReviewers {
		input.Suggested = append(input.Suggested, services.SuggestedReviewerInput{
			Name:   utils.SanitizeInput(sr.Name),
			Email:  sr.Email,
			Reason: utils.SanitizeInput(sr.Reason),
		})
	}

	submission, err := svc.CreateDraft(input, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// GetSubmission returns one submission with its relations.
func GetSubmission(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	submission, err := svc.GetSubmission(id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// GetMySubmissions lists the acting author's submissions.
func GetMySubmissions(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	submissions, err := svc.ListSubmissionsForAuthor(actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// GetSubmissionsByStatus is the editor dashboard listing.
func GetSubmissionsByStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	status := strings.TrimSpace(c.Query("status"))
	if status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status query parameter is required"})
		return
	}

	submissions, err := svc.ListSubmissionsByStatus(services.Status(status), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// UploadSubmissionFile stores an uploaded manuscript file and records it
// against the submission.
func UploadSubmissionFile(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	kind := c.PostForm("kind")

	uploadPath := os.Getenv("UPLOAD_PATH")
	if uploadPath == "" {
		uploadPath = "./uploads"
	}
	storedName := uuid.New().String() + filepath.Ext(fileHeader.Filename)
	storedPath := filepath.Join(uploadPath, "submissions", storedName)
	if err := c.SaveUploadedFile(fileHeader, storedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store file"})
		return
	}

	file := models.SubmissionFile{
		Kind:         kind,
		OriginalName: fileHeader.Filename,
		StoredPath:   storedPath,
		FileSize:     fileHeader.Size,
		MimeType:     fileHeader.Header.Get("Content-Type"),
	}
	saved, err := svc.AttachSubmissionFile(id, file, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"file":    saved,
	})
}

// SubmitForReview moves a draft into the editorial workflow.
func SubmitForReview(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	submission, err := svc.SubmitForReview(id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Submission entered the editorial workflow",
		"submission": submission,
	})
}

// WithdrawSubmission permanently withdraws a submission.
func WithdrawSubmission(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	submission, err := svc.WithdrawSubmission(id, utils.SanitizeInput(req.Reason), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Submission withdrawn",
		"submission": submission,
	})
}

// PerformScreening records the editor's initial screening outcome.
func PerformScreening(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Outcome string `json:"outcome" binding:"required"`
		Note    string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	submission, err := svc.PerformInitialScreening(id,
		services.ScreeningOutcome(req.Outcome), utils.SanitizeInput(req.Note), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// AssignEditor binds an editor to the submission.
func AssignEditor(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		EditorID int  `json:"editor_id" binding:"required"`
		IsChief  bool `json:"is_chief"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	assignment, err := svc.AssignEditor(id, req.EditorID, req.IsChief, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"assignment": assignment,
	})
}

// GetTimeline returns the audit trail for a submission.
func GetTimeline(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	events, err := svc.GetTimeline(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"events":  events,
		"total":   len(events),
	})
}
