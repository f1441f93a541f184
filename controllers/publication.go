package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"journal-management-api/services"
	"journal-management-api/utils"
)

// AssignDOI mints and attaches a DOI to an accepted submission.
func AssignDOI(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	submission, err := svc.AssignDOI(id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// PublishSubmission finalizes an accepted submission into an issue.
func PublishSubmission(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		IssueID int    `json:"issue_id" binding:"required"`
		Pages   string `json:"pages"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "issue_id is required"})
		return
	}

	submission, err := svc.PublishSubmission(id, services.PublishInput{
		IssueID: req.IssueID,
		Pages:   utils.SanitizeInput(req.Pages),
	}, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// CreateIssue registers a journal issue to publish into.
func CreateIssue(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req struct {
		Volume int    `json:"volume" binding:"required"`
		Number int    `json:"number" binding:"required"`
		Year   int    `json:"year" binding:"required"`
		Title  string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "volume, number and year are required"})
		return
	}

	issue, err := svc.CreateIssue(req.Volume, req.Number, req.Year, utils.SanitizeInput(req.Title), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"issue":   issue,
	})
}

// ListIssues returns all journal issues.
func ListIssues(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}

	issues, err := svc.ListIssues()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"issues":  issues,
		"total":   len(issues),
	})
}
