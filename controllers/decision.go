package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"journal-management-api/services"
	"journal-management-api/utils"
)

// MakeDecision applies an editorial decision to a submission.
func MakeDecision(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Decision            string `json:"decision" binding:"required"`
		Comments            string `json:"comments"`
		ConfidentialComment string `json:"confidential_comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	submission, err := svc.MakeDecision(id, services.DecisionInput{
		Decision:            services.Decision(req.Decision),
		Comments:            utils.SanitizeInput(req.Comments),
		ConfidentialComment: utils.SanitizeInput(req.ConfidentialComment),
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

// GetDecisions returns the decision history for a submission, with
// confidential comments included. Editors only.
func GetDecisions(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	records, err := svc.ListDecisions(id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"decisions": records,
	})
}

// HandleRevision records the editor's verdict on a revised manuscript.
func HandleRevision(c *gin.Context) {
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
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	submission, err := svc.HandleRevision(id,
		services.RevisionOutcome(req.Outcome), utils.SanitizeInput(req.Comment), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// OverrideStatus is the admin escape hatch. The reason is mandatory and
// lands in the timeline.
func OverrideStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status and reason are required"})
		return
	}

	submission, err := svc.OverrideStatus(id,
		services.Status(req.Status), utils.SanitizeInput(req.Reason), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}
