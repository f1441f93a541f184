package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"journal-management-api/utils"
)

// CreatePaymentObligation opens the publication-fee gate on an accepted
// submission.
func CreatePaymentObligation(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Amount   float64 `json:"amount" binding:"required,gt=0"`
		Currency string  `json:"currency" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount and currency are required"})
		return
	}

	payment, err := svc.CreatePaymentObligation(id, req.Amount, req.Currency, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"payment": payment,
	})
}

// MarkPaymentAsPaid settles the outstanding fee and releases the
// submission back to accepted.
func MarkPaymentAsPaid(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		TransactionRef string `json:"transaction_ref" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "transaction_ref is required"})
		return
	}

	payment, err := svc.MarkPaymentAsPaid(id, utils.SanitizeInput(req.TransactionRef), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"payment": payment,
	})
}

// GetPayment returns the payment record attached to a submission.
func GetPayment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	payment, err := svc.GetPayment(id, actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"payment": payment,
	})
}
