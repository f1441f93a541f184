package routes

import (
	"github.com/gin-gonic/gin"

	"journal-management-api/controllers"
	"journal-management-api/middleware"
	"journal-management-api/models"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Journal Management API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Manuscript submissions
			submissions := protected.Group("/submissions")
			{
				submissions.POST("", controllers.CreateDraft)
				submissions.GET("", controllers.GetMySubmissions)
				submissions.GET("/:id", controllers.GetSubmission)
				submissions.GET("/:id/timeline", controllers.GetTimeline)
				submissions.POST("/:id/files", controllers.UploadSubmissionFile)
				submissions.POST("/:id/submit", controllers.SubmitForReview)
				submissions.POST("/:id/withdraw", controllers.WithdrawSubmission)

				// Editorial workflow
				editorial := middleware.RequireRole(models.RoleEditor, models.RoleAdmin)
				submissions.POST("/:id/screening", editorial, controllers.PerformScreening)
				submissions.POST("/:id/editors", editorial, controllers.AssignEditor)
				submissions.POST("/:id/reviewers", editorial, controllers.AssignReviewer)
				submissions.GET("/:id/available-reviewers", editorial, controllers.GetAvailableReviewers)
				submissions.GET("/:id/reviews", controllers.GetSubmissionReviews)
				submissions.POST("/:id/decision", editorial, controllers.MakeDecision)
				submissions.GET("/:id/decisions", editorial, controllers.GetDecisions)
				submissions.POST("/:id/revision-outcome", editorial, controllers.HandleRevision)

				// Revisions
				submissions.POST("/:id/revisions", controllers.CreateRevision)
				submissions.GET("/:id/revisions", controllers.GetRevisions)

				// Payment gate
				submissions.POST("/:id/payment", editorial, controllers.CreatePaymentObligation)
				submissions.POST("/:id/payment/paid", editorial, controllers.MarkPaymentAsPaid)
				submissions.GET("/:id/payment", controllers.GetPayment)

				// Publication
				submissions.POST("/:id/doi", editorial, controllers.AssignDOI)
				submissions.POST("/:id/publish", editorial, controllers.PublishSubmission)

				// Admin escape hatch
				submissions.POST("/:id/override-status",
					middleware.RequireRole(models.RoleAdmin), controllers.OverrideStatus)
			}

			// Revision file uploads are keyed by revision id
			revisions := protected.Group("/revisions")
			{
				revisions.POST("/:id/files", controllers.UploadRevisionFile)
			}

			// Editor dashboard
			editor := protected.Group("/editor")
			editor.Use(middleware.RequireRole(models.RoleEditor, models.RoleAdmin))
			{
				editor.GET("/submissions", controllers.GetSubmissionsByStatus)
				editor.GET("/reviews/overdue", controllers.GetOverdueReviews)
			}

			// Reviewer workspace
			reviews := protected.Group("/reviews")
			{
				reviews.GET("/mine", controllers.GetMyReviews)
				reviews.POST("/:id/respond", controllers.RespondToInvitation)
				reviews.POST("/:id/report", controllers.SubmitReview)
				reviews.POST("/:id/remind",
					middleware.RequireRole(models.RoleEditor, models.RoleAdmin), controllers.SendReviewReminder)
				reviews.DELETE("/:id",
					middleware.RequireRole(models.RoleEditor, models.RoleAdmin), controllers.RemoveReviewer)
			}

			// Issues
			issues := protected.Group("/issues")
			{
				issues.GET("", controllers.ListIssues)
				issues.POST("",
					middleware.RequireRole(models.RoleEditor, models.RoleAdmin), controllers.CreateIssue)
			}

			// Notifications
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", controllers.GetMyNotifications)
				notifications.GET("/unread-count", controllers.GetUnreadCount)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
				notifications.PUT("/read-all", controllers.MarkAllNotificationsRead)
			}
		}
	}
}
