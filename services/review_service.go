package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"journal-management-api/models"
)

// AssignReviewer creates a Review plus its pending invitation for the
// given reviewer and advances the submission to UnderReview on the first
// successful assignment.
func (s *Service) AssignReviewer(submissionID, reviewerID int, dueDate *time.Time, actor Actor) (*models.Review, error) {
	if !actor.IsEditor() {
		return nil, forbiddenf("only editors may assign reviewers")
	}

	var review models.Review
	var effects []Effect

	err := s.db.Transaction(func(tx *gorm.DB) error {
		submission, err := s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}

		from := Status(submission.Status)
		switch from {
		case StatusSubmitted, StatusInitialReview, StatusUnderReview:
			// assignable
		default:
			return invalidStatef("reviewers cannot be assigned while submission is %s", from)
		}

		var reviewer models.User
		if err := tx.Where("user_id = ? AND delete_at IS NULL", reviewerID).First(&reviewer).Error; err != nil {
			return notFoundf("reviewer %d not found", reviewerID)
		}
		if !reviewer.CanReview() {
			return validationf("user %d does not hold a reviewing role", reviewerID)
		}
		if !reviewer.IsActive {
			return validationf("reviewer %d is inactive", reviewerID)
		}
		if reviewer.UserID == submission.AuthorID {
			return validationf("the submitting author cannot review their own manuscript")
		}

		var excluded int64
		if err := tx.Model(&models.ExcludedReviewer{}).
			Where("submission_id = ? AND user_id = ?", submissionID, reviewerID).
			Count(&excluded).Error; err != nil {
			return err
		}
		if excluded > 0 {
			return validationf("reviewer %d was excluded by the author", reviewerID)
		}

		var duplicate int64
		if err := tx.Model(&models.Review{}).
			Where("submission_id = ? AND reviewer_id = ?", submissionID, reviewerID).
			Count(&duplicate).Error; err != nil {
			return err
		}
		if duplicate > 0 {
			return newError(KindDuplicateAssignment, "reviewer already has a review assignment for this submission")
		}

		now := s.now()
		review = models.Review{
			SubmissionID: submissionID,
			ReviewerID:   reviewerID,
			Status:       models.ReviewStatusPending,
			DueDate:      dueDate,
			CreateAt:     now,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		invitation := models.ReviewerInvitation{
			ReviewID: review.ReviewID,
			Status:   models.InvitationStatusPending,
			CreateAt: now,
		}
		if err := tx.Create(&invitation).Error; err != nil {
			return err
		}
		review.Invitation = &invitation

		if from != StatusUnderReview {
			if err := s.transitionStatus(tx, submissionID, from, StatusUnderReview, nil); err != nil {
				return err
			}
			if err := s.recordTimeline(tx, submissionID, "reviewer_assigned", &from, StatusUnderReview,
				describeTransition(from, StatusUnderReview), actor); err != nil {
				return err
			}
		} else {
			if err := s.recordTimeline(tx, submissionID, "reviewer_assigned", &from, from,
				fmt.Sprintf("reviewer %s invited", reviewer.FullName()), actor); err != nil {
				return err
			}
		}

		vars := map[string]string{
			"RecipientName": reviewer.FullName(),
			"Title":         submission.Title,
			"Link":          s.submissionLink(submissionID),
		}
		if dueDate != nil {
			vars["DueDate"] = dueDate.Format("2 January 2006")
		}
		effects = append(effects, Effect{
			Kind:         EffectReviewerInvited,
			SubmissionID: submissionID,
			Recipients:   []int{reviewerID},
			Template:     "reviewer_invited",
			Vars:         vars,
			Title:        "Review invitation",
			Message:      fmt.Sprintf("You have been invited to review %s", submission.SubmissionNumber),
			Type:         "info",
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(effects)
	return &review, nil
}

// GetAvailableReviewers returns eligible reviewer candidates for a
// submission. The exclusion set is exact: the author, everyone already
// assigned, and every author-excluded reviewer are filtered out.
func (s *Service) GetAvailableReviewers(submissionID int, actor Actor) ([]models.User, error) {
	if !actor.IsEditor() {
		return nil, forbiddenf("only editors may list reviewer candidates")
	}
	submission, err := s.loadSubmission(s.db, submissionID)
	if err != nil {
		return nil, err
	}

	assigned := s.db.Model(&models.Review{}).
		Select("reviewer_id").
		Where("submission_id = ?", submissionID)
	excluded := s.db.Model(&models.ExcludedReviewer{}).
		Select("user_id").
		Where("submission_id = ?", submissionID)

	var candidates []models.User
	err = s.db.
		Where("role_id IN ? AND is_active = ? AND delete_at IS NULL",
			[]int{models.RoleReviewer, models.RoleEditor, models.RoleAdmin}, true).
		Where("user_id <> ?", submission.AuthorID).
		Where("user_id NOT IN (?)", assigned).
		Where("user_id NOT IN (?)", excluded).
		Find(&candidates).Error
	return candidates, err
}

// RespondToInvitation records the reviewer's accept/decline. An accept
// moves the review to in_progress; the submission status is untouched.
// The assigned editors get an in-app notification either way.
func (s *Service) RespondToInvitation(reviewID int, accept bool, notes string, actor Actor) (*models.Review, error) {
	var review models.Review
	var effects []Effect

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Invitation").Where("review_id = ?", reviewID).First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("review %d not found", reviewID)
			}
			return err
		}
		if review.ReviewerID != actor.UserID {
			return forbiddenf("only the invited reviewer may respond to this invitation")
		}
		if review.Invitation == nil {
			return notFoundf("invitation for review %d not found", reviewID)
		}
		if review.Invitation.Status != models.InvitationStatusPending {
			return invalidStatef("invitation was already %s", review.Invitation.Status)
		}
		if review.Status != models.ReviewStatusPending {
			return invalidStatef("review is already %s", review.Status)
		}

		now := s.now()
		invitationStatus := models.InvitationStatusDeclined
		reviewStatus := models.ReviewStatusDeclined
		if accept {
			invitationStatus = models.InvitationStatusAccepted
			reviewStatus = models.ReviewStatusInProgress
		}

		invUpdates := map[string]interface{}{
			"status":       invitationStatus,
			"responded_at": now,
		}
		if notes != "" {
			invUpdates["response_notes"] = notes
		}
		// Guard against a double response racing past the read above.
		result := tx.Model(&models.ReviewerInvitation{}).
			Where("invitation_id = ? AND status = ?", review.Invitation.InvitationID, models.InvitationStatusPending).
			Updates(invUpdates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return conflictf("invitation was answered concurrently")
		}

		reviewUpdates := map[string]interface{}{
			"status":    reviewStatus,
			"update_at": now,
		}
		if accept {
			reviewUpdates["accepted_at"] = now
		}
		if err := tx.Model(&models.Review{}).
			Where("review_id = ?", reviewID).
			Updates(reviewUpdates).Error; err != nil {
			return err
		}

		submission, err := s.loadSubmission(tx, review.SubmissionID)
		if err != nil {
			return err
		}
		current := Status(submission.Status)
		kind := "invitation_declined"
		desc := "reviewer declined the invitation"
		answer := "declined"
		notificationType := "warning"
		if accept {
			kind = "invitation_accepted"
			desc = "reviewer accepted the invitation"
			answer = "accepted"
			notificationType = "info"
		}
		if err := s.recordTimeline(tx, review.SubmissionID, kind, &current, current, desc, actor); err != nil {
			return err
		}

		effects = append(effects, Effect{
			Kind:         EffectInvitationAnswered,
			SubmissionID: review.SubmissionID,
			Recipients:   s.assignedEditorIDs(tx, review.SubmissionID),
			Title:        "Review invitation " + answer,
			Message:      fmt.Sprintf("A review invitation for %s was %s", submission.SubmissionNumber, answer),
			Type:         notificationType,
		})

		review.Status = reviewStatus
		review.Invitation.Status = invitationStatus
		review.Invitation.RespondedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(effects)
	return &review, nil
}

// ReviewInput carries the reviewer's completed evaluation.
type ReviewInput struct {
	Recommendation       string
	Rating               int
	Comments             string
	ConfidentialComments string
}

// SubmitReview completes an in-progress review and unlocks editorial
// decision eligibility. The submission status itself is unchanged.
func (s *Service) SubmitReview(reviewID int, input ReviewInput, actor Actor) (*models.Review, error) {
	switch input.Recommendation {
	case models.RecommendationAccept, models.RecommendationMinorRevision,
		models.RecommendationMajorRevision, models.RecommendationReject:
	default:
		return nil, validationf("unknown recommendation %q", input.Recommendation)
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, validationf("rating must be between 1 and 5")
	}

	var review models.Review
	var effects []Effect

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("review_id = ?", reviewID).First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("review %d not found", reviewID)
			}
			return err
		}
		if review.ReviewerID != actor.UserID {
			return forbiddenf("only the assigned reviewer may submit this review")
		}
		if review.Status != models.ReviewStatusInProgress {
			return invalidStatef("review is %s; only in-progress reviews can be submitted", review.Status)
		}

		now := s.now()
		updates := map[string]interface{}{
			"status":         models.ReviewStatusCompleted,
			"recommendation": input.Recommendation,
			"rating":         input.Rating,
			"comments":       input.Comments,
			"submitted_at":   now,
			"update_at":      now,
		}
		if input.ConfidentialComments != "" {
			updates["confidential_comments"] = input.ConfidentialComments
		}
		result := tx.Model(&models.Review{}).
			Where("review_id = ? AND status = ?", reviewID, models.ReviewStatusInProgress).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return conflictf("review state changed concurrently")
		}

		submission, err := s.loadSubmission(tx, review.SubmissionID)
		if err != nil {
			return err
		}
		current := Status(submission.Status)
		if err := s.recordTimeline(tx, review.SubmissionID, "review_completed", &current, current,
			fmt.Sprintf("review completed with recommendation %s", input.Recommendation), actor); err != nil {
			return err
		}

		effects = append(effects, Effect{
			Kind:         EffectReviewCompleted,
			SubmissionID: review.SubmissionID,
			Recipients:   s.assignedEditorIDs(tx, review.SubmissionID),
			Template:     "review_completed",
			Vars: map[string]string{
				"RecipientName": "editor",
				"Title":         submission.Title,
				"Number":        submission.SubmissionNumber,
				"Link":          s.submissionLink(review.SubmissionID),
			},
			Title:   "Review completed",
			Message: fmt.Sprintf("A review for %s has been completed", submission.SubmissionNumber),
			Type:    "success",
		})

		review.Status = models.ReviewStatusCompleted
		review.Recommendation = &input.Recommendation
		review.Rating = &input.Rating
		review.SubmittedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(effects)
	return &review, nil
}

// RemoveReviewer hard-deletes a review and its invitation. Permitted only
// before completion, since no decision can have depended on it yet.
func (s *Service) RemoveReviewer(reviewID int, actor Actor) error {
	if !actor.IsEditor() {
		return forbiddenf("only editors may remove reviewers")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.Where("review_id = ?", reviewID).First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("review %d not found", reviewID)
			}
			return err
		}
		if review.Status == models.ReviewStatusCompleted {
			return invalidStatef("completed reviews cannot be removed")
		}

		if err := tx.Where("review_id = ?", reviewID).Delete(&models.ReviewerInvitation{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Review{}, reviewID).Error; err != nil {
			return err
		}

		submission, err := s.loadSubmission(tx, review.SubmissionID)
		if err != nil {
			return err
		}
		current := Status(submission.Status)
		return s.recordTimeline(tx, review.SubmissionID, "reviewer_removed", &current, current,
			fmt.Sprintf("reviewer %d removed from the submission", review.ReviewerID), actor)
	})
}

// ListOverdueReviews returns unfinished reviews past their due date,
// surfaced to editors; deadlines never auto-cancel anything.
func (s *Service) ListOverdueReviews(actor Actor) ([]models.Review, error) {
	if !actor.IsEditor() {
		return nil, forbiddenf("only editors may list overdue reviews")
	}
	var reviews []models.Review
	err := s.db.Preload("Reviewer").
		Where("due_date IS NOT NULL AND due_date < ?", s.now()).
		Where("status IN ?", []string{models.ReviewStatusPending, models.ReviewStatusInProgress}).
		Order("due_date ASC").
		Find(&reviews).Error
	return reviews, err
}

// SendReviewReminder emails the reviewer and bumps the reminder counter.
func (s *Service) SendReviewReminder(reviewID int, actor Actor) (*models.Review, error) {
	if !actor.IsEditor() {
		return nil, forbiddenf("only editors may send review reminders")
	}

	var review models.Review
	var effects []Effect

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Reviewer").Where("review_id = ?", reviewID).First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("review %d not found", reviewID)
			}
			return err
		}
		if review.Status != models.ReviewStatusPending && review.Status != models.ReviewStatusInProgress {
			return invalidStatef("review is %s; reminders apply to outstanding reviews", review.Status)
		}

		if err := tx.Model(&models.Review{}).
			Where("review_id = ?", reviewID).
			Updates(map[string]interface{}{
				"reminders_sent": gorm.Expr("reminders_sent + 1"),
				"update_at":      s.now(),
			}).Error; err != nil {
			return err
		}

		submission, err := s.loadSubmission(tx, review.SubmissionID)
		if err != nil {
			return err
		}

		vars := map[string]string{
			"RecipientName": "reviewer",
			"Title":         submission.Title,
			"Link":          s.submissionLink(review.SubmissionID),
		}
		if review.Reviewer != nil {
			vars["RecipientName"] = review.Reviewer.FullName()
		}
		if review.DueDate != nil {
			vars["DueDate"] = review.DueDate.Format("2 January 2006")
		}
		effects = append(effects, Effect{
			Kind:         EffectReviewReminder,
			SubmissionID: review.SubmissionID,
			Recipients:   []int{review.ReviewerID},
			Template:     "review_reminder",
			Vars:         vars,
			Title:        "Review reminder",
			Message:      fmt.Sprintf("Your review of %s is due", submission.SubmissionNumber),
			Type:         "warning",
		})
		review.RemindersSent++
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(effects)
	return &review, nil
}

// ListReviewsForSubmission returns the submission's reviews for the
// editor dashboard; confidential comments stay editor-only via the model.
func (s *Service) ListReviewsForSubmission(submissionID int, actor Actor) ([]models.Review, error) {
	if !actor.IsEditor() {
		return nil, forbiddenf("only editors may list a submission's reviews")
	}
	if _, err := s.loadSubmission(s.db, submissionID); err != nil {
		return nil, err
	}
	var reviews []models.Review
	err := s.db.Preload("Reviewer").Preload("Invitation").
		Where("submission_id = ?", submissionID).
		Order("create_at ASC").
		Find(&reviews).Error
	return reviews, err
}

// ListReviewsForReviewer returns the acting reviewer's assignments.
func (s *Service) ListReviewsForReviewer(actor Actor) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Preload("Invitation").
		Where("reviewer_id = ?", actor.UserID).
		Order("create_at DESC").
		Find(&reviews).Error
	return reviews, err
}
