package services

import (
	"fmt"

	"gorm.io/gorm"

	"journal-management-api/models"
)

// DecisionInput carries an editorial decision with its comments. The
// confidential comment is kept off author-facing output.
type DecisionInput struct {
	Decision            Decision
	Comments            string
	ConfidentialComment string
}

// MakeDecision applies an editorial decision to a submission in
// UnderReview or Revised. Accept and RevisionRequired require at least
// one completed review; Reject does not (desk rejection is policy).
func (s *Service) MakeDecision(submissionID int, input DecisionInput, actor Actor) (*models.Submission, error) {
	if !actor.IsEditor() {
		return nil, forbiddenf("only editors may make editorial decisions")
	}
	to, err := StatusForDecision(input.Decision)
	if err != nil {
		return nil, err
	}

	var effects []Effect
	var submission *models.Submission

	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}

		from := Status(submission.Status)
		if from != StatusUnderReview && from != StatusRevised {
			return invalidStatef("submission is %s; decisions apply to manuscripts under review", from)
		}

		if input.Decision != DecisionReject {
			var completed int64
			if err := tx.Model(&models.Review{}).
				Where("submission_id = ? AND status = ?", submissionID, models.ReviewStatusCompleted).
				Count(&completed).Error; err != nil {
				return err
			}
			if completed == 0 {
				return invalidStatef("at least one completed review is required before a %s decision", input.Decision)
			}
		}

		extra := map[string]interface{}{}
		now := s.now()
		if to == StatusAccepted {
			extra["accepted_at"] = now
		}
		if err := s.transitionStatus(tx, submissionID, from, to, extra); err != nil {
			return err
		}

		description := describeTransition(from, to)
		if input.Comments != "" {
			description = fmt.Sprintf("%s — %s", description, input.Comments)
		}
		if err := s.recordTimeline(tx, submissionID, "decision", &from, to, description, actor); err != nil {
			return err
		}

		record := models.DecisionRecord{
			SubmissionID: submissionID,
			Decision:     string(input.Decision),
			Comments:     input.Comments,
			DecidedBy:    actor.UserID,
			CreateAt:     now,
		}
		if input.ConfidentialComment != "" {
			confidential := input.ConfidentialComment
			record.ConfidentialComment = &confidential
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		effects = append(effects, Effect{
			Kind:         EffectDecisionMade,
			SubmissionID: submissionID,
			Recipients:   []int{submission.AuthorID},
			Template:     "decision_made",
			Vars: map[string]string{
				"RecipientName": "author",
				"Title":         submission.Title,
				"Number":        submission.SubmissionNumber,
				"Decision":      string(input.Decision),
				"Comments":      input.Comments,
				"Link":          s.submissionLink(submissionID),
			},
			Title:   "Editorial decision",
			Message: fmt.Sprintf("Decision on %s: %s", submission.SubmissionNumber, input.Decision),
			Type:    decisionNotificationType(input.Decision),
		})

		submission.Status = string(to)
		if to == StatusAccepted {
			submission.AcceptedAt = &now
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.dispatch(effects)
	return submission, nil
}

// ListDecisions returns the decision history for a submission, including
// confidential comments. Editor-gated: the author-facing surfaces (the
// submission itself, its timeline) never carry the confidential text.
func (s *Service) ListDecisions(submissionID int, actor Actor) ([]models.DecisionRecord, error) {
	if !actor.IsEditor() {
		return nil, forbiddenf("only editors may view decision records")
	}
	if _, err := s.loadSubmission(s.db, submissionID); err != nil {
		return nil, err
	}
	var records []models.DecisionRecord
	err := s.db.Where("submission_id = ?", submissionID).
		Order("create_at ASC, decision_id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func decisionNotificationType(d Decision) string {
	switch d {
	case DecisionAccept:
		return "success"
	case DecisionReject:
		return "error"
	default:
		return "warning"
	}
}

// RevisionOutcome is the editor's verdict on a submitted revision.
type RevisionOutcome string

const (
	RevisionAccept   RevisionOutcome = "accept"
	RevisionReject   RevisionOutcome = "reject"
	RevisionReReview RevisionOutcome = "re_review"
)

// HandleRevision moves a Revised submission on: accept, reject, or send
// back out for another review round.
func (s *Service) HandleRevision(submissionID int, outcome RevisionOutcome, comment string, actor Actor) (*models.Submission, error) {
	if !actor.IsEditor() {
		return nil, forbiddenf("only editors may handle revisions")
	}

	var to Status
	switch outcome {
	case RevisionAccept:
		to = StatusAccepted
	case RevisionReject:
		to = StatusRejected
	case RevisionReReview:
		to = StatusUnderReview
	default:
		return nil, validationf("unknown revision outcome %q", string(outcome))
	}

	var effects []Effect
	var submission *models.Submission

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}

		from := Status(submission.Status)
		if from != StatusRevised {
			return invalidStatef("submission is %s; revision handling applies to revised manuscripts", from)
		}

		extra := map[string]interface{}{}
		now := s.now()
		if to == StatusAccepted {
			extra["accepted_at"] = now
		}
		if err := s.transitionStatus(tx, submissionID, from, to, extra); err != nil {
			return err
		}

		description := describeTransition(from, to)
		if comment != "" {
			description = fmt.Sprintf("%s — %s", description, comment)
		}
		if err := s.recordTimeline(tx, submissionID, "revision_handled", &from, to, description, actor); err != nil {
			return err
		}

		effects = append(effects, Effect{
			Kind:         EffectDecisionMade,
			SubmissionID: submissionID,
			Recipients:   []int{submission.AuthorID},
			Template:     "decision_made",
			Vars: map[string]string{
				"RecipientName": "author",
				"Title":         submission.Title,
				"Number":        submission.SubmissionNumber,
				"Decision":      string(outcome),
				"Comments":      comment,
				"Link":          s.submissionLink(submissionID),
			},
			Title:   "Revision outcome",
			Message: fmt.Sprintf("Your revision of %s: %s", submission.SubmissionNumber, outcome),
			Type:    "info",
		})

		submission.Status = string(to)
		if to == StatusAccepted {
			submission.AcceptedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(effects)
	return submission, nil
}

// OverrideStatus is the admin escape hatch for correcting a wrong
// decision. It bypasses the transition table but never the audit trail:
// the override is timeline-recorded with its mandatory reason.
func (s *Service) OverrideStatus(submissionID int, newStatus Status, reason string, actor Actor) (*models.Submission, error) {
	if !actor.IsAdmin() {
		return nil, forbiddenf("only admins may override submission status")
	}
	if !newStatus.Valid() {
		return nil, validationf("unknown status %q", string(newStatus))
	}
	if reason == "" {
		return nil, validationf("an override reason is required")
	}

	var submission *models.Submission

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		from := Status(submission.Status)

		result := tx.Model(&models.Submission{}).
			Where("submission_id = ? AND status = ?", submissionID, string(from)).
			Updates(map[string]interface{}{
				"status":    string(newStatus),
				"update_at": s.now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return conflictf("submission %d status changed concurrently", submissionID)
		}

		if err := s.recordTimeline(tx, submissionID, "status_override", &from, newStatus,
			fmt.Sprintf("admin override: %s", reason), actor); err != nil {
			return err
		}
		submission.Status = string(newStatus)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return submission, nil
}
