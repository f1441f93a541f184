package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"journal-management-api/models"
	"journal-management-api/utils"
)

// DraftInput carries the fields an author provides when creating a draft.
type DraftInput struct {
	Title          string
	Abstract       string
	Keywords       []string
	ManuscriptType string
	DoubleBlind    bool
	CoAuthors      []CoAuthorInput
	Suggested      []SuggestedReviewerInput
	ExcludedUserID []int
}

type CoAuthorInput struct {
	Name        string
	Email       string
	Affiliation string
}

type SuggestedReviewerInput struct {
	Name   string
	Email  string
	Reason string
}

// CreateDraft creates a submission in Draft for the acting author.
func (s *Service) CreateDraft(input DraftInput, actor Actor) (*models.Submission, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, validationf("title is required")
	}
	if strings.TrimSpace(input.ManuscriptType) == "" {
		return nil, validationf("manuscript type is required")
	}
	for _, ca := range input.CoAuthors {
		if !utils.ValidateEmail(ca.Email) {
			return nil, validationf("co-author email %q is not a valid address", ca.Email)
		}
	}
	for _, sr := range input.Suggested {
		if !utils.ValidateEmail(sr.Email) {
			return nil, validationf("suggested reviewer email %q is not a valid address", sr.Email)
		}
	}

	now := s.now()
	submission := models.Submission{
		SubmissionNumber: s.newSubmissionNumber(),
		Title:            strings.TrimSpace(input.Title),
		Abstract:         strings.TrimSpace(input.Abstract),
		Keywords:         strings.Join(input.Keywords, ","),
		ManuscriptType:   input.ManuscriptType,
		DoubleBlind:      input.DoubleBlind,
		Status:           string(StatusDraft),
		AuthorID:         actor.UserID,
		CreateAt:         now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}
		for i, ca := range input.CoAuthors {
			row := models.SubmissionCoAuthor{
				SubmissionID: submission.SubmissionID,
				Name:         ca.Name,
				Email:        ca.Email,
				AuthorOrder:  i + 1,
			}
			if ca.Affiliation != "" {
				aff := ca.Affiliation
				row.Affiliation = &aff
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, sr := range input.Suggested {
			if err := tx.Create(&models.SuggestedReviewer{
				SubmissionID: submission.SubmissionID,
				Name:         sr.Name,
				Email:        sr.Email,
				Reason:       sr.Reason,
			}).Error; err != nil {
				return err
			}
		}
		for _, userID := range input.ExcludedUserID {
			if err := tx.Create(&models.ExcludedReviewer{
				SubmissionID: submission.SubmissionID,
				UserID:       userID,
			}).Error; err != nil {
				return err
			}
		}
		return s.recordTimeline(tx, submission.SubmissionID, "draft_created", nil, StatusDraft,
			"draft created by author", actor)
	})
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// SubmitForReview moves a Draft (or a manuscript returned for formatting)
// into Submitted. At least one manuscript file must be attached.
func (s *Service) SubmitForReview(submissionID int, actor Actor) (*models.Submission, error) {
	var effects []Effect
	var submission *models.Submission

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if submission.AuthorID != actor.UserID && !actor.IsAdmin() {
			return forbiddenf("only the submitting author may submit this manuscript")
		}

		from := Status(submission.Status)
		if from != StatusDraft && from != StatusReturnedForFormatting {
			return invalidStatef("submission is %s; only drafts can be submitted for review", from)
		}

		var fileCount int64
		if err := tx.Model(&models.SubmissionFile{}).
			Where("submission_id = ? AND kind = ? AND delete_at IS NULL", submissionID, "manuscript").
			Count(&fileCount).Error; err != nil {
			return err
		}
		if fileCount == 0 {
			return invalidStatef("at least one manuscript file is required before submitting")
		}

		now := s.now()
		if err := s.transitionStatus(tx, submissionID, from, StatusSubmitted,
			map[string]interface{}{"submitted_at": now}); err != nil {
			return err
		}
		if err := s.recordTimeline(tx, submissionID, "submitted", &from, StatusSubmitted,
			describeTransition(from, StatusSubmitted), actor); err != nil {
			return err
		}

		recipients := append([]int{submission.AuthorID}, s.activeEditorIDs(tx)...)
		effects = append(effects, Effect{
			Kind:         EffectSubmissionSubmitted,
			SubmissionID: submissionID,
			Recipients:   recipients,
			Template:     "submission_submitted",
			Vars: map[string]string{
				"RecipientName": "colleague",
				"Title":         submission.Title,
				"Number":        submission.SubmissionNumber,
				"Date":          now.Format("2 January 2006"),
				"Link":          s.submissionLink(submissionID),
			},
			Title:   "Submission received",
			Message: fmt.Sprintf("%s (%s) was submitted for review", submission.Title, submission.SubmissionNumber),
			Type:    "info",
		})
		submission.Status = string(StatusSubmitted)
		submission.SubmittedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(effects)
	return submission, nil
}

// AssignEditor binds an editor to the submission. The first assignment
// advances Submitted to InitialReview; flagging chief demotes any
// existing chief so at most one remains.
func (s *Service) AssignEditor(submissionID, editorID int, chief bool, actor Actor) (*models.EditorAssignment, error) {
	if !actor.IsEditor() {
		return nil, forbiddenf("only editors may assign editors")
	}

	var assignment models.EditorAssignment
	var effects []Effect

	err := s.db.Transaction(func(tx *gorm.DB) error {
		submission, err := s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}

		var editor models.User
		if err := tx.Where("user_id = ? AND delete_at IS NULL", editorID).First(&editor).Error; err != nil {
			return notFoundf("editor %d not found", editorID)
		}
		if editor.RoleID != models.RoleEditor && editor.RoleID != models.RoleAdmin {
			return validationf("user %d does not hold the editor role", editorID)
		}
		if !editor.IsActive {
			return validationf("editor %d is inactive", editorID)
		}

		var existing int64
		if err := tx.Model(&models.EditorAssignment{}).
			Where("submission_id = ? AND editor_id = ?", submissionID, editorID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return newError(KindDuplicateAssignment, "editor is already assigned to this submission")
		}

		if chief {
			if err := tx.Model(&models.EditorAssignment{}).
				Where("submission_id = ? AND is_chief = ?", submissionID, true).
				Update("is_chief", false).Error; err != nil {
				return err
			}
		}

		assignment = models.EditorAssignment{
			SubmissionID: submissionID,
			EditorID:     editorID,
			IsChief:      chief,
			AssignedBy:   actor.UserID,
			CreateAt:     s.now(),
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}

		from := Status(submission.Status)
		if from == StatusSubmitted {
			if err := s.transitionStatus(tx, submissionID, StatusSubmitted, StatusInitialReview, nil); err != nil {
				return err
			}
			if err := s.recordTimeline(tx, submissionID, "editor_assigned", &from, StatusInitialReview,
				describeTransition(from, StatusInitialReview), actor); err != nil {
				return err
			}
		} else {
			if err := s.recordTimeline(tx, submissionID, "editor_assigned", &from, from,
				fmt.Sprintf("editor %s assigned", editor.FullName()), actor); err != nil {
				return err
			}
		}

		effects = append(effects, Effect{
			Kind:         EffectEditorAssigned,
			SubmissionID: submissionID,
			Recipients:   []int{editorID},
			Title:        "Submission assigned to you",
			Message:      fmt.Sprintf("%s (%s) is awaiting your handling", submission.Title, submission.SubmissionNumber),
			Type:         "info",
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(effects)
	return &assignment, nil
}

// PerformInitialScreening records the editor's screening outcome: proceed
// to review, reject outright, or return to the author for formatting.
func (s *Service) PerformInitialScreening(submissionID int, outcome ScreeningOutcome, note string, actor Actor) (*models.Submission, error) {
	if !actor.IsEditor() {
		return nil, forbiddenf("only editors may screen submissions")
	}
	if !outcome.valid() {
		return nil, validationf("unknown screening outcome %q", string(outcome))
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
		if from != StatusSubmitted && from != StatusInitialReview {
			return invalidStatef("submission is %s; screening applies to submitted manuscripts", from)
		}

		var to Status
		switch outcome {
		case ScreeningProceed:
			to = StatusInitialReview
		case ScreeningReject:
			to = StatusRejected
		case ScreeningReturn:
			to = StatusReturnedForFormatting
		}

		if from != to {
			if err := s.transitionStatus(tx, submissionID, from, to, nil); err != nil {
				return err
			}
		}
		description := fmt.Sprintf("initial screening: %s", outcome)
		if note != "" {
			description = fmt.Sprintf("%s (%s)", description, note)
		}
		if err := s.recordTimeline(tx, submissionID, "screening", &from, to, description, actor); err != nil {
			return err
		}

		effects = append(effects, Effect{
			Kind:         EffectScreeningCompleted,
			SubmissionID: submissionID,
			Recipients:   []int{submission.AuthorID},
			Template:     "screening_completed",
			Vars: map[string]string{
				"RecipientName": "author",
				"Title":         submission.Title,
				"Number":        submission.SubmissionNumber,
				"Outcome":       string(outcome),
				"Note":          note,
				"Link":          s.submissionLink(submissionID),
			},
			Title:   "Screening completed",
			Message: fmt.Sprintf("Initial screening of %s concluded: %s", submission.SubmissionNumber, outcome),
			Type:    screeningNotificationType(outcome),
		})
		submission.Status = string(to)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(effects)
	return submission, nil
}

func screeningNotificationType(outcome ScreeningOutcome) string {
	switch outcome {
	case ScreeningReject:
		return "error"
	case ScreeningReturn:
		return "warning"
	default:
		return "info"
	}
}

// WithdrawSubmission moves any non-terminal submission to Withdrawn.
// Terminal and irreversible.
func (s *Service) WithdrawSubmission(submissionID int, reason string, actor Actor) (*models.Submission, error) {
	var effects []Effect
	var submission *models.Submission

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if submission.AuthorID != actor.UserID && !actor.IsAdmin() {
			return forbiddenf("only the author or an admin may withdraw a submission")
		}

		from := Status(submission.Status)
		if from == StatusPublished || from == StatusWithdrawn {
			return invalidStatef("submission is %s and can no longer be withdrawn", from)
		}

		if err := s.transitionStatus(tx, submissionID, from, StatusWithdrawn, nil); err != nil {
			return err
		}
		description := describeTransition(from, StatusWithdrawn)
		if reason != "" {
			description = fmt.Sprintf("%s: %s", description, reason)
		}
		if err := s.recordTimeline(tx, submissionID, "withdrawn", &from, StatusWithdrawn, description, actor); err != nil {
			return err
		}

		recipients := append([]int{submission.AuthorID}, s.assignedEditorIDs(tx, submissionID)...)
		effects = append(effects, Effect{
			Kind:         EffectSubmissionWithdrawn,
			SubmissionID: submissionID,
			Recipients:   recipients,
			Template:     "submission_withdrawn",
			Vars: map[string]string{
				"RecipientName": "colleague",
				"Title":         submission.Title,
				"Number":        submission.SubmissionNumber,
			},
			Title:   "Submission withdrawn",
			Message: fmt.Sprintf("%s (%s) was withdrawn", submission.Title, submission.SubmissionNumber),
			Type:    "warning",
		})
		submission.Status = string(StatusWithdrawn)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(effects)
	return submission, nil
}

// AttachSubmissionFile records an uploaded file against the submission.
// Uploads are only accepted while the author can still shape the
// manuscript (draft, returned-for-formatting, or revision flow handles
// the rest).
func (s *Service) AttachSubmissionFile(submissionID int, file models.SubmissionFile, actor Actor) (*models.SubmissionFile, error) {
	submission, err := s.loadSubmission(s.db, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.AuthorID != actor.UserID && !actor.IsEditor() {
		return nil, forbiddenf("only the author or an editor may attach files")
	}
	status := Status(submission.Status)
	if status != StatusDraft && status != StatusReturnedForFormatting {
		return nil, invalidStatef("files cannot be attached while submission is %s", status)
	}

	file.SubmissionID = submissionID
	file.UploadedBy = actor.UserID
	file.UploadedAt = s.now()
	if file.Kind == "" {
		file.Kind = "manuscript"
	}
	if err := s.db.Create(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// GetSubmission loads a submission with its relations for display.
func (s *Service) GetSubmission(submissionID int, actor Actor) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.Preload("Author").
		Preload("CoAuthors").
		Preload("Files").
		Preload("Issue").
		Where("submission_id = ? AND delete_at IS NULL", submissionID).
		First(&submission).Error
	if err != nil {
		return nil, notFoundf("submission %d not found", submissionID)
	}
	if submission.AuthorID != actor.UserID && !actor.IsEditor() && actor.RoleID != models.RoleReviewer {
		return nil, forbiddenf("you do not have access to this submission")
	}
	return &submission, nil
}
