package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"journal-management-api/models"
)

// CreateRevision records one author resubmission cycle. The revision
// number is max existing + 1, computed inside the same transaction that
// inserts the row, so numbers are strictly increasing per submission.
func (s *Service) CreateRevision(submissionID int, responseText string, actor Actor) (*models.Revision, error) {
	var revision models.Revision
	var effects []Effect

	err := s.db.Transaction(func(tx *gorm.DB) error {
		submission, err := s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if submission.AuthorID != actor.UserID && !actor.IsAdmin() {
			return forbiddenf("only the submitting author may create a revision")
		}

		from := Status(submission.Status)
		if from != StatusRevisionRequired {
			return invalidStatef("submission is %s; revisions can only follow a revision request", from)
		}

		var maxNumber int
		row := tx.Model(&models.Revision{}).
			Select("COALESCE(MAX(revision_number), 0)").
			Where("submission_id = ?", submissionID).
			Row()
		if err := row.Scan(&maxNumber); err != nil {
			return err
		}

		revision = models.Revision{
			SubmissionID:   submissionID,
			RevisionNumber: maxNumber + 1,
			ResponseText:   responseText,
			CreatedBy:      actor.UserID,
			CreateAt:       s.now(),
		}
		if err := tx.Create(&revision).Error; err != nil {
			return err
		}

		if err := s.transitionStatus(tx, submissionID, from, StatusRevised, nil); err != nil {
			return err
		}
		if err := s.recordTimeline(tx, submissionID, "revision_submitted", &from, StatusRevised,
			fmt.Sprintf("revision #%d submitted", revision.RevisionNumber), actor); err != nil {
			return err
		}

		effects = append(effects, Effect{
			Kind:         EffectRevisionSubmitted,
			SubmissionID: submissionID,
			Recipients:   s.assignedEditorIDs(tx, submissionID),
			Template:     "revision_submitted",
			Vars: map[string]string{
				"RecipientName":  "editor",
				"Title":          submission.Title,
				"Number":         submission.SubmissionNumber,
				"RevisionNumber": fmt.Sprintf("%d", revision.RevisionNumber),
				"Link":           s.submissionLink(submissionID),
			},
			Title:   "Revision submitted",
			Message: fmt.Sprintf("Revision #%d of %s awaits handling", revision.RevisionNumber, submission.SubmissionNumber),
			Type:    "info",
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(effects)
	return &revision, nil
}

// AttachRevisionFile binds an uploaded file to a specific revision, never
// to the bare submission, preserving per-cycle file history. Accepted
// only while the parent submission is still in Revised.
func (s *Service) AttachRevisionFile(revisionID int, file models.RevisionFile, actor Actor) (*models.RevisionFile, error) {
	var revision models.Revision
	if err := s.db.Where("revision_id = ?", revisionID).First(&revision).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("revision %d not found", revisionID)
		}
		return nil, err
	}

	submission, err := s.loadSubmission(s.db, revision.SubmissionID)
	if err != nil {
		return nil, err
	}
	if submission.AuthorID != actor.UserID && !actor.IsAdmin() {
		return nil, forbiddenf("only the submitting author may attach revision files")
	}
	if Status(submission.Status) != StatusRevised {
		return nil, invalidStatef("the revision window is closed; submission is %s", submission.Status)
	}

	file.RevisionID = revisionID
	file.UploadedBy = actor.UserID
	file.UploadedAt = s.now()
	if err := s.db.Create(&file).Error; err != nil {
		return nil, err
	}
	return &file, nil
}

// ListRevisions returns a submission's revision history with files.
func (s *Service) ListRevisions(submissionID int, actor Actor) ([]models.Revision, error) {
	submission, err := s.loadSubmission(s.db, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.AuthorID != actor.UserID && !actor.IsEditor() {
		return nil, forbiddenf("you do not have access to this submission's revisions")
	}
	var revisions []models.Revision
	err = s.db.Preload("Files").
		Where("submission_id = ?", submissionID).
		Order("revision_number ASC").
		Find(&revisions).Error
	return revisions, err
}
