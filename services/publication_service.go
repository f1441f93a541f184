package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"journal-management-api/models"
)

// AssignDOI mints and persists the submission's DOI. A DOI is assigned at
// most once; a second call fails with DOIAlreadyAssigned. Assignment is
// allowed from Accepted or PaymentPending so production can pre-register
// the DOI while the fee is being settled.
func (s *Service) AssignDOI(submissionID int, actor Actor) (*models.Submission, error) {
	if !actor.IsEditor() {
		return nil, forbiddenf("only editors may assign DOIs")
	}

	var submission *models.Submission

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		submission, err = s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}
		if submission.DOI != nil && *submission.DOI != "" {
			return newError(KindDOIAlreadyAssigned, fmt.Sprintf("DOI %s is already assigned", *submission.DOI))
		}

		status := Status(submission.Status)
		if status != StatusAccepted && status != StatusPaymentPending {
			return invalidStatef("submission is %s; DOIs attach to accepted manuscripts", status)
		}

		doi := s.doi.GenerateDOI(submissionID)
		// Conditional on doi still being unset so two concurrent assigns
		// cannot both win.
		result := tx.Model(&models.Submission{}).
			Where("submission_id = ? AND (doi IS NULL OR doi = '')", submissionID).
			Updates(map[string]interface{}{
				"doi":       doi,
				"update_at": s.now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return newError(KindDOIAlreadyAssigned, "DOI was assigned concurrently")
		}

		if err := s.recordTimeline(tx, submissionID, "doi_assigned", &status, status,
			fmt.Sprintf("DOI %s assigned", doi), actor); err != nil {
			return err
		}
		submission.DOI = &doi
		return nil
	})
	if err != nil {
		return nil, err
	}
	return submission, nil
}

// PublishInput names the issue placement for final publication.
type PublishInput struct {
	IssueID int
	Pages   string
}

// PublishSubmission finalizes an accepted submission: requires an
// assigned DOI and a resolvable issue, denormalizes volume/issue/pages
// onto the submission, stamps the publication timestamp and fans out the
// publication notice to the author and co-authors.
func (s *Service) PublishSubmission(submissionID int, input PublishInput, actor Actor) (*models.Submission, error) {
	if !actor.IsEditor() {
		return nil, forbiddenf("only editors may publish submissions")
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
		if from != StatusAccepted {
			return invalidStatef("submission is %s; only accepted manuscripts can be published", from)
		}
		if submission.DOI == nil || *submission.DOI == "" {
			return newError(KindMissingDOI, "a DOI must be assigned before publication")
		}

		var issue models.Issue
		if err := tx.Where("issue_id = ?", input.IssueID).First(&issue).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newError(KindIssueNotFound, fmt.Sprintf("issue %d not found", input.IssueID))
			}
			return err
		}

		now := s.now()
		extra := map[string]interface{}{
			"published_at": now,
			"volume":       issue.Volume,
			"issue_number": issue.Number,
			"issue_id":     issue.IssueID,
		}
		if input.Pages != "" {
			extra["pages"] = input.Pages
		}
		if err := s.transitionStatus(tx, submissionID, StatusAccepted, StatusPublished, extra); err != nil {
			return err
		}
		if err := s.recordTimeline(tx, submissionID, "published", &from, StatusPublished,
			fmt.Sprintf("published in volume %d issue %d with DOI %s", issue.Volume, issue.Number, *submission.DOI), actor); err != nil {
			return err
		}

		var coAuthorEmails []string
		var coAuthors []models.SubmissionCoAuthor
		if err := tx.Where("submission_id = ?", submissionID).Find(&coAuthors).Error; err == nil {
			for _, ca := range coAuthors {
				if ca.Email != "" {
					coAuthorEmails = append(coAuthorEmails, ca.Email)
				}
			}
		}

		citation := fmt.Sprintf("%s. Journal of Manuscript Studies %d(%d), %d.",
			submission.Title, issue.Volume, issue.Number, issue.Year)
		effects = append(effects, Effect{
			Kind:         EffectSubmissionPublished,
			SubmissionID: submissionID,
			Recipients:   []int{submission.AuthorID},
			ExtraEmails:  coAuthorEmails,
			Template:     "submission_published",
			Vars: map[string]string{
				"RecipientName": "author",
				"Title":         submission.Title,
				"DOI":           *submission.DOI,
				"Citation":      citation,
			},
			Title:   "Article published",
			Message: fmt.Sprintf("%s is now published (DOI %s)", submission.Title, *submission.DOI),
			Type:    "success",
		})

		submission.Status = string(StatusPublished)
		submission.PublishedAt = &now
		submission.Volume = &issue.Volume
		submission.IssueNumber = &issue.Number
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(effects)
	return submission, nil
}

// CreateIssue registers a journal issue for publication placement.
func (s *Service) CreateIssue(volume, number, year int, title string, actor Actor) (*models.Issue, error) {
	if !actor.IsEditor() {
		return nil, forbiddenf("only editors may create issues")
	}
	if volume <= 0 || number <= 0 || year <= 0 {
		return nil, validationf("volume, number and year must be positive")
	}
	issue := models.Issue{
		Volume:   volume,
		Number:   number,
		Year:     year,
		CreateAt: s.now(),
	}
	if title != "" {
		issue.Title = &title
	}
	if err := s.db.Create(&issue).Error; err != nil {
		return nil, err
	}
	return &issue, nil
}

// ListIssues returns all issues, newest first.
func (s *Service) ListIssues() ([]models.Issue, error) {
	var issues []models.Issue
	err := s.db.Order("year DESC, volume DESC, number DESC").Find(&issues).Error
	return issues, err
}
