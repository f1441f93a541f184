package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"journal-management-api/models"
)

// CreatePaymentObligation attaches a publication fee to an accepted
// submission and surfaces it to the author as PaymentPending. At most one
// active obligation may exist.
func (s *Service) CreatePaymentObligation(submissionID int, amount float64, currency string, actor Actor) (*models.Payment, error) {
	if !actor.IsEditor() {
		return nil, forbiddenf("only editors may create payment obligations")
	}
	if amount <= 0 {
		return nil, validationf("amount must be positive")
	}
	if currency == "" {
		return nil, validationf("currency is required")
	}

	var payment models.Payment
	var effects []Effect

	err := s.db.Transaction(func(tx *gorm.DB) error {
		submission, err := s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}

		from := Status(submission.Status)
		if from != StatusAccepted {
			return invalidStatef("submission is %s; fees attach to accepted manuscripts", from)
		}

		var active int64
		if err := tx.Model(&models.Payment{}).
			Where("submission_id = ? AND status IN ?", submissionID,
				[]string{models.PaymentStatusPending, models.PaymentStatusPaid}).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return invalidStatef("submission already has an active payment obligation")
		}

		payment = models.Payment{
			SubmissionID: submissionID,
			Amount:       amount,
			Currency:     currency,
			Status:       models.PaymentStatusPending,
			CreateAt:     s.now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		if err := s.transitionStatus(tx, submissionID, StatusAccepted, StatusPaymentPending, nil); err != nil {
			return err
		}
		if err := s.recordTimeline(tx, submissionID, "payment_requested", &from, StatusPaymentPending,
			fmt.Sprintf("publication fee of %.2f %s requested", amount, currency), actor); err != nil {
			return err
		}

		effects = append(effects, Effect{
			Kind:         EffectPaymentRequested,
			SubmissionID: submissionID,
			Recipients:   []int{submission.AuthorID},
			Template:     "payment_requested",
			Vars: map[string]string{
				"RecipientName": "author",
				"Title":         submission.Title,
				"Number":        submission.SubmissionNumber,
				"Amount":        fmt.Sprintf("%.2f", amount),
				"Currency":      currency,
				"Link":          s.submissionLink(submissionID),
			},
			Title:   "Publication fee due",
			Message: fmt.Sprintf("A fee of %.2f %s is due for %s", amount, currency, submission.SubmissionNumber),
			Type:    "warning",
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(effects)
	return &payment, nil
}

// MarkPaymentAsPaid settles the obligation. Idempotent-guarded: a second
// call returns AlreadyPaid and leaves status and timeline untouched. The
// payment update, status transition and timeline append share one
// transaction; the notification runs only after commit.
func (s *Service) MarkPaymentAsPaid(submissionID int, transactionRef string, actor Actor) (*models.Payment, error) {
	if !actor.IsEditor() {
		return nil, forbiddenf("only editors may settle payments")
	}

	var payment models.Payment
	var effects []Effect

	err := s.db.Transaction(func(tx *gorm.DB) error {
		submission, err := s.loadSubmission(tx, submissionID)
		if err != nil {
			return err
		}

		if err := tx.Where("submission_id = ? AND status IN ?", submissionID,
			[]string{models.PaymentStatusPending, models.PaymentStatusPaid}).
			Order("create_at DESC").
			First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("no payment obligation exists for submission %d", submissionID)
			}
			return err
		}
		if payment.Status == models.PaymentStatusPaid {
			return newError(KindAlreadyPaid, "payment has already been settled")
		}

		from := Status(submission.Status)
		if from != StatusPaymentPending {
			return invalidStatef("submission is %s; expected %s", from, StatusPaymentPending)
		}

		now := s.now()
		updates := map[string]interface{}{
			"status":    models.PaymentStatusPaid,
			"paid_at":   now,
			"update_at": now,
		}
		if transactionRef != "" {
			updates["transaction_ref"] = transactionRef
		}
		result := tx.Model(&models.Payment{}).
			Where("payment_id = ? AND status = ?", payment.PaymentID, models.PaymentStatusPending).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return conflictf("payment state changed concurrently")
		}

		if err := s.transitionStatus(tx, submissionID, StatusPaymentPending, StatusAccepted, nil); err != nil {
			return err
		}
		if err := s.recordTimeline(tx, submissionID, "payment_received", &from, StatusAccepted,
			"publication fee settled; ready for final production", actor); err != nil {
			return err
		}

		effects = append(effects, Effect{
			Kind:         EffectPaymentReceived,
			SubmissionID: submissionID,
			Recipients:   append([]int{submission.AuthorID}, s.assignedEditorIDs(tx, submissionID)...),
			Template:     "payment_received",
			Vars: map[string]string{
				"RecipientName": "colleague",
				"Title":         submission.Title,
				"Number":        submission.SubmissionNumber,
			},
			Title:   "Payment received",
			Message: fmt.Sprintf("The publication fee for %s has been settled", submission.SubmissionNumber),
			Type:    "success",
		})

		payment.Status = models.PaymentStatusPaid
		payment.PaidAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(effects)
	return &payment, nil
}

// GetPayment returns the submission's current obligation, if any.
func (s *Service) GetPayment(submissionID int, actor Actor) (*models.Payment, error) {
	submission, err := s.loadSubmission(s.db, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.AuthorID != actor.UserID && !actor.IsEditor() {
		return nil, forbiddenf("you do not have access to this submission's payments")
	}

	var payment models.Payment
	err = s.db.Where("submission_id = ?", submissionID).
		Order("create_at DESC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("no payment exists for submission %d", submissionID)
		}
		return nil, err
	}
	return &payment, nil
}
