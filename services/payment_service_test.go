package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-management-api/models"
)

func TestCreatePaymentObligation(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	submission := seedSubmission(t, db, author.UserID, StatusAccepted)

	payment, err := svc.CreatePaymentObligation(submission.SubmissionID, 450, "EUR", actorFor(editor))
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, StatusPaymentPending, submissionStatus(t, db, submission.SubmissionID))
	assert.Contains(t, dispatcher.kinds(), EffectPaymentRequested)
}

func TestCreatePaymentObligationGates(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)

	t.Run("only accepted submissions", func(t *testing.T) {
		submission := seedSubmission(t, db, author.UserID, StatusUnderReview)
		_, err := svc.CreatePaymentObligation(submission.SubmissionID, 450, "EUR", actorFor(editor))
		assert.True(t, IsKind(err, KindInvalidState))
	})

	t.Run("amount must be positive", func(t *testing.T) {
		submission := seedSubmission(t, db, author.UserID, StatusAccepted)
		_, err := svc.CreatePaymentObligation(submission.SubmissionID, 0, "EUR", actorFor(editor))
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("one active obligation at a time", func(t *testing.T) {
		submission := seedSubmission(t, db, author.UserID, StatusAccepted)
		_, err := svc.CreatePaymentObligation(submission.SubmissionID, 450, "EUR", actorFor(editor))
		require.NoError(t, err)

		// The submission is now payment_pending, so the state gate fires
		// before the duplicate check even matters.
		_, err = svc.CreatePaymentObligation(submission.SubmissionID, 450, "EUR", actorFor(editor))
		assert.True(t, IsKind(err, KindInvalidState))
	})
}

func TestMarkPaymentAsPaid(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	submission := seedSubmission(t, db, author.UserID, StatusAccepted)

	_, err := svc.CreatePaymentObligation(submission.SubmissionID, 450, "EUR", actorFor(editor))
	require.NoError(t, err)

	payment, err := svc.MarkPaymentAsPaid(submission.SubmissionID, "bank-ref-0042", actorFor(editor))
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	require.NotNil(t, payment.PaidAt)
	assert.Equal(t, StatusAccepted, submissionStatus(t, db, submission.SubmissionID))

	var stored models.Payment
	require.NoError(t, db.First(&stored, payment.PaymentID).Error)
	require.NotNil(t, stored.TransactionRef)
	assert.Equal(t, "bank-ref-0042", *stored.TransactionRef)
	assert.Contains(t, dispatcher.kinds(), EffectPaymentReceived)
}

func TestMarkPaymentAsPaidIdempotenceGuard(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	submission := seedSubmission(t, db, author.UserID, StatusAccepted)

	_, err := svc.CreatePaymentObligation(submission.SubmissionID, 450, "EUR", actorFor(editor))
	require.NoError(t, err)
	_, err = svc.MarkPaymentAsPaid(submission.SubmissionID, "ref-1", actorFor(editor))
	require.NoError(t, err)

	eventsBefore := timelineKinds(t, db, submission.SubmissionID)

	_, err = svc.MarkPaymentAsPaid(submission.SubmissionID, "ref-2", actorFor(editor))
	assert.True(t, IsKind(err, KindAlreadyPaid))

	// The rejected retry leaves state and audit trail untouched.
	assert.Equal(t, StatusAccepted, submissionStatus(t, db, submission.SubmissionID))
	assert.Equal(t, eventsBefore, timelineKinds(t, db, submission.SubmissionID))
}

func TestMarkPaymentAsPaidWithoutObligation(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	submission := seedSubmission(t, db, author.UserID, StatusAccepted)

	_, err := svc.MarkPaymentAsPaid(submission.SubmissionID, "", actorFor(editor))
	assert.True(t, IsKind(err, KindNotFound))
}

func TestGetPaymentAccess(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	stranger := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	submission := seedSubmission(t, db, author.UserID, StatusAccepted)

	_, err := svc.CreatePaymentObligation(submission.SubmissionID, 450, "EUR", actorFor(editor))
	require.NoError(t, err)

	payment, err := svc.GetPayment(submission.SubmissionID, actorFor(author))
	require.NoError(t, err)
	assert.Equal(t, 450.0, payment.Amount)

	_, err = svc.GetPayment(submission.SubmissionID, actorFor(stranger))
	assert.True(t, IsKind(err, KindForbidden))
}
