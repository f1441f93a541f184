package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-management-api/models"
)

func TestAssignReviewer(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	reviewer := createUser(t, db, models.RoleReviewer)
	submission := seedSubmission(t, db, author.UserID, StatusInitialReview)

	due := testClock.AddDate(0, 0, 21)
	review, err := svc.AssignReviewer(submission.SubmissionID, reviewer.UserID, &due, actorFor(editor))
	require.NoError(t, err)

	assert.Equal(t, models.ReviewStatusPending, review.Status)
	require.NotNil(t, review.Invitation)
	assert.Equal(t, models.InvitationStatusPending, review.Invitation.Status)

	// The first assignment moves the submission out for review.
	assert.Equal(t, StatusUnderReview, submissionStatus(t, db, submission.SubmissionID))
	assert.Contains(t, dispatcher.kinds(), EffectReviewerInvited)
}

func TestAssignReviewerDuplicate(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	reviewer := createUser(t, db, models.RoleReviewer)
	submission := seedSubmission(t, db, author.UserID, StatusInitialReview)

	_, err := svc.AssignReviewer(submission.SubmissionID, reviewer.UserID, nil, actorFor(editor))
	require.NoError(t, err)

	_, err = svc.AssignReviewer(submission.SubmissionID, reviewer.UserID, nil, actorFor(editor))
	assert.True(t, IsKind(err, KindDuplicateAssignment))

	var count int64
	require.NoError(t, db.Model(&models.Review{}).
		Where("submission_id = ?", submission.SubmissionID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAssignReviewerRejectsAuthorAndExcluded(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleReviewer)
	editor := createUser(t, db, models.RoleEditor)
	excluded := createUser(t, db, models.RoleReviewer)
	submission := seedSubmission(t, db, author.UserID, StatusInitialReview)
	require.NoError(t, db.Create(&models.ExcludedReviewer{
		SubmissionID: submission.SubmissionID,
		UserID:       excluded.UserID,
	}).Error)

	_, err := svc.AssignReviewer(submission.SubmissionID, author.UserID, nil, actorFor(editor))
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.AssignReviewer(submission.SubmissionID, excluded.UserID, nil, actorFor(editor))
	assert.True(t, IsKind(err, KindValidation))
}

func TestAssignReviewerStateGate(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	reviewer := createUser(t, db, models.RoleReviewer)
	submission := seedSubmission(t, db, author.UserID, StatusAccepted)

	_, err := svc.AssignReviewer(submission.SubmissionID, reviewer.UserID, nil, actorFor(editor))
	assert.True(t, IsKind(err, KindInvalidState))
}

func TestGetAvailableReviewers(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	free := createUser(t, db, models.RoleReviewer)
	assigned := createUser(t, db, models.RoleReviewer)
	excluded := createUser(t, db, models.RoleReviewer)
	inactive := createUser(t, db, models.RoleReviewer)
	require.NoError(t, db.Model(&models.User{}).
		Where("user_id = ?", inactive.UserID).
		Update("is_active", false).Error)

	submission := seedSubmission(t, db, author.UserID, StatusInitialReview)
	require.NoError(t, db.Create(&models.ExcludedReviewer{
		SubmissionID: submission.SubmissionID,
		UserID:       excluded.UserID,
	}).Error)
	_, err := svc.AssignReviewer(submission.SubmissionID, assigned.UserID, nil, actorFor(editor))
	require.NoError(t, err)

	candidates, err := svc.GetAvailableReviewers(submission.SubmissionID, actorFor(editor))
	require.NoError(t, err)

	ids := make(map[int]bool, len(candidates))
	for _, c := range candidates {
		ids[c.UserID] = true
	}
	assert.True(t, ids[free.UserID])
	assert.True(t, ids[editor.UserID], "editors may also review")
	assert.False(t, ids[author.UserID])
	assert.False(t, ids[assigned.UserID])
	assert.False(t, ids[excluded.UserID])
	assert.False(t, ids[inactive.UserID])
}

func TestRespondToInvitationAccept(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	reviewer := createUser(t, db, models.RoleReviewer)
	submission := seedSubmission(t, db, author.UserID, StatusInitialReview)

	review, err := svc.AssignReviewer(submission.SubmissionID, reviewer.UserID, nil, actorFor(editor))
	require.NoError(t, err)

	got, err := svc.RespondToInvitation(review.ReviewID, true, "happy to help", actorFor(reviewer))
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusInProgress, got.Status)
	assert.Equal(t, models.InvitationStatusAccepted, got.Invitation.Status)
	assert.Contains(t, dispatcher.kinds(), EffectInvitationAnswered)

	var stored models.Review
	require.NoError(t, db.First(&stored, review.ReviewID).Error)
	require.NotNil(t, stored.AcceptedAt)

	// The audit row carries the real current status, not a blank one.
	var events []models.TimelineEvent
	require.NoError(t, db.Where("submission_id = ? AND event_kind = ?",
		submission.SubmissionID, "invitation_accepted").Find(&events).Error)
	require.Len(t, events, 1)
	require.NotNil(t, events[0].FromStatus)
	assert.Equal(t, string(StatusUnderReview), *events[0].FromStatus)
	assert.Equal(t, string(StatusUnderReview), events[0].ToStatus)
}

func TestRespondToInvitationDeclineNotifiesEditors(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	reviewer := createUser(t, db, models.RoleReviewer)
	submission := seedSubmission(t, db, author.UserID, StatusInitialReview)

	_, err := svc.AssignEditor(submission.SubmissionID, editor.UserID, false, actorFor(editor))
	require.NoError(t, err)
	review, err := svc.AssignReviewer(submission.SubmissionID, reviewer.UserID, nil, actorFor(editor))
	require.NoError(t, err)

	got, err := svc.RespondToInvitation(review.ReviewID, false, "conflict of interest", actorFor(reviewer))
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusDeclined, got.Status)

	var answered *Effect
	for i := range dispatcher.effects {
		if dispatcher.effects[i].Kind == EffectInvitationAnswered {
			answered = &dispatcher.effects[i]
		}
	}
	require.NotNil(t, answered)
	assert.Contains(t, answered.Recipients, editor.UserID)
	assert.Contains(t, answered.Message, "declined")
}

func TestRespondToInvitationOnlyOnce(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	reviewer := createUser(t, db, models.RoleReviewer)
	submission := seedSubmission(t, db, author.UserID, StatusInitialReview)

	review, err := svc.AssignReviewer(submission.SubmissionID, reviewer.UserID, nil, actorFor(editor))
	require.NoError(t, err)

	_, err = svc.RespondToInvitation(review.ReviewID, false, "", actorFor(reviewer))
	require.NoError(t, err)

	_, err = svc.RespondToInvitation(review.ReviewID, true, "changed my mind", actorFor(reviewer))
	assert.True(t, IsKind(err, KindInvalidState))
}

func TestRespondToInvitationOnlyInvitee(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	reviewer := createUser(t, db, models.RoleReviewer)
	someone := createUser(t, db, models.RoleReviewer)
	submission := seedSubmission(t, db, author.UserID, StatusInitialReview)

	review, err := svc.AssignReviewer(submission.SubmissionID, reviewer.UserID, nil, actorFor(editor))
	require.NoError(t, err)

	_, err = svc.RespondToInvitation(review.ReviewID, true, "", actorFor(someone))
	assert.True(t, IsKind(err, KindForbidden))
}

func TestSubmitReview(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	reviewer := createUser(t, db, models.RoleReviewer)
	submission := seedSubmission(t, db, author.UserID, StatusInitialReview)

	review, err := svc.AssignReviewer(submission.SubmissionID, reviewer.UserID, nil, actorFor(editor))
	require.NoError(t, err)
	_, err = svc.RespondToInvitation(review.ReviewID, true, "", actorFor(reviewer))
	require.NoError(t, err)

	got, err := svc.SubmitReview(review.ReviewID, ReviewInput{
		Recommendation:       models.RecommendationMinorRevision,
		Rating:               4,
		Comments:             "Solid work, minor issues in section 3.",
		ConfidentialComments: "Borderline; leaning accept.",
	}, actorFor(reviewer))
	require.NoError(t, err)

	assert.Equal(t, models.ReviewStatusCompleted, got.Status)
	require.NotNil(t, got.Recommendation)
	assert.Equal(t, models.RecommendationMinorRevision, *got.Recommendation)

	// Completing a review never moves the submission on its own.
	assert.Equal(t, StatusUnderReview, submissionStatus(t, db, submission.SubmissionID))
	assert.Contains(t, dispatcher.kinds(), EffectReviewCompleted)
}

func TestSubmitReviewValidation(t *testing.T) {
	svc, _, db := newTestService(t)
	reviewer := createUser(t, db, models.RoleReviewer)

	_, err := svc.SubmitReview(1, ReviewInput{Recommendation: "shrug", Rating: 3}, actorFor(reviewer))
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.SubmitReview(1, ReviewInput{Recommendation: models.RecommendationAccept, Rating: 9}, actorFor(reviewer))
	assert.True(t, IsKind(err, KindValidation))
}

func TestSubmitReviewRequiresInProgress(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	reviewer := createUser(t, db, models.RoleReviewer)
	submission := seedSubmission(t, db, author.UserID, StatusInitialReview)

	review, err := svc.AssignReviewer(submission.SubmissionID, reviewer.UserID, nil, actorFor(editor))
	require.NoError(t, err)

	// Still pending: the reviewer has not accepted.
	_, err = svc.SubmitReview(review.ReviewID, ReviewInput{
		Recommendation: models.RecommendationAccept,
		Rating:         5,
		Comments:       "fine",
	}, actorFor(reviewer))
	assert.True(t, IsKind(err, KindInvalidState))
}

func TestRemoveReviewer(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	reviewer := createUser(t, db, models.RoleReviewer)
	submission := seedSubmission(t, db, author.UserID, StatusInitialReview)

	review, err := svc.AssignReviewer(submission.SubmissionID, reviewer.UserID, nil, actorFor(editor))
	require.NoError(t, err)

	require.NoError(t, svc.RemoveReviewer(review.ReviewID, actorFor(editor)))

	var count int64
	require.NoError(t, db.Model(&models.Review{}).Where("review_id = ?", review.ReviewID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestRemoveCompletedReviewerFails(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	reviewer := createUser(t, db, models.RoleReviewer)
	submission := seedSubmission(t, db, author.UserID, StatusInitialReview)

	review, err := svc.AssignReviewer(submission.SubmissionID, reviewer.UserID, nil, actorFor(editor))
	require.NoError(t, err)
	_, err = svc.RespondToInvitation(review.ReviewID, true, "", actorFor(reviewer))
	require.NoError(t, err)
	_, err = svc.SubmitReview(review.ReviewID, ReviewInput{
		Recommendation: models.RecommendationAccept,
		Rating:         5,
		Comments:       "accept",
	}, actorFor(reviewer))
	require.NoError(t, err)

	err = svc.RemoveReviewer(review.ReviewID, actorFor(editor))
	assert.True(t, IsKind(err, KindInvalidState))
}

func TestOverdueReviewsAndReminders(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	late := createUser(t, db, models.RoleReviewer)
	onTime := createUser(t, db, models.RoleReviewer)
	submission := seedSubmission(t, db, author.UserID, StatusInitialReview)

	pastDue := testClock.Add(-48 * time.Hour)
	futureDue := testClock.Add(240 * time.Hour)
	lateReview, err := svc.AssignReviewer(submission.SubmissionID, late.UserID, &pastDue, actorFor(editor))
	require.NoError(t, err)
	_, err = svc.AssignReviewer(submission.SubmissionID, onTime.UserID, &futureDue, actorFor(editor))
	require.NoError(t, err)

	overdue, err := svc.ListOverdueReviews(actorFor(editor))
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, lateReview.ReviewID, overdue[0].ReviewID)

	got, err := svc.SendReviewReminder(lateReview.ReviewID, actorFor(editor))
	require.NoError(t, err)
	assert.Equal(t, 1, got.RemindersSent)
	assert.Contains(t, dispatcher.kinds(), EffectReviewReminder)

	sent, err := svc.RunReviewReminders()
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}
