package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-management-api/models"
)

func TestCreateDraft(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)

	submission, err := svc.CreateDraft(DraftInput{
		Title:          "A Study of Something",
		Abstract:       "We study something.",
		Keywords:       []string{"workflow", "state machines"},
		ManuscriptType: "research_article",
		CoAuthors: []CoAuthorInput{
			{Name: "Co Author", Email: "co@example.org"},
		},
	}, actorFor(author))
	require.NoError(t, err)

	assert.Equal(t, string(StatusDraft), submission.Status)
	assert.Equal(t, author.UserID, submission.AuthorID)
	assert.NotEmpty(t, submission.SubmissionNumber)

	var coAuthors []models.SubmissionCoAuthor
	require.NoError(t, db.Where("submission_id = ?", submission.SubmissionID).Find(&coAuthors).Error)
	require.Len(t, coAuthors, 1)
	assert.Equal(t, 1, coAuthors[0].AuthorOrder)

	assert.Equal(t, []string{"draft_created"}, timelineKinds(t, db, submission.SubmissionID))
}

func TestCreateDraftRejectsBadEmails(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)

	_, err := svc.CreateDraft(DraftInput{
		Title:          "A Study of Something",
		ManuscriptType: "research_article",
		CoAuthors:      []CoAuthorInput{{Name: "Co Author", Email: "not-an-address"}},
	}, actorFor(author))
	assert.True(t, IsKind(err, KindValidation))

	_, err = svc.CreateDraft(DraftInput{
		Title:          "A Study of Something",
		ManuscriptType: "research_article",
		Suggested:      []SuggestedReviewerInput{{Name: "Reviewer", Email: "reviewer@nowhere"}},
	}, actorFor(author))
	assert.True(t, IsKind(err, KindValidation))
}

func TestCreateDraftRequiresTitle(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)

	_, err := svc.CreateDraft(DraftInput{ManuscriptType: "research_article"}, actorFor(author))
	assert.True(t, IsKind(err, KindValidation))
}

func TestSubmitForReviewRequiresManuscriptFile(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	submission := seedSubmission(t, db, author.UserID, StatusDraft)

	_, err := svc.SubmitForReview(submission.SubmissionID, actorFor(author))
	assert.True(t, IsKind(err, KindInvalidState))

	// The failed attempt must leave the draft untouched.
	assert.Equal(t, StatusDraft, submissionStatus(t, db, submission.SubmissionID))
	assert.Empty(t, timelineKinds(t, db, submission.SubmissionID))
}

func TestSubmitForReview(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	submission := seedSubmission(t, db, author.UserID, StatusDraft)
	attachManuscript(t, db, submission.SubmissionID, author.UserID)

	got, err := svc.SubmitForReview(submission.SubmissionID, actorFor(author))
	require.NoError(t, err)

	assert.Equal(t, string(StatusSubmitted), got.Status)
	require.NotNil(t, got.SubmittedAt)
	assert.Equal(t, testClock, got.SubmittedAt.UTC())
	assert.Equal(t, StatusSubmitted, submissionStatus(t, db, submission.SubmissionID))

	require.Len(t, dispatcher.effects, 1)
	effect := dispatcher.effects[0]
	assert.Equal(t, EffectSubmissionSubmitted, effect.Kind)
	assert.Contains(t, effect.Recipients, author.UserID)
	assert.Contains(t, effect.Recipients, editor.UserID)
}

func TestSubmitForReviewOnlyByAuthor(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	other := createUser(t, db, models.RoleAuthor)
	submission := seedSubmission(t, db, author.UserID, StatusDraft)
	attachManuscript(t, db, submission.SubmissionID, author.UserID)

	_, err := svc.SubmitForReview(submission.SubmissionID, actorFor(other))
	assert.True(t, IsKind(err, KindForbidden))
}

func TestResubmitAfterFormattingReturn(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	submission := seedSubmission(t, db, author.UserID, StatusReturnedForFormatting)
	attachManuscript(t, db, submission.SubmissionID, author.UserID)

	got, err := svc.SubmitForReview(submission.SubmissionID, actorFor(author))
	require.NoError(t, err)
	assert.Equal(t, string(StatusSubmitted), got.Status)
}

func TestAssignEditor(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	submission := seedSubmission(t, db, author.UserID, StatusSubmitted)

	assignment, err := svc.AssignEditor(submission.SubmissionID, editor.UserID, true, actorFor(editor))
	require.NoError(t, err)
	assert.True(t, assignment.IsChief)

	// First assignment advances the submission into initial review.
	assert.Equal(t, StatusInitialReview, submissionStatus(t, db, submission.SubmissionID))
	require.Len(t, dispatcher.effects, 1)
	assert.Equal(t, EffectEditorAssigned, dispatcher.effects[0].Kind)
}

func TestAssignEditorDuplicate(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	submission := seedSubmission(t, db, author.UserID, StatusSubmitted)

	_, err := svc.AssignEditor(submission.SubmissionID, editor.UserID, false, actorFor(editor))
	require.NoError(t, err)

	_, err = svc.AssignEditor(submission.SubmissionID, editor.UserID, false, actorFor(editor))
	assert.True(t, IsKind(err, KindDuplicateAssignment))
}

func TestAssignEditorChiefDemotesPrevious(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	first := createUser(t, db, models.RoleEditor)
	second := createUser(t, db, models.RoleEditor)
	submission := seedSubmission(t, db, author.UserID, StatusSubmitted)

	_, err := svc.AssignEditor(submission.SubmissionID, first.UserID, true, actorFor(first))
	require.NoError(t, err)
	_, err = svc.AssignEditor(submission.SubmissionID, second.UserID, true, actorFor(first))
	require.NoError(t, err)

	var chiefs int64
	require.NoError(t, db.Model(&models.EditorAssignment{}).
		Where("submission_id = ? AND is_chief = ?", submission.SubmissionID, true).
		Count(&chiefs).Error)
	assert.EqualValues(t, 1, chiefs)
}

func TestPerformInitialScreening(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)

	t.Run("reject", func(t *testing.T) {
		submission := seedSubmission(t, db, author.UserID, StatusSubmitted)
		got, err := svc.PerformInitialScreening(submission.SubmissionID, ScreeningReject, "out of scope", actorFor(editor))
		require.NoError(t, err)
		assert.Equal(t, string(StatusRejected), got.Status)
	})

	t.Run("return for formatting", func(t *testing.T) {
		submission := seedSubmission(t, db, author.UserID, StatusSubmitted)
		got, err := svc.PerformInitialScreening(submission.SubmissionID, ScreeningReturn, "wrong template", actorFor(editor))
		require.NoError(t, err)
		assert.Equal(t, string(StatusReturnedForFormatting), got.Status)
	})

	t.Run("proceed", func(t *testing.T) {
		submission := seedSubmission(t, db, author.UserID, StatusSubmitted)
		got, err := svc.PerformInitialScreening(submission.SubmissionID, ScreeningProceed, "", actorFor(editor))
		require.NoError(t, err)
		assert.Equal(t, string(StatusInitialReview), got.Status)
	})

	t.Run("authors cannot screen", func(t *testing.T) {
		submission := seedSubmission(t, db, author.UserID, StatusSubmitted)
		_, err := svc.PerformInitialScreening(submission.SubmissionID, ScreeningProceed, "", actorFor(author))
		assert.True(t, IsKind(err, KindForbidden))
	})

	assert.Contains(t, dispatcher.kinds(), EffectScreeningCompleted)
}

func TestWithdrawSubmission(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	submission := seedSubmission(t, db, author.UserID, StatusUnderReview)

	got, err := svc.WithdrawSubmission(submission.SubmissionID, "found an error", actorFor(author))
	require.NoError(t, err)
	assert.Equal(t, string(StatusWithdrawn), got.Status)
	assert.Contains(t, dispatcher.kinds(), EffectSubmissionWithdrawn)

	// Withdrawal is terminal.
	_, err = svc.WithdrawSubmission(submission.SubmissionID, "", actorFor(author))
	assert.True(t, IsKind(err, KindInvalidState))
}

func TestWithdrawPublishedSubmissionFails(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	submission := seedSubmission(t, db, author.UserID, StatusPublished)

	_, err := svc.WithdrawSubmission(submission.SubmissionID, "", actorFor(author))
	assert.True(t, IsKind(err, KindInvalidState))
}

func TestAttachSubmissionFileStatusGate(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	submission := seedSubmission(t, db, author.UserID, StatusUnderReview)

	_, err := svc.AttachSubmissionFile(submission.SubmissionID, models.SubmissionFile{
		OriginalName: "late.pdf",
		StoredPath:   "/tmp/late.pdf",
	}, actorFor(author))
	assert.True(t, IsKind(err, KindInvalidState))
}

func TestAttachSubmissionFileDefaultsKind(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	submission := seedSubmission(t, db, author.UserID, StatusDraft)

	file, err := svc.AttachSubmissionFile(submission.SubmissionID, models.SubmissionFile{
		OriginalName: "manuscript.pdf",
		StoredPath:   "/tmp/manuscript.pdf",
	}, actorFor(author))
	require.NoError(t, err)
	assert.Equal(t, "manuscript", file.Kind)
	assert.Equal(t, author.UserID, file.UploadedBy)
}
