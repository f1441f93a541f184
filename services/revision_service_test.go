package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal-management-api/models"
)

func TestCreateRevision(t *testing.T) {
	svc, dispatcher, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	submission := seedSubmission(t, db, author.UserID, StatusRevisionRequired)

	revision, err := svc.CreateRevision(submission.SubmissionID, "Addressed all reviewer comments.", actorFor(author))
	require.NoError(t, err)

	assert.Equal(t, 1, revision.RevisionNumber)
	assert.Equal(t, StatusRevised, submissionStatus(t, db, submission.SubmissionID))
	assert.Contains(t, dispatcher.kinds(), EffectRevisionSubmitted)
}

func TestRevisionNumbersStrictlyIncrease(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	reviewer := createUser(t, db, models.RoleReviewer)
	submission := seedSubmission(t, db, author.UserID, StatusRevisionRequired)

	first, err := svc.CreateRevision(submission.SubmissionID, "round one", actorFor(author))
	require.NoError(t, err)
	assert.Equal(t, 1, first.RevisionNumber)

	// Editor sends it back out and requests another revision.
	_, err = svc.HandleRevision(submission.SubmissionID, RevisionReReview, "", actorFor(editor))
	require.NoError(t, err)
	seedCompletedReview(t, svc, submission.SubmissionID, reviewer.UserID)
	_, err = svc.MakeDecision(submission.SubmissionID, DecisionInput{Decision: DecisionRevisionRequired}, actorFor(editor))
	require.NoError(t, err)

	second, err := svc.CreateRevision(submission.SubmissionID, "round two", actorFor(author))
	require.NoError(t, err)
	assert.Equal(t, 2, second.RevisionNumber)
}

func TestCreateRevisionStateGate(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	submission := seedSubmission(t, db, author.UserID, StatusUnderReview)

	_, err := svc.CreateRevision(submission.SubmissionID, "premature", actorFor(author))
	assert.True(t, IsKind(err, KindInvalidState))
}

func TestCreateRevisionOnlyByAuthor(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	other := createUser(t, db, models.RoleAuthor)
	submission := seedSubmission(t, db, author.UserID, StatusRevisionRequired)

	_, err := svc.CreateRevision(submission.SubmissionID, "not mine", actorFor(other))
	assert.True(t, IsKind(err, KindForbidden))
}

func TestAttachRevisionFile(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	submission := seedSubmission(t, db, author.UserID, StatusRevisionRequired)

	revision, err := svc.CreateRevision(submission.SubmissionID, "see diff", actorFor(author))
	require.NoError(t, err)

	file, err := svc.AttachRevisionFile(revision.RevisionID, models.RevisionFile{
		OriginalName: "manuscript-v2.pdf",
		StoredPath:   "/tmp/manuscript-v2.pdf",
	}, actorFor(author))
	require.NoError(t, err)
	assert.Equal(t, revision.RevisionID, file.RevisionID)
}

func TestAttachRevisionFileWindowClosed(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	editor := createUser(t, db, models.RoleEditor)
	submission := seedSubmission(t, db, author.UserID, StatusRevisionRequired)

	revision, err := svc.CreateRevision(submission.SubmissionID, "final", actorFor(author))
	require.NoError(t, err)
	_, err = svc.HandleRevision(submission.SubmissionID, RevisionAccept, "", actorFor(editor))
	require.NoError(t, err)

	_, err = svc.AttachRevisionFile(revision.RevisionID, models.RevisionFile{
		OriginalName: "late.pdf",
		StoredPath:   "/tmp/late.pdf",
	}, actorFor(author))
	assert.True(t, IsKind(err, KindInvalidState))
}

func TestListRevisions(t *testing.T) {
	svc, _, db := newTestService(t)
	author := createUser(t, db, models.RoleAuthor)
	stranger := createUser(t, db, models.RoleAuthor)
	submission := seedSubmission(t, db, author.UserID, StatusRevisionRequired)

	_, err := svc.CreateRevision(submission.SubmissionID, "only round", actorFor(author))
	require.NoError(t, err)

	revisions, err := svc.ListRevisions(submission.SubmissionID, actorFor(author))
	require.NoError(t, err)
	assert.Len(t, revisions, 1)

	_, err = svc.ListRevisions(submission.SubmissionID, actorFor(stranger))
	assert.True(t, IsKind(err, KindForbidden))
}
