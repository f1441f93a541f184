package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"journal-management-api/models"
)

// recordingDispatcher captures effects instead of sending anything.
type recordingDispatcher struct {
	effects []Effect
}

func (r *recordingDispatcher) Dispatch(effects []Effect) {
	r.effects = append(r.effects, effects...)
}

func (r *recordingDispatcher) kinds() []EffectKind {
	out := make([]EffectKind, 0, len(r.effects))
	for _, e := range r.effects {
		out = append(out, e.Kind)
	}
	return out
}

type fixedDOIGenerator struct {
	doi string
}

func (f fixedDOIGenerator) GenerateDOI(int) string { return f.doi }

var testClock = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *recordingDispatcher, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.Submission{},
		&models.SubmissionCoAuthor{},
		&models.SubmissionFile{},
		&models.SuggestedReviewer{},
		&models.ExcludedReviewer{},
		&models.Review{},
		&models.ReviewerInvitation{},
		&models.EditorAssignment{},
		&models.Revision{},
		&models.RevisionFile{},
		&models.Payment{},
		&models.TimelineEvent{},
		&models.DecisionRecord{},
		&models.Issue{},
		&models.Notification{},
	))

	dispatcher := &recordingDispatcher{}
	svc := NewService(db, zap.NewNop(), dispatcher,
		WithClock(func() time.Time { return testClock }),
		WithDOIGenerator(fixedDOIGenerator{doi: "10.71828/jms.test"}),
	)
	return svc, dispatcher, db
}

func createUser(t *testing.T, db *gorm.DB, roleID int) models.User {
	t.Helper()
	user := models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     uniqueEmail(t),
		Password:  "irrelevant",
		RoleID:    roleID,
		IsActive:  true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

var fixtureCounter int

func uniqueEmail(t *testing.T) string {
	t.Helper()
	fixtureCounter++
	return fmt.Sprintf("user%d@example.org", fixtureCounter)
}

// seedSubmission inserts a submission directly in the given state, for
// tests that start mid-workflow.
func seedSubmission(t *testing.T, db *gorm.DB, authorID int, status Status) models.Submission {
	t.Helper()
	fixtureCounter++
	submission := models.Submission{
		SubmissionNumber: fmt.Sprintf("JMS-TEST-%04d", fixtureCounter),
		Title:            "On the Reliability of Editorial Workflows",
		ManuscriptType:   "research_article",
		Status:           string(status),
		AuthorID:         authorID,
		CreateAt:         testClock,
	}
	require.NoError(t, db.Create(&submission).Error)
	return submission
}

func attachManuscript(t *testing.T, db *gorm.DB, submissionID, uploaderID int) {
	t.Helper()
	require.NoError(t, db.Create(&models.SubmissionFile{
		SubmissionID: submissionID,
		Kind:         "manuscript",
		OriginalName: "manuscript.pdf",
		StoredPath:   "/tmp/manuscript.pdf",
		FileSize:     1024,
		MimeType:     "application/pdf",
		UploadedBy:   uploaderID,
		UploadedAt:   testClock,
	}).Error)
}

func submissionStatus(t *testing.T, db *gorm.DB, submissionID int) Status {
	t.Helper()
	var submission models.Submission
	require.NoError(t, db.First(&submission, submissionID).Error)
	return Status(submission.Status)
}

func timelineKinds(t *testing.T, db *gorm.DB, submissionID int) []string {
	t.Helper()
	var events []models.TimelineEvent
	require.NoError(t, db.Where("submission_id = ?", submissionID).
		Order("created_at ASC, event_id ASC").Find(&events).Error)
	kinds := make([]string, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.EventKind)
	}
	return kinds
}

func actorFor(u models.User) Actor {
	return Actor{UserID: u.UserID, RoleID: u.RoleID}
}
