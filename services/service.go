package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"journal-management-api/models"
	"journal-management-api/monitor"
)

// DOIGenerator mints DOI values. The format and uniqueness policy are
// external; the core only enforces assign-once.
type DOIGenerator interface {
	GenerateDOI(submissionID int) string
}

type defaultDOIGenerator struct {
	prefix      string
	journalCode string
}

func (g *defaultDOIGenerator) GenerateDOI(submissionID int) string {
	suffix := strings.Split(uuid.New().String(), "-")[0]
	return fmt.Sprintf("%s/%s.%d.%s", g.prefix, g.journalCode, submissionID, suffix)
}

// NewDOIGenerator returns the default uuid-suffixed generator.
func NewDOIGenerator(prefix, journalCode string) DOIGenerator {
	return &defaultDOIGenerator{prefix: prefix, journalCode: journalCode}
}

// Service is the sole mutation gateway for submission, review and payment
// state. Actors are passed explicitly into every operation.
type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	dispatcher Dispatcher
	doi        DOIGenerator
	baseURL    string
	now        func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDOIGenerator overrides the DOI collaborator.
func WithDOIGenerator(g DOIGenerator) Option {
	return func(s *Service) { s.doi = g }
}

// WithBaseURL sets the base URL used in notification links.
func WithBaseURL(u string) Option {
	return func(s *Service) { s.baseURL = strings.TrimRight(u, "/") }
}

// NewService wires the workflow core.
func NewService(db *gorm.DB, log *zap.Logger, dispatcher Dispatcher, opts ...Option) *Service {
	s := &Service{
		db:         db,
		log:        log,
		dispatcher: dispatcher,
		doi:        NewDOIGenerator("10.71828", "jms"),
		baseURL:    "http://localhost:8080",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// dispatch runs effects after a committed transaction.
func (s *Service) dispatch(effects []Effect) {
	if s.dispatcher == nil || len(effects) == 0 {
		return
	}
	s.dispatcher.Dispatch(effects)
}

// loadSubmission fetches a live submission inside tx.
func (s *Service) loadSubmission(tx *gorm.DB, submissionID int) (*models.Submission, error) {
	var submission models.Submission
	err := tx.Where("submission_id = ? AND delete_at IS NULL", submissionID).First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("submission %d not found", submissionID)
		}
		return nil, err
	}
	return &submission, nil
}

// transitionStatus applies one validated status change with an optimistic
// concurrency guard: the UPDATE is conditional on the status still being
// `from`, and zero affected rows means another actor won the race.
func (s *Service) transitionStatus(tx *gorm.DB, submissionID int, from, to Status, extra map[string]interface{}) error {
	if !to.Valid() {
		return validationf("unknown status %q", string(to))
	}
	if !CanTransition(from, to) {
		return invalidStatef("submission cannot move from %s to %s", from, to)
	}

	updates := map[string]interface{}{
		"status":    string(to),
		"update_at": s.now(),
	}
	for k, v := range extra {
		updates[k] = v
	}

	result := tx.Model(&models.Submission{}).
		Where("submission_id = ? AND status = ?", submissionID, string(from)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		monitor.ConflictsRejected.Inc()
		return conflictf("submission %d status changed concurrently (expected %s)", submissionID, from)
	}
	monitor.TransitionsApplied.WithLabelValues(string(to)).Inc()
	return nil
}

// recordTimeline appends the audit event inside the same transaction as
// the status write it describes.
func (s *Service) recordTimeline(tx *gorm.DB, submissionID int, kind string, from *Status, to Status, description string, actor Actor) error {
	event := models.TimelineEvent{
		SubmissionID: submissionID,
		EventKind:    kind,
		ToStatus:     string(to),
		Description:  description,
		ActorID:      actor.UserID,
		CreatedAt:    s.now(),
	}
	if from != nil {
		event.FromStatus = statusPtr(*from)
	}
	return tx.Create(&event).Error
}

// GetTimeline returns the ordered audit trail for a submission.
func (s *Service) GetTimeline(submissionID int) ([]models.TimelineEvent, error) {
	if _, err := s.loadSubmission(s.db, submissionID); err != nil {
		return nil, err
	}
	var events []models.TimelineEvent
	err := s.db.Preload("Actor").
		Where("submission_id = ?", submissionID).
		Order("created_at ASC, event_id ASC").
		Find(&events).Error
	return events, err
}

// activeEditorIDs lists every active user holding the editor role, used
// for fan-out when no editor is assigned yet.
func (s *Service) activeEditorIDs(tx *gorm.DB) []int {
	var ids []int
	if err := tx.Model(&models.User{}).
		Where("role_id = ? AND is_active = ? AND delete_at IS NULL", models.RoleEditor, true).
		Pluck("user_id", &ids).Error; err != nil {
		s.log.Warn("failed to list active editors", zap.Error(err))
	}
	return ids
}

// assignedEditorIDs lists editors assigned to the submission, falling
// back to all active editors when none are assigned.
func (s *Service) assignedEditorIDs(tx *gorm.DB, submissionID int) []int {
	var ids []int
	if err := tx.Model(&models.EditorAssignment{}).
		Where("submission_id = ?", submissionID).
		Pluck("editor_id", &ids).Error; err != nil {
		s.log.Warn("failed to list assigned editors", zap.Error(err))
	}
	if len(ids) == 0 {
		return s.activeEditorIDs(tx)
	}
	return ids
}

func (s *Service) submissionLink(submissionID int) string {
	return fmt.Sprintf("%s/submissions/%d", s.baseURL, submissionID)
}

// newSubmissionNumber mints the human-facing reference, e.g. JMS-2026-4F2A81C3.
func (s *Service) newSubmissionNumber() string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("JMS-%d-%s", s.now().Year(), token)
}
