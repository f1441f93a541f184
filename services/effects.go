package services

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"journal-management-api/config"
	"journal-management-api/models"
	"journal-management-api/monitor"
)

// EffectKind names a transition side effect.
type EffectKind string

const (
	EffectSubmissionSubmitted EffectKind = "submission_submitted"
	EffectScreeningCompleted  EffectKind = "screening_completed"
	EffectEditorAssigned      EffectKind = "editor_assigned"
	EffectReviewerInvited     EffectKind = "reviewer_invited"
	EffectInvitationAnswered  EffectKind = "invitation_answered"
	EffectReviewCompleted     EffectKind = "review_completed"
	EffectReviewReminder      EffectKind = "review_reminder"
	EffectDecisionMade        EffectKind = "decision_made"
	EffectRevisionSubmitted   EffectKind = "revision_submitted"
	EffectPaymentRequested    EffectKind = "payment_requested"
	EffectPaymentReceived     EffectKind = "payment_received"
	EffectSubmissionPublished EffectKind = "submission_published"
	EffectSubmissionWithdrawn EffectKind = "submission_withdrawn"
)

// Effect describes one notification fan-out produced by a transition.
// Transitions only collect effects; the dispatcher runs them after the
// transaction commits, so a failed email can never roll back a committed
// status change.
type Effect struct {
	Kind         EffectKind
	SubmissionID int
	// Recipients are user IDs receiving an in-app notification and email.
	Recipients []int
	// ExtraEmails receive email only (co-authors without accounts).
	ExtraEmails []string
	// Template is the named email template; Vars feeds it structured
	// values, never raw HTML.
	Template string
	Vars     map[string]string
	// In-app notification fields.
	Title   string
	Message string
	Type    string // info|success|warning|error
}

// Dispatcher executes effects after a committed transition. Failures are
// logged, never propagated.
type Dispatcher interface {
	Dispatch(effects []Effect)
}

type notificationDispatcher struct {
	db     *gorm.DB
	mailer *config.Mailer
	log    *zap.Logger
}

// NewDispatcher builds the production dispatcher writing in-app rows and
// sending templated email.
func NewDispatcher(db *gorm.DB, mailer *config.Mailer, log *zap.Logger) Dispatcher {
	return &notificationDispatcher{db: db, mailer: mailer, log: log}
}

func (d *notificationDispatcher) Dispatch(effects []Effect) {
	for _, effect := range effects {
		d.dispatchOne(effect)
	}
}

func (d *notificationDispatcher) dispatchOne(effect Effect) {
	monitor.NotificationsDispatched.WithLabelValues(string(effect.Kind)).Inc()

	now := time.Now()
	submissionID := uint(effect.SubmissionID)
	for _, userID := range effect.Recipients {
		row := models.Notification{
			UserID:              uint(userID),
			Title:               effect.Title,
			Message:             effect.Message,
			Type:                effect.Type,
			RelatedSubmissionID: &submissionID,
			CreateAt:            now,
		}
		if err := d.db.Create(&row).Error; err != nil {
			d.log.Error("failed to store notification",
				zap.String("kind", string(effect.Kind)),
				zap.Int("user_id", userID),
				zap.Error(err))
		}
	}

	if effect.Template == "" {
		return
	}

	emails := make([]string, 0, len(effect.Recipients)+len(effect.ExtraEmails))
	if len(effect.Recipients) > 0 {
		var users []models.User
		if err := d.db.Where("user_id IN ? AND delete_at IS NULL", effect.Recipients).Find(&users).Error; err != nil {
			d.log.Error("failed to resolve notification recipients", zap.Error(err))
		} else {
			for _, u := range users {
				emails = append(emails, u.Email)
			}
		}
	}
	emails = append(emails, effect.ExtraEmails...)
	if len(emails) == 0 {
		return
	}

	subject, body, err := RenderEmail(effect.Template, effect.Vars)
	if err != nil {
		d.log.Error("failed to render email template",
			zap.String("template", effect.Template), zap.Error(err))
		return
	}

	// Fire and forget; SMTP latency must not block the request.
	go func(to []string) {
		if err := d.mailer.Send(to, subject, body); err != nil {
			d.log.Error("failed to send notification email",
				zap.String("template", effect.Template),
				zap.Int("recipients", len(to)),
				zap.Error(err))
		}
	}(emails)
}
