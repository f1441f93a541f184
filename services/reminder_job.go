package services

import (
	"go.uber.org/zap"

	"journal-management-api/monitor"
)

// maxAutomaticReminders caps what the scheduler sends; past that an
// editor has to act in person (extend the deadline or remove the reviewer).
const maxAutomaticReminders = 3

// RunReviewReminders is the scheduled job body: it finds overdue reviews
// and pushes reminders through the same validated SendReviewReminder
// operation an editor would use. Deadlines never auto-cancel anything.
func (s *Service) RunReviewReminders() (int, error) {
	overdue, err := s.ListOverdueReviews(System)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, review := range overdue {
		if review.RemindersSent >= maxAutomaticReminders {
			continue
		}
		if _, err := s.SendReviewReminder(review.ReviewID, System); err != nil {
			s.log.Error("failed to send scheduled review reminder",
				zap.Int("review_id", review.ReviewID),
				zap.Error(err))
			continue
		}
		monitor.RemindersSent.Inc()
		sent++
	}
	if sent > 0 {
		s.log.Info("review reminders dispatched", zap.Int("count", sent))
	}
	return sent, nil
}
