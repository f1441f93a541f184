package services

import "journal-management-api/models"

// ListSubmissionsForAuthor returns the acting author's submissions,
// newest first. Listing reads are unrestricted and take no locks.
func (s *Service) ListSubmissionsForAuthor(actor Actor) ([]models.Submission, error) {
	var submissions []models.Submission
	err := s.db.Preload("Files").
		Where("author_id = ? AND delete_at IS NULL", actor.UserID).
		Order("create_at DESC").
		Find(&submissions).Error
	return submissions, err
}

// ListSubmissionsByStatus is the editor dashboard query.
func (s *Service) ListSubmissionsByStatus(status Status, actor Actor) ([]models.Submission, error) {
	if !actor.IsEditor() {
		return nil, forbiddenf("only editors may list submissions by status")
	}
	if !status.Valid() {
		return nil, validationf("unknown status %q", string(status))
	}
	var submissions []models.Submission
	err := s.db.Preload("Author").
		Where("status = ? AND delete_at IS NULL", string(status)).
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}
