package services

import "journal-management-api/models"

// Actor identifies who is performing an operation. Every core operation
// takes it explicitly; there is no ambient request-scoped user state.
type Actor struct {
	UserID int
	RoleID int
}

// System is the actor used by scheduled jobs (reminder cron). It passes
// the editor gates but is never treated as the owner of anything.
var System = Actor{UserID: 0, RoleID: models.RoleAdmin}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.RoleID == models.RoleAdmin
}

// IsEditor reports whether the actor may perform editorial actions.
func (a Actor) IsEditor() bool {
	return a.RoleID == models.RoleEditor || a.RoleID == models.RoleAdmin
}
