package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"journal-management-api/services"
)

var (
	svc    *services.Service
	logger *zap.Logger
)

// Init wires the workflow service and logger into the controller package.
func Init(s *services.Service, log *zap.Logger) {
	svc = s
	logger = log
}

// actorFromContext builds the explicit actor from the auth middleware's
// context values.
func actorFromContext(c *gin.Context) (services.Actor, bool) {
	userIDValue, ok := c.Get("userID")
	if !ok {
		return services.Actor{}, false
	}
	roleIDValue, ok := c.Get("roleID")
	if !ok {
		return services.Actor{}, false
	}
	userID, ok := userIDValue.(int)
	if !ok {
		return services.Actor{}, false
	}
	roleID, ok := roleIDValue.(int)
	if !ok {
		return services.Actor{}, false
	}
	return services.Actor{UserID: userID, RoleID: roleID}, true
}

func requireActor(c *gin.Context) (services.Actor, bool) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User context missing"})
	}
	return actor, ok
}

func idParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// httpStatusForKind maps the core error taxonomy onto HTTP codes. Every
// business-rule failure gets a specific status and its own message; only
// unexpected errors become 500s.
func httpStatusForKind(kind services.Kind) int {
	switch kind {
	case services.KindNotFound, services.KindIssueNotFound:
		return http.StatusNotFound
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindConflict:
		return http.StatusConflict
	case services.KindInvalidState, services.KindDuplicateAssignment,
		services.KindDOIAlreadyAssigned, services.KindAlreadyPaid,
		services.KindMissingDOI:
		return http.StatusUnprocessableEntity
	case services.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError translates a service error into the HTTP response.
func respondError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	if kind == "" {
		logger.Error("unexpected service failure",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(httpStatusForKind(kind), gin.H{
		"error": err.Error(),
		"kind":  string(kind),
	})
}
