// Package handler is the HTTP and websocket surface of the service.
package handler

import (
	"net/http"
	"strconv"

	"mentorlink/backend/internal/alumni"
	"mentorlink/backend/internal/api/middleware"
	"mentorlink/backend/internal/apperr"
	"mentorlink/backend/internal/auth"
	"mentorlink/backend/internal/chathub"
	"mentorlink/backend/internal/mentorship"
	"mentorlink/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Handler holds the services behind the routes.
type Handler struct {
	Auth       *auth.Service
	Alumni     *alumni.Service
	Mentorship *mentorship.Service
	Gateway    *chathub.Gateway
	Upgrader   websocket.Upgrader

	logger *logrus.Logger
	log    *logrus.Entry
}

func NewHandler(a *auth.Service, al *alumni.Service, m *mentorship.Service, g *chathub.Gateway, allowedOrigin string, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Auth:       a,
		Alumni:     al,
		Mentorship: m,
		Gateway:    g,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigin),
		},
		logger: log,
		log:    log.WithField("component", "http"),
	}
}

func checkOrigin(allowed string) func(r *http.Request) bool {
	if allowed == "" || allowed == "*" {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == allowed
	}
}

// Ping is the liveness check.
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func currentUser(c *gin.Context) (*models.User, bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		respondError(c, apperr.ErrAuthenticationRequired)
		return nil, false
	}
	return user, true
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperr.Validation("invalid %s", param))
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		respondError(c, apperr.Validation("%s must be an integer", key))
		return 0, false
	}
	return v, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return false
	}
	return true
}
