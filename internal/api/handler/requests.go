package handler

import (
	"net/http"

	"mentorlink/backend/internal/apperr"
	"mentorlink/backend/internal/mentorship"
	"mentorlink/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type createRequestBody struct {
	AlumniID uint   `json:"alumniId" binding:"required"`
	Message  string `json:"message"`
}

type statusBody struct {
	Status string `json:"status"`
}

func (h *Handler) CreateRequest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var in createRequestBody
	if !bindJSON(c, &in) {
		return
	}
	req, err := h.Mentorship.Create(c.Request.Context(), user, in.AlumniID, in.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mentorship.ViewFor(user, req))
}

func (h *Handler) ListRequests(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var status *models.RequestStatus
	if raw := c.Query("status"); raw != "" {
		s, valid := models.ParseRequestStatus(raw)
		if !valid {
			respondError(c, apperr.Validation("unknown status %q", raw))
			return
		}
		status = &s
	}
	reqs, err := h.Mentorship.List(c.Request.Context(), user, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mentorship.ViewsFor(user, reqs))
}

func (h *Handler) GetRequest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	req, err := h.Mentorship.Get(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mentorship.ViewFor(user, req))
}

// UpdateRequestStatus takes the target status from ?status= or, failing
// that, from a {"status": ...} body.
func (h *Handler) UpdateRequestStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	raw := c.Query("status")
	if raw == "" && c.Request.ContentLength != 0 {
		var body statusBody
		if !bindJSON(c, &body) {
			return
		}
		raw = body.Status
	}
	status, valid := models.ParseRequestStatus(raw)
	if !valid {
		respondError(c, apperr.Validation("status must be ACCEPTED or REJECTED"))
		return
	}

	req, err := h.Mentorship.UpdateStatus(c.Request.Context(), user, id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mentorship.ViewFor(user, req))
}
