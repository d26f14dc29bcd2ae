package handler

import (
	"net/http"

	"mentorlink/backend/internal/alumni"
	"mentorlink/backend/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListAlumni(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	filter := models.AlumniFilter{Skill: c.Query("skill"), Company: c.Query("company")}
	list, err := h.Alumni.List(c.Request.Context(), user, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []models.User{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetAlumni(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.Alumni.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateAlumni(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in alumni.Update
	if !bindJSON(c, &in) {
		return
	}
	updated, err := h.Alumni.Update(c.Request.Context(), actor, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
