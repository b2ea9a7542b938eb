package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/estuda-app/estuda-backend/internal/repos"
	"github.com/estuda-app/estuda-backend/internal/services"
)

type ActivityHandler struct {
	activityService services.ActivityService
}

func NewActivityHandler(activityService services.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func (h *ActivityHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req services.ActivityInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	activity, err := h.activityService.CreateActivity(c.Request.Context(), userID, req)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, activity)
}

func (h *ActivityHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	filter := repos.ActivityFilter{
		Status:  c.Query("status"),
		Subject: c.Query("subject"),
		Date:    c.Query("date"),
	}
	activities, err := h.activityService.ListActivities(c.Request.Context(), userID, filter)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"activities": activities})
}

func (h *ActivityHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	activityID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	activity, err := h.activityService.GetActivity(c.Request.Context(), userID, activityID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, activity)
}

func (h *ActivityHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	activityID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var fields map[string]interface{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	activity, err := h.activityService.UpdateActivity(c.Request.Context(), userID, activityID, fields)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, activity)
}

func (h *ActivityHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	activityID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.activityService.DeleteActivity(c.Request.Context(), userID, activityID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "activity deleted"})
}

func (h *ActivityHandler) SetActualTime(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	activityID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		ActualTimeStart *string `json:"actual_time_start"`
		ActualTimeEnd   *string `json:"actual_time_end"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	activity, err := h.activityService.SetActualTime(c.Request.Context(), userID, activityID, req.ActualTimeStart, req.ActualTimeEnd)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, activity)
}

func (h *ActivityHandler) Complete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	activityID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.activityService.CompleteActivity(c.Request.Context(), userID, activityID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}
