package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/parceltrack/internal/server/http/dto"
)

// TrackHandler manages the staff track store endpoints.
type TrackHandler struct {
	facade TrackFacade
}

// NewTrackHandler constructs TrackHandler.
func NewTrackHandler(facade TrackFacade) *TrackHandler {
	return &TrackHandler{facade: facade}
}

// Save handles POST /api/admin/tracks.
func (h *TrackHandler) Save(c *gin.Context) {
	var req dto.SaveTrackRequest
	if !bindJSON(c, &req) {
		return
	}
	track, created, err := h.facade.SaveTrack(c.Request.Context(), req.ToInput())
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.NewTrackResponse(*track))
}

// List handles GET /api/admin/tracks.
func (h *TrackHandler) List(c *gin.Context) {
	var q dto.TrackQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeMessage(c, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}
	page, err := h.facade.Tracks(c.Request.Context(), q.ToFilter())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTrackPageResponse(page))
}

// Statuses handles GET /api/admin/statuses.
func (h *TrackHandler) Statuses(c *gin.Context) {
	statuses, err := h.facade.Statuses(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]dto.StatusResponse, 0, len(statuses))
	for _, s := range statuses {
		resp = append(resp, dto.StatusResponse{ID: s.ID, StatusText: s.Text})
	}
	c.JSON(http.StatusOK, resp)
}

// CreateStatus handles POST /api/admin/statuses.
func (h *TrackHandler) CreateStatus(c *gin.Context) {
	var req dto.StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	status, err := h.facade.CreateStatus(c.Request.Context(), req.StatusText)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.StatusResponse{ID: status.ID, StatusText: status.Text})
}
