package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/parceltrack/internal/domain/model"
	"github.com/polkiloo/parceltrack/internal/server/http/dto"
)

// ArchiveHandler manages archive endpoints.
type ArchiveHandler struct {
	facade ArchiveFacade
}

// NewArchiveHandler constructs ArchiveHandler.
func NewArchiveHandler(facade ArchiveFacade) *ArchiveHandler {
	return &ArchiveHandler{facade: facade}
}

// Migrate handles POST /api/user/archive.
func (h *ArchiveHandler) Migrate(c *gin.Context) {
	var req dto.ArchiveBookmarksRequest
	if !bindJSON(c, &req) {
		return
	}
	requests := make([]model.ArchiveRequest, 0, len(req.Items))
	for _, it := range req.Items {
		requests = append(requests, model.ArchiveRequest(it))
	}

	report, err := h.facade.ArchiveBookmarks(c.Request.Context(), CurrentUserID(c), requests)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMigrationResponse(report))
}

// List handles GET /api/user/archive.
func (h *ArchiveHandler) List(c *gin.Context) {
	entries, err := h.facade.Archive(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]dto.ArchivedBookmarkResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.NewArchivedBookmarkResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /api/user/archive/:trackNumber.
func (h *ArchiveHandler) Delete(c *gin.Context) {
	if err := h.facade.DeleteArchiveEntry(c.Request.Context(), CurrentUserID(c), c.Param("trackNumber")); err != nil {
		writeError(c, err)
		return
	}
	writeMessage(c, http.StatusOK, "archive entry deleted")
}

// ArchiveTrack handles POST /api/admin/users/:userID/archive/:trackNumber.
func (h *ArchiveHandler) ArchiveTrack(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	archive, err := h.facade.ArchiveTrack(c.Request.Context(), userID, c.Param("trackNumber"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewArchiveResponse(*archive))
}
