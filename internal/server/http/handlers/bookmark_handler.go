package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/parceltrack/internal/server/http/dto"
)

// BookmarkHandler manages bookmark endpoints.
type BookmarkHandler struct {
	facade BookmarkFacade
}

// NewBookmarkHandler constructs BookmarkHandler.
func NewBookmarkHandler(facade BookmarkFacade) *BookmarkHandler {
	return &BookmarkHandler{facade: facade}
}

// Add handles POST /api/user/bookmarks.
func (h *BookmarkHandler) Add(c *gin.Context) {
	var req dto.AddBookmarkRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := h.facade.AddBookmark(c.Request.Context(), CurrentUserID(c), req.TrackNumber, req.Description); err != nil {
		writeError(c, err)
		return
	}
	writeMessage(c, http.StatusCreated, "bookmark added")
}

// List handles GET /api/user/bookmarks.
func (h *BookmarkHandler) List(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	listing, err := h.facade.Bookmarks(c.Request.Context(), CurrentUserID(c), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBookmarkListResponse(listing))
}

// Delete handles DELETE /api/user/bookmarks/:trackNumber.
func (h *BookmarkHandler) Delete(c *gin.Context) {
	if err := h.facade.DeleteBookmark(c.Request.Context(), CurrentUserID(c), c.Param("trackNumber")); err != nil {
		writeError(c, err)
		return
	}
	writeMessage(c, http.StatusOK, "bookmark deleted")
}

// Candidates handles GET /api/user/archive/candidates.
func (h *BookmarkHandler) Candidates(c *gin.Context) {
	page, ok := pageQuery(c)
	if !ok {
		return
	}
	listing, err := h.facade.ArchiveCandidates(c.Request.Context(), CurrentUserID(c), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCandidateListResponse(listing))
}

// WithoutStatus handles GET /api/admin/bookmarks/without-status.
func (h *BookmarkHandler) WithoutStatus(c *gin.Context) {
	bookmarks, err := h.facade.BookmarksWithoutStatus(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]dto.OwnedBookmarkResponse, 0, len(bookmarks))
	for _, b := range bookmarks {
		resp = append(resp, dto.NewOwnedBookmarkResponse(b))
	}
	c.JSON(http.StatusOK, resp)
}
