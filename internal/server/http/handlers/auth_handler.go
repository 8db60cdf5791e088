package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/parceltrack/internal/domain/model"
	"github.com/polkiloo/parceltrack/internal/server/http/dto"
	"github.com/polkiloo/parceltrack/internal/server/http/middleware"
)

// AuthHandler processes registration, login and profile lookups.
type AuthHandler struct {
	facade AuthFacade
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade) *AuthHandler {
	return &AuthHandler{facade: facade}
}

// Register handles POST /api/user/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.facade.Register(c.Request.Context(), model.Registration{
		Phone:          req.Phone,
		Password:       req.Password,
		Name:           req.Name,
		Surname:        req.Surname,
		Email:          req.Email,
		SelectedFilial: req.SelectedFilial,
		ReferrerID:     req.ReferrerID,
		Agreed:         req.Agreed,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}

// Login handles POST /api/user/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.facade.Authenticate(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}

// Profile handles GET /api/user/profile.
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.facade.Profile(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProfileResponse(*user))
}

// Refresh handles GET /api/user/auth.
func (h *AuthHandler) Refresh(c *gin.Context) {
	user, token, err := h.facade.RefreshToken(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, dto.SessionResponse{Token: token, User: dto.NewProfileResponse(*user)})
}

// ChangePassword handles PUT /api/user/password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.facade.ChangePassword(c.Request.Context(), CurrentUserID(c), req.CurrentPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	writeMessage(c, http.StatusOK, "password updated")
}

// Users handles GET /api/admin/users.
func (h *AuthHandler) Users(c *gin.Context) {
	var q dto.UserQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeMessage(c, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}
	page, err := h.facade.Users(c.Request.Context(), q.ToFilter())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserPageResponse(page))
}
