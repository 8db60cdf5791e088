package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/parceltrack/internal/server/http/dto"
)

// ReferralHandler manages the referral program endpoints.
type ReferralHandler struct {
	facade ReferralFacade
}

// NewReferralHandler constructs ReferralHandler.
func NewReferralHandler(facade ReferralFacade) *ReferralHandler {
	return &ReferralHandler{facade: facade}
}

// Partners handles GET /api/admin/partners.
func (h *ReferralHandler) Partners(c *gin.Context) {
	partners, err := h.facade.Partners(c.Request.Context(), c.Query("search"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]dto.PartnerResponse, 0, len(partners))
	for _, p := range partners {
		resp = append(resp, dto.NewPartnerResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

// MyReferrals handles GET /api/user/referrals.
func (h *ReferralHandler) MyReferrals(c *gin.Context) {
	h.referrals(c, CurrentUserID(c))
}

// Referrals handles GET /api/admin/partners/:userID/referrals.
func (h *ReferralHandler) Referrals(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	h.referrals(c, userID)
}

func (h *ReferralHandler) referrals(c *gin.Context, userID int64) {
	users, err := h.facade.Referrals(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]dto.ReferralResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, dto.NewReferralResponse(u))
	}
	c.JSON(http.StatusOK, resp)
}

// BonusPercentage handles GET /api/user/bonus-percentage.
func (h *ReferralHandler) BonusPercentage(c *gin.Context) {
	pct, personal, err := h.facade.BonusPercentage(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BonusPercentageResponse{Percentage: pct, Personal: personal})
}

// SetPercent handles PUT /api/admin/partners/:userID/percent.
func (h *ReferralHandler) SetPercent(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	var req dto.PercentRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.facade.SetReferralPercentage(c.Request.Context(), userID, req.Percent); err != nil {
		writeError(c, err)
		return
	}
	writeMessage(c, http.StatusOK, "referral percentage updated")
}

// SetBonuses handles PUT /api/admin/partners/:userID/bonuses.
func (h *ReferralHandler) SetBonuses(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	var req dto.BonusesRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.facade.SetBonuses(c.Request.Context(), userID, *req.Amount); err != nil {
		writeError(c, err)
		return
	}
	writeMessage(c, http.StatusOK, "bonuses updated")
}

// SetPersonalRate handles PUT /api/admin/users/:userID/personal-rate.
func (h *ReferralHandler) SetPersonalRate(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	var req dto.RateRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.facade.SetPersonalRate(c.Request.Context(), userID, req.Rate); err != nil {
		writeError(c, err)
		return
	}
	writeMessage(c, http.StatusOK, "personal rate updated")
}
