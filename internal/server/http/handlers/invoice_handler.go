package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/parceltrack/internal/server/http/dto"
)

// InvoiceHandler manages invoice endpoints.
type InvoiceHandler struct {
	facade InvoiceFacade
}

// NewInvoiceHandler constructs InvoiceHandler.
func NewInvoiceHandler(facade InvoiceFacade) *InvoiceHandler {
	return &InvoiceHandler{facade: facade}
}

// AddItems handles POST /api/user/invoices.
func (h *InvoiceHandler) AddItems(c *gin.Context) {
	var req dto.AddInvoiceItemsRequest
	if !bindJSON(c, &req) {
		return
	}
	update, err := h.facade.AddInvoiceItems(c.Request.Context(), CurrentUserID(c), req.ToCandidates())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewInvoiceUpdateResponse(update))
}

// Current handles GET /api/user/invoices/current.
func (h *InvoiceHandler) Current(c *gin.Context) {
	inv, err := h.facade.CurrentInvoice(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if inv == nil {
		writeMessage(c, http.StatusOK, "no pending invoice")
		return
	}
	c.JSON(http.StatusOK, dto.NewInvoiceResponse(*inv))
}

// List handles GET /api/user/invoices.
func (h *InvoiceHandler) List(c *gin.Context) {
	invoices, err := h.facade.Invoices(c.Request.Context(), CurrentUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		resp = append(resp, dto.NewInvoiceResponse(inv))
	}
	c.JSON(http.StatusOK, resp)
}

// Confirm handles POST /api/admin/users/:userID/invoices/:invoiceID/confirm.
func (h *InvoiceHandler) Confirm(c *gin.Context) {
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	invoiceID, ok := pathID(c, "invoiceID")
	if !ok {
		return
	}
	confirmation, err := h.facade.ConfirmPayment(c.Request.Context(), userID, invoiceID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PaymentResponse{
		Invoice: dto.NewInvoiceResponse(confirmation.Invoice),
		Bonus:   dto.NewBonusResponse(confirmation.Bonus),
	})
}
