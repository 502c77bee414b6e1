package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	purchaseapp "github.com/retail/backoffice/internal/application/purchasing"
	"github.com/retail/backoffice/internal/domain/shared"
	"github.com/retail/backoffice/internal/interfaces/http/dto"
)

// PurchaseHandler handles purchase-related API endpoints
type PurchaseHandler struct {
	BaseHandler
	purchaseService *purchaseapp.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchaseService *purchaseapp.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
	}
}

// RegisterRoutes registers purchase routes on the API group
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	purchases := rg.Group("/purchases")
	{
		purchases.POST("", h.Create)
		purchases.GET("", h.List)
		purchases.GET("/:id", h.Get)
		purchases.PUT("/:id", h.Edit)
		purchases.DELETE("/:id", h.Delete)
		purchases.POST("/:id/receive", h.Receive)
		purchases.POST("/:id/cancel", h.Cancel)
		purchases.POST("/:id/payments", h.RecordPayment)
	}
}

// Create handles POST /purchases
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req purchaseapp.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	resp, err := h.purchaseService.CreatePurchase(c.Request.Context(), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /purchases/:id
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, ok := h.purchaseID(c)
	if !ok {
		return
	}

	resp, err := h.purchaseService.GetPurchase(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /purchases
func (h *PurchaseHandler) List(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := shared.DefaultFilter()
	if listReq.Limit > 0 {
		filter.Limit = listReq.Limit
	}
	if listReq.Offset > 0 {
		filter.Offset = listReq.Offset
	}
	if listReq.OrderBy != "" {
		filter.OrderBy = listReq.OrderBy
	}
	filter.Desc = listReq.OrderDir != "asc"

	page, err := h.purchaseService.ListPurchases(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Limit, page.Offset)
}

// Edit handles PUT /purchases/:id
func (h *PurchaseHandler) Edit(c *gin.Context) {
	id, ok := h.purchaseID(c)
	if !ok {
		return
	}

	var req purchaseapp.EditPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	req.PurchaseID = id
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	resp, err := h.purchaseService.EditPurchase(c.Request.Context(), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete handles DELETE /purchases/:id
func (h *PurchaseHandler) Delete(c *gin.Context) {
	id, ok := h.purchaseID(c)
	if !ok {
		return
	}

	if err := h.purchaseService.DeletePurchase(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Receive handles POST /purchases/:id/receive
func (h *PurchaseHandler) Receive(c *gin.Context) {
	id, ok := h.purchaseID(c)
	if !ok {
		return
	}

	resp, err := h.purchaseService.ReceivePurchase(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel handles POST /purchases/:id/cancel
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	id, ok := h.purchaseID(c)
	if !ok {
		return
	}

	resp, err := h.purchaseService.CancelPurchase(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordPayment handles POST /purchases/:id/payments
func (h *PurchaseHandler) RecordPayment(c *gin.Context) {
	id, ok := h.purchaseID(c)
	if !ok {
		return
	}

	var req purchaseapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	req.PurchaseID = id

	resp, err := h.purchaseService.RecordPayment(c.Request.Context(), &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *PurchaseHandler) purchaseID(c *gin.Context) (uuid.UUID, bool) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid purchase ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idReq.ID)
	if err != nil {
		h.BadRequest(c, "Invalid purchase ID")
		return uuid.Nil, false
	}
	return id, true
}
