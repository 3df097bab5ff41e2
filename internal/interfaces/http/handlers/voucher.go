// internal/interfaces/http/handlers/voucher.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/domain/voucher"
)

// VoucherHandler handles voucher endpoints
type VoucherHandler struct {
	voucherService *voucher.Service
	config         *config.Config
}

// NewVoucherHandler creates a new voucher handler
func NewVoucherHandler(db *gorm.DB, cfg *config.Config) *VoucherHandler {
	return &VoucherHandler{
		voucherService: voucher.NewService(db, cfg),
		config:         cfg,
	}
}

// Check handles POST /vouchers/validate, a non-erroring validation for the
// cart page, returning the discount the code would yield.
func (h *VoucherHandler) Check(c *gin.Context) {
	var req struct {
		Code        string `json:"code" binding:"required"`
		OrderAmount int64  `json:"order_amount" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	result := h.voucherService.CheckCode(req.Code, req.OrderAmount)
	respondOK(c, http.StatusOK, result)
}

// ListAvailable handles GET /vouchers/available. An optional order_amount
// query narrows the list to vouchers the order already qualifies for.
func (h *VoucherHandler) ListAvailable(c *gin.Context) {
	orderAmount, err := strconv.ParseInt(c.DefaultQuery("order_amount", "0"), 10, 64)
	if err != nil || orderAmount < 0 {
		respondError(c, http.StatusBadRequest, "Invalid order amount")
		return
	}

	vouchers, err := h.voucherService.ListAvailable(orderAmount)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve vouchers")
		return
	}

	respondOK(c, http.StatusOK, vouchers)
}

// Create handles POST /admin/vouchers
func (h *VoucherHandler) Create(c *gin.Context) {
	var req voucher.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request data: "+err.Error())
		return
	}

	v, err := h.voucherService.Create(&req)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			respondError(c, http.StatusConflict, err.Error())
			return
		}
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	respondOK(c, http.StatusCreated, v)
}

// List handles GET /admin/vouchers
func (h *VoucherHandler) List(c *gin.Context) {
	vouchers, err := h.voucherService.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve vouchers")
		return
	}

	respondOK(c, http.StatusOK, vouchers)
}

// Deactivate handles DELETE /admin/vouchers/:id
func (h *VoucherHandler) Deactivate(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid voucher ID")
		return
	}

	if err := h.voucherService.Deactivate(id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			respondError(c, http.StatusNotFound, "Voucher not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to deactivate voucher")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"deactivated": true})
}
