// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/your-org/bakery-backend/internal/config"
	"github.com/your-org/bakery-backend/internal/domain/loyalty"
	"github.com/your-org/bakery-backend/internal/domain/order"
	"github.com/your-org/bakery-backend/internal/domain/voucher"
	"github.com/your-org/bakery-backend/internal/interfaces/http/middleware"
	"github.com/your-org/bakery-backend/internal/pkg/invoice"
)

// InvoiceHandler renders order invoices as PDF downloads
type InvoiceHandler struct {
	orderService   *order.Service
	invoiceService *invoice.Service
	config         *config.Config
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(db *gorm.DB, cfg *config.Config) *InvoiceHandler {
	voucherService := voucher.NewService(db, cfg)
	loyaltyService := loyalty.NewService(db, cfg)
	return &InvoiceHandler{
		orderService:   order.NewService(db, cfg, voucherService, loyaltyService),
		invoiceService: invoice.NewService(cfg),
		config:         cfg,
	}
}

// Download handles GET /orders/:id/invoice
func (h *InvoiceHandler) Download(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	orderID, err := parseIDParam(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid order ID")
		return
	}

	detail, err := h.orderService.GetOrder(orderID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to retrieve order")
		return
	}
	if detail == nil || (detail.UserID != userID && !middleware.IsAdminFromContext(c)) {
		respondError(c, http.StatusNotFound, "Order not found")
		return
	}

	pdf, err := h.invoiceService.GenerateInvoice(&detail.Order)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to generate invoice")
		return
	}

	filename := fmt.Sprintf("invoice-%s.pdf", detail.OrderNumber)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", pdf.Bytes())
}
