package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"rifas-el-negro-backend/internal/common/middleware"
	"rifas-el-negro-backend/internal/features/admin/service"
)

type AdminHandler struct {
	service service.AdminService
}

func NewAdminHandler(service service.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/stats", h.stats)
		admin.GET("/payment-stats", h.paymentStats)
		admin.GET("/sales/recent", h.recentSales)
	}
}

// @Summary Dashboard aggregates (admin)
// @Tags admin
// @Produce json
// @Router /admin/stats [get]
func (h *AdminHandler) stats(c *gin.Context) {
	stats, err := h.service.GetStats(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary Validated revenue by payment method (admin)
// @Tags admin
// @Produce json
// @Router /admin/payment-stats [get]
func (h *AdminHandler) paymentStats(c *gin.Context) {
	stats, err := h.service.GetPaymentStats(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_stats": stats})
}

// @Summary Recent sales joined with buyer and raffle data (admin)
// @Tags admin
// @Produce json
// @Param limit query int false "row cap, default 50"
// @Router /admin/sales/recent [get]
func (h *AdminHandler) recentSales(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	sales, err := h.service.GetRecentSales(c.Request.Context(), limit)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}
