package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "rifas-el-negro-backend/internal/common/errors"
	"rifas-el-negro-backend/internal/common/middleware"
	"rifas-el-negro-backend/internal/features/purchase/models"
	"rifas-el-negro-backend/internal/features/purchase/service"
)

type PurchaseHandler struct {
	service service.PurchaseService
}

func NewPurchaseHandler(service service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: service}
}

func (h *PurchaseHandler) RegisterRoutes(router *gin.RouterGroup) {
	purchases := router.Group("/purchases")
	purchases.Use(middleware.RequireAuth())
	{
		purchases.POST("", h.create)
		purchases.GET("", h.listMine)
	}

	admin := router.Group("/admin/purchases")
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("", h.listAll)
		admin.POST("/:id/validate", h.validate)
	}
}

// @Summary Submit a payment claim over reserved numbers
// @Tags purchases
// @Accept json
// @Produce json
// @Router /purchases [post]
func (h *PurchaseHandler) create(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	var input models.CreatePurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.RespondError(c, apperrors.NewValidationError("Datos de compra inválidos"))
		return
	}

	purchase, err := h.service.Create(c.Request.Context(), userID, input)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Compra registrada exitosamente",
		"purchase_id": purchase.ID,
		"status":      purchase.Status,
	})
}

// @Summary List the caller's purchases
// @Tags purchases
// @Produce json
// @Router /purchases [get]
func (h *PurchaseHandler) listMine(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	purchases, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

// @Summary List purchases for review (admin)
// @Tags purchases
// @Produce json
// @Param status query string false "pending|validated|rejected|all"
// @Router /admin/purchases [get]
func (h *PurchaseHandler) listAll(c *gin.Context) {
	status := c.DefaultQuery("status", "all")

	purchases, err := h.service.ListAll(c.Request.Context(), status)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchases": purchases})
}

type validateRequest struct {
	Action models.ValidateDecision `json:"action"`
}

// @Summary Approve or reject a pending purchase (admin)
// @Tags purchases
// @Accept json
// @Produce json
// @Router /admin/purchases/{id}/validate [post]
func (h *PurchaseHandler) validate(c *gin.Context) {
	purchaseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || purchaseID <= 0 {
		middleware.RespondError(c, apperrors.NewValidationError("Identificador inválido"))
		return
	}
	adminID, _ := middleware.CurrentUserID(c)

	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, apperrors.NewValidationError("Acción inválida"))
		return
	}

	purchase, err := h.service.Validate(c.Request.Context(), purchaseID, adminID, req.Action)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	message := "Compra rechazada"
	if purchase.Status == models.PurchaseStatusValidated {
		message = "Compra aprobada exitosamente"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "status": purchase.Status})
}
