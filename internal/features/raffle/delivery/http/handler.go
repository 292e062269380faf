package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "rifas-el-negro-backend/internal/common/errors"
	"rifas-el-negro-backend/internal/common/middleware"
	"rifas-el-negro-backend/internal/features/raffle/models"
	"rifas-el-negro-backend/internal/features/raffle/service"
)

type RaffleHandler struct {
	service service.RaffleService
}

func NewRaffleHandler(service service.RaffleService) *RaffleHandler {
	return &RaffleHandler{service: service}
}

func (h *RaffleHandler) RegisterRoutes(router *gin.RouterGroup) {
	raffles := router.Group("/raffles")
	{
		raffles.GET("", h.listActive)
		raffles.GET("/:id/numbers", h.getNumbers)
		raffles.POST("/:id/reserve", middleware.RequireAuth(), h.reserve)
		raffles.POST("/:id/release", middleware.RequireAuth(), h.release)
	}

	admin := router.Group("/admin/raffles")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("", h.create)
		admin.GET("", h.listAll)
	}
}

// @Summary List active raffles
// @Tags raffles
// @Produce json
// @Router /raffles [get]
func (h *RaffleHandler) listActive(c *gin.Context) {
	raffles, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"raffles": raffles})
}

// @Summary Availability map for a raffle
// @Tags raffles
// @Produce json
// @Router /raffles/{id}/numbers [get]
func (h *RaffleHandler) getNumbers(c *gin.Context) {
	raffleID, err := parseID(c)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	numbers, err := h.service.GetAvailability(c.Request.Context(), raffleID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"numbers": numbers})
}

type reserveRequest struct {
	Numbers []string `json:"numbers"`
}

// @Summary Reserve a set of numbers
// @Tags raffles
// @Accept json
// @Produce json
// @Router /raffles/{id}/reserve [post]
func (h *RaffleHandler) reserve(c *gin.Context) {
	raffleID, err := parseID(c)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, apperrors.NewValidationError("Debe seleccionar al menos un número"))
		return
	}

	reservedUntil, err := h.service.Reserve(c.Request.Context(), raffleID, userID, req.Numbers)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Números reservados exitosamente",
		"reserved_until": reservedUntil,
	})
}

// @Summary Cancel own reservations
// @Tags raffles
// @Accept json
// @Router /raffles/{id}/release [post]
func (h *RaffleHandler) release(c *gin.Context) {
	raffleID, err := parseID(c)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	userID, _ := middleware.CurrentUserID(c)

	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, apperrors.NewValidationError("Debe seleccionar al menos un número"))
		return
	}

	if err := h.service.Release(c.Request.Context(), raffleID, userID, req.Numbers); err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reserva liberada"})
}

// @Summary Create a raffle with its 000-999 number space
// @Tags raffles
// @Accept json
// @Produce json
// @Router /admin/raffles [post]
func (h *RaffleHandler) create(c *gin.Context) {
	adminID, _ := middleware.CurrentUserID(c)

	var input models.CreateRaffleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.RespondError(c, apperrors.NewValidationError("Todos los campos son requeridos"))
		return
	}

	raffle, err := h.service.Create(c.Request.Context(), adminID, input)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Rifa creada exitosamente", "raffle": raffle})
}

// @Summary List all raffles (admin)
// @Tags raffles
// @Produce json
// @Router /admin/raffles [get]
func (h *RaffleHandler) listAll(c *gin.Context) {
	raffles, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"raffles": raffles})
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("Identificador inválido").WithDetail("id", c.Param("id"))
	}
	return id, nil
}
