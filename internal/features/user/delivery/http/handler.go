package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "rifas-el-negro-backend/internal/common/errors"
	"rifas-el-negro-backend/internal/common/middleware"
	"rifas-el-negro-backend/internal/features/user/models"
	"rifas-el-negro-backend/internal/features/user/service"
)

type UserHandler struct {
	service      service.UserService
	cookieMaxAge int
}

func NewUserHandler(service service.UserService, cookieMaxAge int) *UserHandler {
	return &UserHandler{
		service:      service,
		cookieMaxAge: cookieMaxAge,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/logout", h.logout)
		auth.GET("/me", middleware.RequireAuth(), h.me)
	}
}

// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} models.UserResponse
// @Router /auth/register [post]
func (h *UserHandler) register(c *gin.Context) {
	var input models.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.RespondError(c, apperrors.NewValidationError("Datos de registro inválidos"))
		return
	}

	user, err := h.service.Register(c.Request.Context(), input)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Usuario creado exitosamente", "user": user})
}

// @Summary Log in and receive the auth-token cookie
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} models.UserResponse
// @Router /auth/login [post]
func (h *UserHandler) login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.RespondError(c, apperrors.NewValidationError("Datos de inicio de sesión inválidos"))
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), input)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.SetCookie(middleware.AuthCookie, token, h.cookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}

// @Summary Log out, clearing the session cookie
// @Tags auth
// @Router /auth/logout [post]
func (h *UserHandler) logout(c *gin.Context) {
	c.SetCookie(middleware.AuthCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Sesión cerrada"})
}

// @Summary Get the current user
// @Tags auth
// @Produce json
// @Success 200 {object} models.UserResponse
// @Router /auth/me [get]
func (h *UserHandler) me(c *gin.Context) {
	userID, _ := middleware.CurrentUserID(c)

	user, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
