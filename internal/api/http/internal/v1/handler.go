package v1

import (
	"strings"

	"github.com/vibe-gaming/notes/internal/config"
	"github.com/vibe-gaming/notes/internal/service"

	"github.com/gin-gonic/gin"
)

// @title Notes API
// @version 1.0
// @description Email OTP authentication and personal notes

// @BasePath /api/v1

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name auth_token

type Handler struct {
	services *service.Services
	config   *config.Config
}

func NewHandler(
	services *service.Services,
	config *config.Config,
) *Handler {
	return &Handler{
		services: services,
		config:   config,
	}
}

func (h *Handler) Init(api *gin.RouterGroup) {
	v1 := api.Group("v1", h.errorMiddleware)

	h.initAuthRoutes(v1)
	h.initUsersRoutes(v1)
	h.initNotesRoutes(v1)
}

// trimSpaces trims request fields before binding validates their length.
func trimSpaces(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
