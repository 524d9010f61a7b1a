package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	authRequired := APIKeyAuthMiddleware(h.cfg, h.logger)

	// Маршруты для работы с показаниями
	readings := api.Group("/readings")
	{
		readings.POST("", authRequired, h.submitReading)
		readings.GET("/all", h.listReadings)
		readings.GET("/latest/:victim_id", h.getLatestReading)
		readings.GET("/export", h.exportReadings)
		readings.GET("/stats", authRequired, h.getStats)
	}

	// Админские операции со схемой хранилища
	admin := api.Group("/admin", authRequired)
	{
		admin.POST("/init-db", h.adminInitDB)
		admin.POST("/reset-db", h.adminResetDB)
		admin.POST("/compact", h.adminCompact)
	}

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}

// RegisterRoot регистрирует отладочную страницу на корне
func (h *Handler) RegisterRoot(router *gin.Engine) {
	router.GET("/", h.homePage)
}
