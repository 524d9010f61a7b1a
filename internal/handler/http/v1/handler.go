package v1

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/rescue_radar_system/internal/config"
	"github.com/shenikar/rescue_radar_system/internal/export"
	"github.com/shenikar/rescue_radar_system/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	readingService service.ReadingService
	renderer       export.Renderer
	logger         *logrus.Logger
	validate       *validator.Validate
	cfg            *config.Config
}

func NewHandler(readingService service.ReadingService, renderer export.Renderer, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		readingService: readingService,
		renderer:       renderer,
		logger:         logger,
		validate:       validator.New(),
		cfg:            cfg,
	}
}

// @Summary Submit a victim reading
// @Description Create or update a victim reading. The dedup policy decides between created/updated/skipped. Requires API key.
// @Tags Readings
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param reading body SubmitReadingRequest true "Reading submission"
// @Success 200 {object} SubmitReadingResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /readings [post]
func (h *Handler) submitReading(c *gin.Context) {
	var input SubmitReadingRequest
	log := h.logger.WithField("method", "submitReading")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decision, reading, err := h.readingService.SubmitReading(c.Request.Context(), DTOToSubmitInput(input))
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			log.WithError(err).Warn("Reading rejected by validation")
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
			return
		}
		log.WithError(err).Error("Failed to submit reading in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	c.JSON(http.StatusOK, SubmitReadingResponse{
		Status:  "ok",
		Action:  string(decision),
		Reading: ModelToReadingResponse(reading),
	})
}

// @Summary Get the latest reading for a victim
// @Description Get the most recent reading for the given victim id.
// @Tags Readings
// @Accept json
// @Produce json
// @Param victim_id path string true "Victim ID"
// @Success 200 {object} ReadingResponse
// @Failure 404 {object} map[string]string "Reading not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /readings/latest/{victim_id} [get]
func (h *Handler) getLatestReading(c *gin.Context) {
	victimID := c.Param("victim_id")
	log := h.logger.WithField("method", "getLatestReading").WithField("victim_id", victimID)

	reading, err := h.readingService.GetLatest(c.Request.Context(), victimID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reading not found"})
			return
		}
		log.WithError(err).Error("Failed to get reading from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelToReadingResponse(reading))
}

// @Summary List readings
// @Description Get a paginated list of readings, newest first.
// @Tags Readings
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Number of items per page (max 500)" default(50)
// @Success 200 {object} ListReadingsResponse
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /readings/all [get]
func (h *Handler) listReadings(c *gin.Context) {
	log := h.logger.WithField("method", "listReadings")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}
	if perPage > 500 {
		perPage = 500
	}

	readings, total, err := h.readingService.ListReadings(c.Request.Context(), page, perPage)
	if err != nil {
		log.WithError(err).Error("Failed to list readings from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	pages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		pages++
	}

	c.JSON(http.StatusOK, ListReadingsResponse{
		Readings: ModelsToReadingResponses(readings),
		Page:     page,
		PerPage:  perPage,
		Total:    total,
		Pages:    pages,
	})
}

// @Summary Export readings
// @Description Export all readings in ascending time order as a downloadable document.
// @Tags Readings
// @Produce text/csv
// @Success 200 {string} string "CSV document"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /readings/export [get]
func (h *Handler) exportReadings(c *gin.Context) {
	log := h.logger.WithField("method", "exportReadings")

	readings, err := h.readingService.ExportReadings(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to export readings from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, readings); err != nil {
		log.WithError(err).Error("Failed to render readings export")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export unavailable"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.renderer.Filename()))
	c.Data(http.StatusOK, h.renderer.ContentType(), buf.Bytes())
}

// @Summary Get reading statistics
// @Description Get the count of distinct victims observed within the stats time window. Requires API key.
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /readings/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	victimCount, err := h.readingService.GetStats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get stats from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, StatsResponse{VictimCount: victimCount})
}

// @Summary Ensure database schema
// @Description Create the readings table if it does not exist. Requires API key.
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]string "Status OK"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/init-db [post]
func (h *Handler) adminInitDB(c *gin.Context) {
	log := h.logger.WithField("method", "adminInitDB")

	if err := h.readingService.InitSchema(c.Request.Context()); err != nil {
		log.WithError(err).Error("Failed to init schema")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Reset database schema
// @Description Drop and recreate the readings table. Destructive; allowed only when ALLOW_DESTRUCTIVE_ADMIN is set. Requires API key.
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]string "Status OK"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Destructive admin operations disabled"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/reset-db [post]
func (h *Handler) adminResetDB(c *gin.Context) {
	log := h.logger.WithField("method", "adminResetDB")

	if !h.cfg.AllowDestructiveAdmin {
		log.Warn("Rejected reset-db: destructive admin operations are disabled")
		c.JSON(http.StatusForbidden, gin.H{"error": "destructive admin operations are disabled"})
		return
	}

	if err := h.readingService.ResetSchema(c.Request.Context()); err != nil {
		log.WithError(err).Error("Failed to reset schema")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Compact reading history
// @Description Keep only the most recent reading per victim. Requires API key.
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} CompactResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/compact [post]
func (h *Handler) adminCompact(c *gin.Context) {
	log := h.logger.WithField("method", "adminCompact")

	removed, err := h.readingService.CompactHistory(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to compact readings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, CompactResponse{Status: "ok", Removed: removed})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// homePage - простая отладочная страница с последним показанием
func (h *Handler) homePage(c *gin.Context) {
	readings, _, err := h.readingService.ListReadings(c.Request.Context(), 1, 1)
	if err != nil || len(readings) == 0 {
		c.String(http.StatusOK, "Rescue Radar\nNo readings yet.\n")
		return
	}
	latest := readings[0]
	c.String(http.StatusOK, "Latest distance: %.1f cm\nvictim: %s @ %s\n",
		latest.DistanceCM, latest.VictimID, latest.ObservedAt.UTC().Format("2006-01-02 15:04:05"))
}
