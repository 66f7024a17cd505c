package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Ceir-Ceir/Tanami-Leki/docs"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/dto"
	"github.com/Ceir-Ceir/Tanami-Leki/internal/service"
)

// Services groups the service layer behind the HTTP surface
type Services struct {
	Sessions service.SessionServicer
	Tracking service.TrackingServicer
	Reports  service.ReportServicer
	Metrics  service.MetricsServicer
}

type Handler struct {
	services Services
	router   *gin.Engine
	log      *zap.Logger
}

func NewHandler(services Services, allowedOrigins []string, log *zap.Logger) *Handler {
	h := &Handler{
		services: services,
		router:   gin.Default(),
		log:      log,
	}

	h.router.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "Authorization", "apikey"},
	}))

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/", h.healthCheck)

	sessions := h.router.Group("/sessions")
	sessions.POST("/upsert", h.upsertSession)
	sessions.POST("/ping", h.pingSession)

	h.router.POST("/event", h.trackEvent)

	dashboard := h.router.Group("/dashboard")
	dashboard.GET("/summary", h.getSummary)
	dashboard.GET("/stages", h.getStageDistribution)
	dashboard.GET("/leads", h.getLeads)
	dashboard.GET("/events/recent", h.getRecentEvents)
	dashboard.GET("/events/trends", h.getEventTrends)
	dashboard.GET("/events/top", h.getTopEvents)
	dashboard.GET("/journey", h.getJourney)

	h.router.GET("/metrics", h.getMetrics)
	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// healthCheck handles GET /
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router / [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:  "ok",
		Message: "Leki Scoring API is Live",
	})
}

// upsertSession handles POST /sessions/upsert
// @Summary Record session attribution
// @Description Insert or replace the referrer, UTM fields and email of a session
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body dto.SessionUpsertRequest true "Session attribution"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.SessionResponse
// @Failure 500 {object} dto.SessionResponse
// @Router /sessions/upsert [post]
func (h *Handler) upsertSession(c *gin.Context) {
	var req dto.SessionUpsertRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid session upsert request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.SessionResponse{Error: err.Error()})
		return
	}

	if req.SessionID == "" {
		c.JSON(http.StatusBadRequest, dto.SessionResponse{Error: "Missing session_id"})
		return
	}

	if err := h.services.Sessions.UpsertAttribution(c.Request.Context(), &req); err != nil {
		h.log.Error("Failed to upsert session",
			zap.Error(err),
			zap.String("session_id", req.SessionID))
		c.JSON(statusFor(err), dto.SessionResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.SessionResponse{OK: true})
}

// pingSession handles POST /sessions/ping
// @Summary Session heartbeat
// @Description Refresh last_seen and return the session duration in milliseconds
// @Tags sessions
// @Accept json
// @Produce json
// @Param ping body dto.SessionPingRequest true "Session id"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} dto.SessionResponse
// @Failure 500 {object} dto.SessionResponse
// @Router /sessions/ping [post]
func (h *Handler) pingSession(c *gin.Context) {
	var req dto.SessionPingRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid session ping request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.SessionResponse{Error: err.Error()})
		return
	}

	if req.SessionID == "" {
		c.JSON(http.StatusBadRequest, dto.SessionResponse{Error: "Missing session_id"})
		return
	}

	durationMs, err := h.services.Sessions.Ping(c.Request.Context(), req.SessionID)
	if err != nil {
		h.log.Error("Failed to record session ping",
			zap.Error(err),
			zap.String("session_id", req.SessionID))
		c.JSON(statusFor(err), dto.SessionResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.SessionResponse{OK: true, DurationMs: &durationMs})
}

// trackEvent handles POST /event
// @Summary Track a behavioral event
// @Description Score an event, advance the lead stage and sync qualified leads to the CRM
// @Tags events
// @Accept json
// @Produce json
// @Param event body dto.TrackEventRequest true "Event data"
// @Success 200 {object} dto.TrackEventResponse
// @Failure 400 {object} dto.TrackEventResponse
// @Failure 500 {object} dto.TrackEventResponse
// @Router /event [post]
func (h *Handler) trackEvent(c *gin.Context) {
	var req dto.TrackEventRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid event request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.TrackEventResponse{Error: err.Error()})
		return
	}

	if req.AnonymousID == "" {
		c.JSON(http.StatusBadRequest, dto.TrackEventResponse{Error: "Missing anonymous_id"})
		return
	}

	result, err := h.services.Tracking.TrackEvent(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to track event",
			zap.Error(err),
			zap.String("anonymous_id", req.AnonymousID),
			zap.String("event_type", req.EventType))
		c.JSON(statusFor(err), dto.TrackEventResponse{Error: err.Error()})
		return
	}

	if result.Skipped {
		c.JSON(http.StatusOK, dto.TrackEventResponse{
			Success: true,
			Message: "Points capped for this action today",
			Skipped: true,
		})
		return
	}

	c.JSON(http.StatusOK, dto.TrackEventResponse{
		Success:  true,
		NewScore: &result.NewScore,
		Stage:    string(result.Stage),
	})
}

func (h *Handler) dashboardError(c *gin.Context, msg string, err error) {
	h.log.Error(msg, zap.Error(err))
	c.JSON(statusFor(err), dto.ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	})
}

// getSummary handles GET /dashboard/summary
// @Summary Dashboard summary
// @Description Headline lead and session counters
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.SummaryResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard/summary [get]
func (h *Handler) getSummary(c *gin.Context) {
	summary, err := h.services.Reports.Summary(c.Request.Context())
	if err != nil {
		h.dashboardError(c, "Failed to load dashboard summary", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// getStageDistribution handles GET /dashboard/stages
// @Summary Stage distribution
// @Description Number of leads per lifecycle stage
// @Tags dashboard
// @Produce json
// @Success 200 {array} dto.StageCount
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard/stages [get]
func (h *Handler) getStageDistribution(c *gin.Context) {
	stages, err := h.services.Reports.StageDistribution(c.Request.Context())
	if err != nil {
		h.dashboardError(c, "Failed to load stage distribution", err)
		return
	}
	c.JSON(http.StatusOK, stages)
}

// getLeads handles GET /dashboard/leads?segment=
// @Summary List leads by segment
// @Description Top 100 leads by score in a segment
// @Tags dashboard
// @Produce json
// @Param segment query string false "HVP, SQL, MQL or ALL"
// @Success 200 {array} dto.LeadView
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard/leads [get]
func (h *Handler) getLeads(c *gin.Context) {
	var req dto.SegmentRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	leads, err := h.services.Reports.Segment(c.Request.Context(), req.Segment)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation_error", Message: err.Error()})
			return
		}
		h.dashboardError(c, "Failed to list leads", err)
		return
	}
	c.JSON(http.StatusOK, leads)
}

// getRecentEvents handles GET /dashboard/events/recent?limit=
// @Summary Recent events
// @Description Newest events first
// @Tags dashboard
// @Produce json
// @Param limit query int false "Number of events (default 20, max 500)"
// @Success 200 {array} dto.EventView
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard/events/recent [get]
func (h *Handler) getRecentEvents(c *gin.Context) {
	var req dto.RecentEventsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	events, err := h.services.Reports.RecentEvents(c.Request.Context(), req.Limit)
	if err != nil {
		h.dashboardError(c, "Failed to list recent events", err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// getEventTrends handles GET /dashboard/events/trends
// @Summary Event trends
// @Description Events per UTC day over the last seven days
// @Tags dashboard
// @Produce json
// @Success 200 {array} dto.DailyCount
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard/events/trends [get]
func (h *Handler) getEventTrends(c *gin.Context) {
	trends, err := h.services.Reports.Trends(c.Request.Context())
	if err != nil {
		h.dashboardError(c, "Failed to load event trends", err)
		return
	}
	c.JSON(http.StatusOK, trends)
}

// getTopEvents handles GET /dashboard/events/top
// @Summary Top event types
// @Description The 15 most frequent event types
// @Tags dashboard
// @Produce json
// @Success 200 {array} dto.EventTypeCount
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard/events/top [get]
func (h *Handler) getTopEvents(c *gin.Context) {
	top, err := h.services.Reports.TopEvents(c.Request.Context())
	if err != nil {
		h.dashboardError(c, "Failed to load top events", err)
		return
	}
	c.JSON(http.StatusOK, top)
}

// getJourney handles GET /dashboard/journey
// @Summary Lead journey
// @Description Referrer distribution, paid traffic share and average session length
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.JourneyResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /dashboard/journey [get]
func (h *Handler) getJourney(c *gin.Context) {
	journey, err := h.services.Reports.Journey(c.Request.Context())
	if err != nil {
		h.dashboardError(c, "Failed to load lead journey", err)
		return
	}
	c.JSON(http.StatusOK, journey)
}

// getMetrics handles GET /metrics
// @Summary Get aggregated metrics
// @Description Aggregate mirrored events of one type over a unix time range
// @Tags metrics
// @Produce json
// @Param event_type query string true "Event type"
// @Param from query int true "Start unix timestamp (seconds)"
// @Param to query int true "End unix timestamp (seconds)"
// @Param group_by query string false "hour, day or stage"
// @Success 200 {object} dto.GetMetricsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /metrics [get]
func (h *Handler) getMetrics(c *gin.Context) {
	var req dto.GetMetricsRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid metrics request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	response, err := h.services.Metrics.GetMetrics(c.Request.Context(), &req)
	if err != nil {
		status := statusFor(err)
		code := "internal_error"
		switch status {
		case http.StatusBadRequest:
			code = "validation_error"
		case http.StatusServiceUnavailable:
			code = "unavailable"
		}

		h.log.Error("Failed to get metrics",
			zap.Error(err),
			zap.String("event_type", req.EventType),
			zap.Int64("from", req.From),
			zap.Int64("to", req.To))
		c.JSON(status, dto.ErrorResponse{
			Error:   code,
			Message: err.Error(),
		})
		return
	}

	h.log.Info("Metrics retrieved",
		zap.String("event_type", req.EventType),
		zap.Uint64("total_count", response.TotalCount),
		zap.Uint64("unique_count", response.UniqueCount))

	c.JSON(http.StatusOK, response)
}
