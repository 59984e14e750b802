package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillahandlers "github.com/gorilla/handlers"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"smart_hub/internal/logger"
	"smart_hub/internal/metrics"
	"smart_hub/internal/service"
)

// Options toggles the optional parts of the HTTP surface.
type Options struct {
	Metrics        *metrics.Metrics
	AuthEnabled    bool
	AllowedOrigins []string
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	metrics  *metrics.Metrics
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	registerJSONFieldNames()
	return &Handler{services: services, log: log, metrics: opts.Metrics, opts: opts}
}

// Routes returns the router wrapped with the CORS policy.
func (h *Handler) Routes() http.Handler {
	router := h.InitRoutes()
	if len(h.opts.AllowedOrigins) == 0 {
		return router
	}
	return gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(h.opts.AllowedOrigins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(router)
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if h.metrics != nil {
		router.Use(h.metrics.GinMiddleware())
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerHubRoutes(router)
	h.registerAPIRoutes(router)

	router.GET("/ws", h.wsConnect)

	return router
}

// protected returns the bearer-token guard when auth is on.
func (h *Handler) protected() []gin.HandlerFunc {
	if !h.opts.AuthEnabled {
		return nil
	}
	return []gin.HandlerFunc{h.requireUser}
}

func (h *Handler) guarded(handler gin.HandlerFunc) []gin.HandlerFunc {
	return append(h.protected(), handler)
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerHubRoutes(r *gin.Engine) {
	// Body example: {"user_temp":25,"user_light":"sunset","light_duration":"4h"}
	r.PUT("/settings", h.guarded(h.putSettings)...)
	r.GET("/settings", h.getSettings)

	r.POST("/sensorData", h.postSensorData)
	r.GET("/sensorData", h.getSensorData)
	r.GET("/fan", h.getFan)
	r.GET("/light", h.getLight)

	r.GET("/graph", h.getGraph)
	r.POST("/graph", h.guarded(h.postGraph)...)
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.protected()...)
	{
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("", h.getLogs)
		logs.GET("/", h.getLogs)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}
