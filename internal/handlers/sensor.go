package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smart_hub"
	"smart_hub/internal/models"
	"smart_hub/internal/service"
)

// Request DTO for a device reading.
type sampleRequest struct {
	Temperature *float64 `json:"temperature" binding:"required"`
	Presence    *bool    `json:"presence" binding:"required"`
}

// Request DTO for a fabricated test sample.
type graphRequest struct {
	Temperature *float64 `json:"temperature" binding:"required"`
	Presence    *bool    `json:"presence" binding:"required"`
	Timestamp   string   `json:"timestamp"`
}

// SampleRequest is an exported model for Swagger docs of the sensor payload.
type SampleRequest struct {
	Temperature float64 `json:"temperature" example:"27.5"`
	Presence    bool    `json:"presence" example:"true"`
}

// @Summary      Record a sensor reading
// @Description  The server stamps the reading with its local receipt time, then pushes the new decision to the device
// @Tags         sensor
// @Accept       json
// @Produce      json
// @Param        body  body   SampleRequest  true  "Reading"
// @Success      201   {object}  models.Sample
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /sensorData [post]
func (h *Handler) postSensorData(c *gin.Context) {
	var req sampleRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	ctx := c.Request.Context()
	sample, err := h.services.Sensor.Record(ctx, service.SampleInput{
		Temperature: *req.Temperature,
		Presence:    *req.Presence,
	})
	if err != nil {
		h.respondError(c, "sensor_record_failed", err)
		return
	}
	h.metrics.SampleRecorded()
	c.JSON(http.StatusCreated, sample)

	h.publishDecision(c, sample)
}

// publishDecision pushes the decision for a stored sample. Failures only get
// logged; the sample is already acknowledged.
func (h *Handler) publishDecision(c *gin.Context, sample models.Sample) {
	_, err := h.services.Decision.Publish(c.Request.Context(), sample)
	if errors.Is(err, smart_hub.ErrNotReady) {
		return
	}
	h.metrics.DecisionPublished(err)
	if err != nil && h.log != nil {
		h.log.Warnw("decision_publish_failed", "sample_id", sample.ID, "err", err)
	}
}

// @Summary      Current fan and light state
// @Tags         sensor
// @Produce      json
// @Success      200  {object}  models.Decision
// @Failure      412  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /sensorData [get]
func (h *Handler) getSensorData(c *gin.Context) {
	d, ok := h.decide(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Summary      Current fan state
// @Tags         sensor
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Failure      412  {object}  map[string]string
// @Router       /fan [get]
func (h *Handler) getFan(c *gin.Context) {
	d, ok := h.decide(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"fan": d.Fan})
}

// @Summary      Current light state
// @Tags         sensor
// @Produce      json
// @Success      200  {object}  map[string]bool
// @Failure      412  {object}  map[string]string
// @Router       /light [get]
func (h *Handler) getLight(c *gin.Context) {
	d, ok := h.decide(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"light": d.Light})
}

func (h *Handler) decide(c *gin.Context) (models.Decision, bool) {
	d, err := h.services.Decision.Decide(c.Request.Context())
	if err != nil {
		h.respondError(c, "decision_failed", err)
		return models.Decision{}, false
	}
	return d, true
}

// @Summary      Sample history
// @Tags         sensor
// @Produce      json
// @Param        size  query   int  false  "Maximum number of samples, oldest first"
// @Success      200   {array}   models.Sample
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /graph [get]
func (h *Handler) getGraph(c *gin.Context) {
	size := 0
	if qs := c.Query("size"); qs != "" {
		n, err := strconv.Atoi(qs)
		if err != nil {
			h.respondError(c, "graph_bad_size", smart_hub.NewValidationError("size", "must be an integer"))
			return
		}
		size = n
	}

	samples, err := h.services.Sensor.History(c.Request.Context(), size)
	if err != nil {
		h.respondError(c, "graph_list_failed", err, "size", size)
		return
	}
	if samples == nil {
		samples = []models.Sample{}
	}
	c.JSON(http.StatusOK, samples)
}

// @Summary      Insert a fabricated sample
// @Description  Test helper; timestamp is HH:MM:SS and defaults to the receipt time
// @Tags         sensor
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.Sample
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /graph [post]
// @Security     BearerAuth
func (h *Handler) postGraph(c *gin.Context) {
	var req graphRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}

	sample, err := h.services.Sensor.RecordFabricated(c.Request.Context(), models.Sample{
		Temperature: *req.Temperature,
		Presence:    *req.Presence,
		Timestamp:   req.Timestamp,
	})
	if err != nil {
		h.respondError(c, "graph_record_failed", err)
		return
	}
	h.metrics.SampleRecorded()
	if userID, ok := userIDFrom(c); ok && h.log != nil {
		h.log.Infow("fabricated_sample_recorded", "user_id", userID, "timestamp", sample.Timestamp)
	}
	c.JSON(http.StatusCreated, sample)
}
