package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"smart_hub"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errInternal        = "internal error"
	errUpstream        = "upstream dependency unavailable"
	errInvalidBodyPref = "invalid body: "
)

var fieldNamesOnce sync.Once

// registerJSONFieldNames makes validator report json tag names so 400 bodies
// name the field the client sent.
func registerJSONFieldNames() {
	fieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondError maps service errors onto status codes.
func (h *Handler) respondError(c *gin.Context, logKey string, err error, kv ...interface{}) {
	var verr *smart_hub.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, smart_hub.ErrNotReady):
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": err.Error()})
	case errors.Is(err, smart_hub.ErrDependencyUnavailable):
		h.logAndJSONError(c, http.StatusBadGateway, errUpstream, logKey, err, kv...)
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, logKey, err, kv...)
	}
}

// bindJSONOrBadRequest tries to bind the request body into dst and writes a 400 JSON on failure.
// Returns false if the request was already handled, true otherwise.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	if h.log != nil {
		h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
	}

	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &verrs) && len(verrs) > 0:
		fe := verrs[0]
		msg := "failed " + fe.Tag() + " check"
		if fe.Tag() == "required" {
			msg = "is required"
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": (&smart_hub.ValidationError{Field: fe.Field(), Message: msg}).Error(), "field": fe.Field()})
	case errors.As(err, &typeErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + typeErr.Field + ": expected " + typeErr.Type.String(), "field": typeErr.Field})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
	}
	return false
}
