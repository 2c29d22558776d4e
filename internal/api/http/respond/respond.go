package respond

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atelier-arq/atelier-backend/internal/apperr"
	"github.com/atelier-arq/atelier-backend/internal/logging"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindPermission:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error writes {"ok":false,"error":{...}}. Errors outside the taxonomy and IO
// failures are logged and reported without their internal detail.
func Error(c *gin.Context, operation string, err error) {
	e, ok := apperr.As(err)
	if !ok {
		logging.New(c.Request.Context()).Error(operation, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": gin.H{
			"kind":    "internal",
			"message": "internal error",
		}})
		return
	}
	if e.Kind == apperr.KindIO {
		logging.New(c.Request.Context()).Error(operation, err)
	}
	body := gin.H{"kind": e.Kind, "message": e.Message}
	if e.Field != "" {
		body["field"] = e.Field
	}
	c.JSON(StatusFor(e.Kind), gin.H{"ok": false, "error": body})
}

// BadBody reports an undecodable request body.
func BadBody(c *gin.Context, err error) {
	msg := "invalid body"
	var num *strconv.NumError
	if errors.As(err, &num) {
		msg = "invalid number in body"
	}
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": gin.H{
		"kind":    apperr.KindValidation,
		"message": msg,
	}})
}

// ParamID parses a numeric path parameter.
func ParamID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(name, "must be a positive integer")
	}
	return id, nil
}

// QueryID parses an optional numeric query parameter.
func QueryID(c *gin.Context, name string) (*int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperr.Validation(name, "must be a positive integer")
	}
	return &id, nil
}
