package respond_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelier-arq/atelier-backend/internal/api/http/respond"
	"github.com/atelier-arq/atelier-backend/internal/apperr"
)

func render(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	respond.Error(c, "test_op", err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
	return w.Code, body["error"].(map[string]any)
}

func TestError_StatusByKind(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{apperr.Validation("title", "must not be empty"), http.StatusBadRequest, "validation"},
		{apperr.NotFound("task %d not found", 3), http.StatusNotFound, "not_found"},
		{apperr.Permission("admins only"), http.StatusForbidden, "permission"},
		{apperr.Conflict("already running"), http.StatusConflict, "conflict"},
		{apperr.IO(errors.New("disk"), "write report"), http.StatusInternalServerError, "io"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.kind, func(t *testing.T) {
			status, body := render(t, tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.kind, body["kind"])
		})
	}
}

func TestError_FieldAndWrapping(t *testing.T) {
	_, body := render(t, apperr.Validation("dueDate", "invalid date"))
	assert.Equal(t, "dueDate", body["field"])

	status, body := render(t, fmt.Errorf("update task: %w", apperr.NotFound("task 9 not found")))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "task 9 not found", body["message"])
}

func TestError_HidesInternalDetail(t *testing.T) {
	_, body := render(t, errors.New("pq: password authentication failed"))
	assert.Equal(t, "internal error", body["message"])
}

func TestParamID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for raw, ok := range map[string]bool{"12": true, "0": false, "-1": false, "abc": false} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Params = gin.Params{{Key: "id", Value: raw}}
		id, err := respond.ParamID(c, "id")
		if ok {
			require.NoError(t, err, raw)
			assert.EqualValues(t, 12, id)
			continue
		}
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), raw)
	}
}
