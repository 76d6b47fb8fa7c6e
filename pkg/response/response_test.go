package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/student-risk-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestJSON(t *testing.T) {
	c, w := newContext()

	JSON(c, http.StatusOK, gin.H{"score": 70}, map[string]interface{}{"processing_time_ms": 3})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"score":70},"meta":{"processing_time_ms":3}}`, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestError(t *testing.T) {
	c, w := newContext()

	Error(c, appErrors.WithDetails(appErrors.ErrValidation, []appErrors.FieldError{{Field: "gpa", Message: "is required"}}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":{"code":"VALIDATION_ERROR","message":"validation failed","status":400,"details":[{"field":"gpa","message":"is required"}]}}`, w.Body.String())
}

func TestErrorHidesInternalCause(t *testing.T) {
	c, w := newContext()

	Error(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestAttachment(t *testing.T) {
	c, w := newContext()

	Attachment(c, "roster.csv", "text/csv; charset=utf-8", []byte("a,b\n"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="roster.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "a,b\n", w.Body.String())
}
