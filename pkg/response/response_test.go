package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/tennis-lesson-scheduler/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	return c, rec
}

func TestJSONWrapsDataAndMeta(t *testing.T) {
	c, rec := newContext()
	JSON(c, http.StatusOK, map[string]int{"lessons": 3}, map[string]interface{}{"cache_hit": true})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(3), body["data"]["lessons"])
	assert.Equal(t, true, body["meta"]["cache_hit"])
}

func TestErrorNormalisesUnknownErrors(t *testing.T) {
	c, rec := newContext()
	Error(c, errors.New("boom"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), appErrors.ErrInternal.Code)
}

func TestAttachment(t *testing.T) {
	c, rec := newContext()
	Attachment(c, "lessons.csv", "text/csv", []byte("a,b\n"))

	assert.Equal(t, `attachment; filename="lessons.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, "a,b\n", rec.Body.String())
}
