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

	appErrors "github.com/noah-isme/campus2career-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestEmptyKeepsNullData(t *testing.T) {
	c, w := newContext()
	Empty(c, "no career profile yet")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	data, present := body["data"]
	assert.True(t, present)
	assert.Nil(t, data)
}

func TestErrorHidesDetailsUnlessExposed(t *testing.T) {
	cause := errors.New("pq: connection refused")

	ExposeErrorDetails(false)
	c, w := newContext()
	Error(c, cause)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")

	ExposeErrorDetails(true)
	t.Cleanup(func() { ExposeErrorDetails(false) })
	c, w = newContext()
	Error(c, cause)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestErrorUsesTypedStatus(t *testing.T) {
	c, w := newContext()
	Error(c, appErrors.Clone(appErrors.ErrForbidden, "not your marksheet"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
	assert.Equal(t, "not your marksheet", env.Message)
}
