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

	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorBody) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Error(c, err)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"参数错误", apperrors.ErrInvalidParams, http.StatusBadRequest},
		{"未修改", apperrors.ErrNotModified, http.StatusBadRequest},
		{"不存在", apperrors.ErrBookNotFound, http.StatusNotFound},
		{"未登录", apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{"无权限", apperrors.ErrForbidden, http.StatusForbidden},
		{"冲突", apperrors.ErrEmailDuplicate, http.StatusConflict},
		{"限流", apperrors.ErrTooManyRequests, http.StatusTooManyRequests},
		{"存储错误", apperrors.Persistence(errors.New("x"), "failed"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, _ := serve(t, tc.err)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestErrorDoesNotLeakInternalText(t *testing.T) {
	cause := errors.New("Error 1045: Access denied for user 'root'@'10.0.0.1'")

	w, body := serve(t, cause)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperrors.ErrCodeInternal, body.Code)
	assert.NotContains(t, w.Body.String(), "Access denied")
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}

func TestMessageWithID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	MessageWithID(c, "added", "abc")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"added","id":"abc"}`, w.Body.String())
}
