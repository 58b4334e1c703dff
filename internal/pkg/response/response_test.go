package response

import (
	"Keystone/internal/api/dto"
	"Keystone/internal/service"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, err error) dto.Response {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Error(c, err)

	require.Equal(t, http.StatusOK, w.Code)
	var body dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestError(t *testing.T) {
	type payload struct {
		Name string `validate:"required"`
	}
	validationErr := validator.New().Struct(payload{})

	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"sentinel", service.ErrNotFound, NotFound, service.ErrNotFound.Error()},
		{"wrapped sentinel", fmt.Errorf("load user: %w", service.ErrInvalidOperation), BadRequest, service.ErrInvalidOperation.Error()},
		{"consistency wins over abort", fmt.Errorf("%w: %w", service.ErrConsistencyViolation, service.ErrTransactionAborted), InternalServerError, service.ErrConsistencyViolation.Error()},
		{"aborted", fmt.Errorf("%w: deadlock", service.ErrTransactionAborted), service.ServiceUnavailable, service.ErrTransactionAborted.Error()},
		{"validation", validationErr, BadRequest, "参数错误"},
		{"unknown", errors.New("dial tcp: connection refused"), InternalServerError, service.UnExpectedError.Error()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := render(t, tc.err)
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.msg, body.Message)
			assert.Nil(t, body.Data)
		})
	}
}

func TestSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, map[string]int{"n": 1})

	var body struct {
		Code int            `json:"code"`
		Data map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, Ok, body.Code)
	assert.Equal(t, 1, body.Data["n"])
}
