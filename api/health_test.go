package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
)

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name         string
		checks       map[string]Check
		expectedCode int
		expectedBody string
	}{
		{
			name:         "no checks",
			expectedCode: http.StatusOK,
			expectedBody: `"status":"ok"`,
		},
		{
			name: "all healthy",
			checks: map[string]Check{
				"postgres": func(context.Context) error { return nil },
			},
			expectedCode: http.StatusOK,
			expectedBody: `"postgres":"ok"`,
		},
		{
			name: "redis down",
			checks: map[string]Check{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return errors.New("connection refused") },
			},
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: `"redis":"connection refused"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRouter(&MockFlightUseCase{}, tc.checks, hclog.NewNullLogger())
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

			assert.Equal(t, tc.expectedCode, w.Code)
			assert.Contains(t, w.Body.String(), tc.expectedBody)
		})
	}
}
